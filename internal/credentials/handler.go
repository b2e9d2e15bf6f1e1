package credentials

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"credentials-backend/internal/shared/server/middleware"
	"credentials-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc        *Service
	GatewayURL string
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, gatewayURL string) *Handler {
	return &Handler{Svc: svc, GatewayURL: gatewayURL}
}

// RegisterRoutes attaches credential routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/credentials", h.submit)
	rg.GET("/credentials/:id", h.get)
	rg.GET("/credentials/:id/document", h.document)
}

func (h *Handler) submit(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	draft := Draft{
		Type:        c.PostForm("type"),
		HolderName:  c.PostForm("holderName"),
		Institution: c.PostForm("institution"),
	}

	fileHeader, err := c.FormFile("document")
	if err == nil {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read document", nil)
			return
		}
		defer file.Close()
		draft.Document = file
	}

	cred, err := h.Svc.Submit(c.Request.Context(), userID, draft)
	if err != nil {
		var validation *ValidationError
		switch {
		case errors.As(err, &validation):
			respond.Error(c, http.StatusBadRequest, "validation_error", "credential draft is incomplete", validation.Issues)
		case errors.Is(err, ErrReconcile):
			respond.Error(c, http.StatusInternalServerError, "reconciliation_required", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to submit credential", nil)
		}
		return
	}

	c.Set("credentialId", cred.ID)
	respond.Created(c, ToResponse(cred, h.GatewayURL))
}

func (h *Handler) get(c *gin.Context) {
	if _, ok := middleware.RequireUser(c); !ok {
		return
	}
	credentialID := strings.TrimSpace(c.Param("id"))

	cred, err := h.Svc.Get(c.Request.Context(), credentialID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "credential not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusServiceUnavailable, "store_unavailable", "failed to fetch credential", nil)
		}
		return
	}

	c.Set("credentialId", cred.ID)
	respond.JSON(c, http.StatusOK, ToResponse(cred, h.GatewayURL))
}

func (h *Handler) document(c *gin.Context) {
	if _, ok := middleware.RequireUser(c); !ok {
		return
	}
	credentialID := strings.TrimSpace(c.Param("id"))

	body, mimeType, err := h.Svc.OpenDocument(c.Request.Context(), credentialID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "credential not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusServiceUnavailable, "store_unavailable", "failed to open document", nil)
		}
		return
	}
	defer body.Close()

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Header("Content-Type", mimeType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}
