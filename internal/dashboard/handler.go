package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"credentials-backend/internal/credentials"
	"credentials-backend/internal/shared/server/middleware"
	"credentials-backend/internal/shared/server/respond"
)

// Handler serves the aggregate dashboard view.
type Handler struct {
	Svc        *Service
	GatewayURL string
}

func NewHandler(svc *Service, gatewayURL string) *Handler {
	return &Handler{Svc: svc, GatewayURL: gatewayURL}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.view)
}

func (h *Handler) view(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}

	// No identity is a valid state, not an error: render signed-out.
	if !middleware.SignedInFromContext(c) {
		respond.JSON(c, http.StatusOK, gin.H{
			"signedIn":    false,
			"credentials": []credentials.CredentialResponse{},
		})
		return
	}

	userID := middleware.UserIDFromContext(c)
	view, err := h.Svc.View(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusServiceUnavailable, "store_unavailable", "failed to load dashboard", nil)
		return
	}

	creds := make([]credentials.CredentialResponse, 0, len(view.Credentials))
	for _, cred := range view.Credentials {
		creds = append(creds, credentials.ToResponse(cred, h.GatewayURL))
	}

	payload := gin.H{
		"signedIn": true,
		"newUser":  view.NewUser,
		"profile": gin.H{
			"id":          view.Profile.ID,
			"email":       view.Profile.Email,
			"displayName": view.Profile.DisplayName,
			"pictureUrl":  view.Profile.PictureURL,
		},
		"credentials": creds,
	}
	if view.FailedLookups > 0 {
		payload["failedLookups"] = view.FailedLookups
	}
	respond.JSON(c, http.StatusOK, payload)
}
