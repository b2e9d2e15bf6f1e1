package profiles

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"credentials-backend/internal/shared/server/middleware"
	"credentials-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	profile, err := h.Svc.Resolve(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
			return
		}
		respond.Error(c, http.StatusServiceUnavailable, "store_unavailable", "failed to load profile", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"id":            profile.ID,
		"email":         profile.Email,
		"displayName":   profile.DisplayName,
		"pictureUrl":    profile.PictureURL,
		"credentialIds": profile.CredentialIDs,
	})
}
