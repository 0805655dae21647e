package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobhunt-backend/internal/shared/server/middleware"
	"jobhunt-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.PATCH("/me", h.updateMe)
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) updateMe(c *gin.Context) {
	var in ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Validation(c, "invalid JSON body", nil)
		return
	}
	user, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, user)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
	case errors.Is(err, ErrInvalidName):
		respond.Validation(c, err.Error(), []respond.FieldIssue{{Field: "name", Issue: "too_long"}})
	case errors.Is(err, ErrInvalidAvatarURL):
		respond.Validation(c, err.Error(), []respond.FieldIssue{{Field: "avatarUrl", Issue: "invalid"}})
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
	}
}
