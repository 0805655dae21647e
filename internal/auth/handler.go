package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sharedauth "jobhunt-backend/internal/shared/auth"
	"jobhunt-backend/internal/shared/server/respond"
	"jobhunt-backend/internal/shared/telemetry"
	"jobhunt-backend/internal/users"
)

// Handler serves email/password registration and login.
type Handler struct {
	Users  *users.Service
	Signer *sharedauth.Signer
}

func NewHandler(usersSvc *users.Service, signer *sharedauth.Signer) *Handler {
	return &Handler{Users: usersSvc, Signer: signer}
}

// RegisterRoutes attaches the public auth routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by register, login and token refresh.
type TokenResponse struct {
	Token     string     `json:"token"`
	ExpiresIn int64      `json:"expiresIn"`
	User      users.User `json:"user"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Validation(c, "email and password are required", []respond.FieldIssue{
			{Field: "email", Issue: "required"},
			{Field: "password", Issue: "required"},
		})
		return
	}

	user, err := h.Users.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, users.ErrInvalidEmail):
		respond.Validation(c, "invalid email", []respond.FieldIssue{{Field: "email", Issue: "invalid"}})
		return
	case errors.Is(err, users.ErrWeakPassword):
		respond.Validation(c, err.Error(), []respond.FieldIssue{{Field: "password", Issue: "too_short"}})
		return
	case errors.Is(err, users.ErrEmailTaken):
		respond.Error(c, http.StatusConflict, "email_taken", "an account with this email already exists", nil)
		return
	case err != nil:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to register", nil)
		return
	}

	telemetry.Info("auth.registered", map[string]any{"user_id": user.ID})
	h.issue(c, http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Validation(c, "email and password are required", nil)
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to log in", nil)
		return
	}
	h.issue(c, http.StatusOK, user)
}

func (h *Handler) issue(c *gin.Context, status int, user users.User) {
	token, err := h.Signer.Sign(user.ID, user.Email, user.Name)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	respond.JSON(c, status, TokenResponse{
		Token:     token,
		ExpiresIn: int64(h.Signer.TTL().Seconds()),
		User:      user,
	})
}
