package cache

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobhunt-backend/internal/shared/server/middleware"
	"jobhunt-backend/internal/shared/server/respond"
)

// Handler exposes the per-user cache over HTTP.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the cache routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cache/:key", h.get)
	rg.PUT("/cache/:key", h.put)
	rg.DELETE("/cache/:key", h.delete)
	rg.DELETE("/cache", h.deletePrefix)
}

type entryResponse struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

type putRequest struct {
	Value      json.RawMessage `json:"value"`
	TTLSeconds int64           `json:"ttlSeconds"`
}

func (h *Handler) get(c *gin.Context) {
	e, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, entryResponse{Key: e.Key, Value: e.Value, ExpiresAt: e.ExpiresAt})
}

func (h *Handler) put(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxValueSize+4096)
	var req putRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, ErrValueTooBig)
			return
		}
		respond.Validation(c, "invalid JSON body", nil)
		return
	}
	if req.TTLSeconds < 0 {
		respond.Validation(c, "invalid cache entry", []respond.FieldIssue{{Field: "ttlSeconds", Issue: "must not be negative"}})
		return
	}
	if req.TTLSeconds > int64(MaxTTL/time.Second) {
		writeError(c, ErrInvalidTTL)
		return
	}
	e, err := h.Svc.Set(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("key"), req.Value, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, entryResponse{Key: e.Key, Value: e.Value, ExpiresAt: e.ExpiresAt})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Invalidate(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("key")); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) deletePrefix(c *gin.Context) {
	n, err := h.Svc.InvalidatePrefix(c.Request.Context(), middleware.UserIDFromContext(c), c.Query("prefix"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"deleted": n})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "cache entry not found", nil)
	case errors.Is(err, ErrInvalidKey):
		respond.Validation(c, "invalid cache key", []respond.FieldIssue{{Field: "key", Issue: err.Error()}})
	case errors.Is(err, ErrInvalidValue):
		respond.Validation(c, "invalid cache entry", []respond.FieldIssue{{Field: "value", Issue: err.Error()}})
	case errors.Is(err, ErrInvalidTTL):
		respond.Validation(c, "invalid cache entry", []respond.FieldIssue{{Field: "ttlSeconds", Issue: err.Error()}})
	case errors.Is(err, ErrValueTooBig):
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "cache request failed", nil)
	}
}
