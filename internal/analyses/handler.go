package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobhunt-backend/internal/shared/server/middleware"
	"jobhunt-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis history routes. Submission lives with
// the AI routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.DELETE("/analyses/:id", h.deleteAnalysis)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")
	c.Set("analysisId", analysisID)

	if !h.Svc.polls.Allow(userID, analysisID) {
		retry := h.Svc.polls.RetryAfterSeconds()
		c.Header("Retry-After", strconv.Itoa(retry))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "polling too fast", gin.H{"retryAfterMs": retry * 1000})
		return
	}

	analysis, err := h.Svc.Get(c.Request.Context(), userID, analysisID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, analysis)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	f := Filter{
		Kind:   c.Query("kind"),
		Status: c.Query("status"),
		JobID:  c.Query("jobId"),
		Limit:  limit,
		Offset: offset,
	}.Normalized()

	items, total, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), f)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, respond.Page[Analysis]{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset})
}

func (h *Handler) deleteAnalysis(c *gin.Context) {
	analysisID := c.Param("id")
	c.Set("analysisId", analysisID)
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), analysisID); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis request failed", nil)
	}
}
