package jobs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobhunt-backend/internal/shared/server/middleware"
	"jobhunt-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the jobs service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the job and job event routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs", h.create)
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/stats", h.stats)
	rg.GET("/jobs/:id", h.get)
	rg.PATCH("/jobs/:id", h.update)
	rg.DELETE("/jobs/:id", h.delete)
	rg.GET("/jobs/:id/events", h.events)
}

func (h *Handler) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Validation(c, "invalid JSON body", nil)
		return
	}
	job, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("jobId", job.ID)
	respond.JSON(c, http.StatusCreated, job)
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	f := Filter{
		Status: Status(c.Query("status")),
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	}.Normalized()
	items, total, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), f)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, respond.Page[Job]{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset})
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set("jobId", id)
	job, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, job)
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	c.Set("jobId", id)
	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Validation(c, "invalid JSON body", nil)
		return
	}
	job, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, job)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set("jobId", id)
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, stats)
}

func (h *Handler) events(c *gin.Context) {
	id := c.Param("id")
	c.Set("jobId", id)
	events, err := h.Svc.Events(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"items": events})
}

func writeError(c *gin.Context, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		issues := make([]respond.FieldIssue, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			issues = append(issues, respond.FieldIssue{Field: f.Field, Issue: f.Issue})
		}
		respond.Validation(c, "invalid job", issues)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "job request failed", nil)
	}
}
