package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobhunt-backend/internal/analyses"
	"jobhunt-backend/internal/shared/server/middleware"
	"jobhunt-backend/internal/shared/server/respond"
	"jobhunt-backend/internal/usage"
)

const maxBodyBytes = 256 << 10

// Handler wires HTTP handlers to the AI manager.
type Handler struct {
	Mgr *Manager
}

// NewHandler constructs a Handler.
func NewHandler(mgr *Manager) *Handler {
	return &Handler{Mgr: mgr}
}

// RegisterRoutes attaches the read-only AI routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ai/options", h.options)
}

// RegisterGenerationRoutes attaches the routes that spend quota. rg usually
// carries the AI rate limiter.
func (h *Handler) RegisterGenerationRoutes(rg *gin.RouterGroup) {
	for _, k := range Kinds {
		rg.POST("/ai/"+k.Slug(), h.generate(k))
	}
	rg.POST("/analyses", h.submit)
}

func (h *Handler) options(c *gin.Context) {
	respond.OK(c, AllOptions())
}

func (h *Handler) generate(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("aiKind", string(kind))
		raw, ok := readBody(c)
		if !ok {
			return
		}
		body, force, err := splitForceRefresh(raw)
		if err != nil {
			respond.Validation(c, "invalid JSON body", []respond.FieldIssue{{Field: "body", Issue: "must be a JSON object"}})
			return
		}

		ctx := analyses.WithRequestID(c.Request.Context(), c.GetString("requestId"))
		gen, err := h.Mgr.Generate(ctx, middleware.UserIDFromContext(c), kind, body, Options{ForceRefresh: force})
		if err != nil {
			writeError(c, err)
			return
		}
		if gen.AnalysisID != "" {
			c.Set("analysisId", gen.AnalysisID)
		}
		respond.OK(c, gen)
	}
}

type submitRequest struct {
	Kind         string          `json:"kind"`
	Input        json.RawMessage `json:"input"`
	ForceRefresh bool            `json:"forceRefresh"`
}

func (h *Handler) submit(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	var in submitRequest
	if err := decodeStrict(raw, &in); err != nil {
		is := decodeIssue(err)
		respond.Validation(c, "invalid request body", []respond.FieldIssue{{Field: is.Field, Issue: is.Issue}})
		return
	}
	kind, ok := ParseKind(in.Kind)
	if !ok {
		respond.Validation(c, "invalid request", []respond.FieldIssue{{Field: "kind", Issue: "must be a known AI kind"}})
		return
	}
	c.Set("aiKind", string(kind))

	ctx := analyses.WithRequestID(c.Request.Context(), c.GetString("requestId"))
	sub, err := h.Mgr.Submit(ctx, middleware.UserIDFromContext(c), kind, in.Input, Options{ForceRefresh: in.ForceRefresh})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("analysisId", sub.AnalysisID)
	respond.JSON(c, http.StatusAccepted, sub)
}

func readBody(c *gin.Context) ([]byte, bool) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		respond.Validation(c, "could not read request body", nil)
		return nil, false
	}
	if len(raw) > maxBodyBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", nil)
		return nil, false
	}
	return raw, true
}

// splitForceRefresh removes the forceRefresh flag from a request body so
// the rest can be decoded strictly.
func splitForceRefresh(raw []byte) ([]byte, bool, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false, err
	}
	flag, ok := fields["forceRefresh"]
	if !ok {
		return raw, false, nil
	}
	delete(fields, "forceRefresh")
	var force bool
	if err := json.Unmarshal(flag, &force); err != nil {
		return nil, false, err
	}
	rest, err := json.Marshal(fields)
	return rest, force, err
}

func writeError(c *gin.Context, err error) {
	var (
		ve    *ValidationError
		limit *LimitError
		gen   *GenerationError
	)
	switch {
	case errors.As(err, &ve):
		issues := make([]respond.FieldIssue, 0, len(ve.Issues))
		for _, is := range ve.Issues {
			issues = append(issues, respond.FieldIssue{Field: is.Field, Issue: is.Issue})
		}
		respond.Validation(c, ve.Message, issues)
	case errors.Is(err, ErrUnknownKind):
		respond.Validation(c, "invalid request", []respond.FieldIssue{{Field: "kind", Issue: "must be a known AI kind"}})
	case errors.Is(err, ErrJobNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
	case errors.Is(err, ErrResumeNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.As(err, &limit):
		respond.Error(c, http.StatusTooManyRequests, "limit_reached", "AI generation limit reached for this week", usage.LimitDetails(limit.Usage))
	case errors.As(err, &gen):
		var details any
		if gen.AnalysisID != "" {
			details = gin.H{"analysisId": gen.AnalysisID}
		}
		respond.Error(c, gen.Status(), gen.Code, gen.Message(), details)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "AI request failed", nil)
	}
}
