package ai

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"jobhunt-backend/internal/analyses"
	"jobhunt-backend/internal/cache"
	"jobhunt-backend/internal/jobs"
	"jobhunt-backend/internal/llm"
	"jobhunt-backend/internal/resumes"
	"jobhunt-backend/internal/shared/metrics"
	"jobhunt-backend/internal/shared/telemetry"
	"jobhunt-backend/internal/shared/util"
	"jobhunt-backend/internal/usage"
)

const (
	temperature     = 0.2
	maxErrorMessage = 500
)

// JobSource loads jobs for context enrichment.
type JobSource interface {
	Get(ctx context.Context, userID, id string) (jobs.Job, error)
}

// ResumeSource loads resumes for context enrichment.
type ResumeSource interface {
	Get(ctx context.Context, userID, id string) (resumes.Resume, error)
	Primary(ctx context.Context, userID string) (resumes.Resume, error)
}

// Dispatcher hands a queued analysis to a worker.
type Dispatcher interface {
	Dispatch(ctx context.Context, analysisID string) error
}

// Deps are the collaborators of a Manager. Cache, Usage, Jobs and Resumes
// are optional.
type Deps struct {
	LLM        llm.Client
	Analyses   analyses.Repo
	Cache      *cache.Service
	Usage      *usage.Service
	Jobs       JobSource
	Resumes    ResumeSource
	Dispatcher Dispatcher
}

// Manager runs AI generations: validation, enrichment, caching, quota,
// the model call and history.
type Manager struct {
	Deps

	RetryDelay time.Duration
	now        func() time.Time
	newID      func() string
}

// NewManager constructs a Manager.
func NewManager(deps Deps) *Manager {
	if deps.LLM == nil {
		deps.LLM = llm.Placeholder{}
	}
	return &Manager{
		Deps:       deps,
		RetryDelay: 500 * time.Millisecond,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Options tune a single generation.
type Options struct {
	ForceRefresh bool
}

// Generation is the response of a completed generation.
type Generation struct {
	Kind        Kind            `json:"kind"`
	AnalysisID  string          `json:"analysisId,omitempty"`
	Cached      bool            `json:"cached"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Provider    string          `json:"provider,omitempty"`
	Model       string          `json:"model,omitempty"`
	Result      json.RawMessage `json:"result"`
}

// Submission is the response of an async submit.
type Submission struct {
	AnalysisID string `json:"analysisId"`
	Status     string `json:"status"`
}

type prepared struct {
	kind     Kind
	req      Request
	input    json.RawMessage
	cacheKey string
	jobID    string
}

// Generate runs the full pipeline synchronously.
func (m *Manager) Generate(ctx context.Context, userID string, kind Kind, raw []byte, opts Options) (Generation, error) {
	p, err := m.prepare(ctx, userID, kind, raw)
	if err != nil {
		return Generation{}, err
	}
	if !opts.ForceRefresh {
		if g, ok := m.lookup(ctx, userID, p); ok {
			return g, nil
		}
	}
	if err := m.consume(ctx, userID); err != nil {
		return Generation{}, err
	}

	now := m.now().UTC()
	a := analyses.Analysis{
		ID:        m.newID(),
		UserID:    userID,
		Kind:      string(kind),
		JobID:     p.jobID,
		CacheKey:  p.cacheKey,
		Status:    analyses.StatusProcessing,
		Input:     p.input,
		CreatedAt: now,
		StartedAt: &now,
	}
	if err := m.Analyses.Create(ctx, a); err != nil {
		m.refund(ctx, userID)
		return Generation{}, err
	}
	return m.run(ctx, a, p)
}

// Submit validates like Generate and queues the model call. A cache hit is
// recorded as an already completed analysis.
func (m *Manager) Submit(ctx context.Context, userID string, kind Kind, raw []byte, opts Options) (Submission, error) {
	p, err := m.prepare(ctx, userID, kind, raw)
	if err != nil {
		return Submission{}, err
	}
	now := m.now().UTC()
	a := analyses.Analysis{
		ID:        m.newID(),
		UserID:    userID,
		Kind:      string(kind),
		JobID:     p.jobID,
		CacheKey:  p.cacheKey,
		Status:    analyses.StatusQueued,
		Input:     p.input,
		CreatedAt: now,
	}

	if !opts.ForceRefresh {
		if g, ok := m.lookup(ctx, userID, p); ok {
			a.Status = analyses.StatusCompleted
			a.Result = g.Result
			a.Provider = g.Provider
			a.Model = g.Model
			a.StartedAt = &now
			a.CompletedAt = &now
			if err := m.Analyses.Create(ctx, a); err != nil {
				return Submission{}, err
			}
			return Submission{AnalysisID: a.ID, Status: a.Status}, nil
		}
	}

	if m.Dispatcher == nil {
		return Submission{}, errors.New("analysis dispatcher not configured")
	}
	if err := m.consume(ctx, userID); err != nil {
		return Submission{}, err
	}
	if err := m.Analyses.Create(ctx, a); err != nil {
		m.refund(ctx, userID)
		return Submission{}, err
	}
	if err := m.Dispatcher.Dispatch(ctx, a.ID); err != nil {
		m.refund(ctx, userID)
		if ferr := m.Analyses.Fail(ctx, a.ID, "dispatch_failed", "could not queue analysis", m.now().UTC()); ferr != nil {
			telemetry.Error("ai.fail_record_failed", map[string]any{"analysis_id": a.ID, "error": ferr})
		}
		return Submission{}, err
	}
	telemetry.Info("ai.submitted", map[string]any{
		"analysis_id": a.ID,
		"kind":        kind,
		"user_id":     userID,
		"request_id":  analyses.RequestIDFromContext(ctx),
	})
	return Submission{AnalysisID: a.ID, Status: a.Status}, nil
}

// Process runs a queued analysis. Analyses in any other state are left
// alone, so redelivered messages are harmless. Model failures are recorded
// on the analysis and do not return an error.
func (m *Manager) Process(ctx context.Context, analysisID string) error {
	a, err := m.Analyses.GetByID(ctx, analysisID)
	if err != nil {
		return err
	}
	fields := map[string]any{
		"analysis_id": a.ID,
		"kind":        a.Kind,
		"status":      a.Status,
		"request_id":  analyses.RequestIDFromContext(ctx),
	}
	if a.Status != analyses.StatusQueued {
		telemetry.Info("ai.process_skipped", fields)
		return nil
	}
	now := m.now().UTC()
	if err := m.Analyses.MarkProcessing(ctx, a.ID, now); err != nil {
		if errors.Is(err, analyses.ErrNotQueued) {
			telemetry.Info("ai.process_skipped", fields)
			return nil
		}
		return err
	}
	a.Status = analyses.StatusProcessing
	a.StartedAt = &now

	kind, ok := ParseKind(a.Kind)
	if !ok {
		m.refund(ctx, a.UserID)
		return m.Analyses.Fail(ctx, a.ID, "invalid_input", "unknown kind", now)
	}
	req := features[kind].newRequest()
	if err := decodeStrict(a.Input, req); err != nil {
		m.refund(ctx, a.UserID)
		return m.Analyses.Fail(ctx, a.ID, "invalid_input", util.SanitizeMessage(err.Error(), maxErrorMessage), now)
	}
	p := prepared{kind: kind, req: req, input: a.Input, cacheKey: a.CacheKey, jobID: a.JobID}

	telemetry.Info("ai.process_started", fields)
	if _, err := m.run(ctx, a, p); err != nil {
		var gerr *GenerationError
		if errors.As(err, &gerr) {
			return nil
		}
		return err
	}
	return nil
}

// Render validates a request and returns its prompt without calling the
// model. Job and resume references are not resolved.
func (m *Manager) Render(kind Kind, raw []byte) (Prompt, error) {
	p, err := m.prepare(context.Background(), "", kind, raw)
	if err != nil {
		return Prompt{}, err
	}
	return RenderPrompt(kind, p.req)
}

// Run calls the model for a request and returns the validated result. It
// bypasses the cache, the quota and the history.
func (m *Manager) Run(ctx context.Context, kind Kind, raw []byte) (Generation, error) {
	p, err := m.prepare(ctx, "", kind, raw)
	if err != nil {
		return Generation{}, err
	}
	prompt, err := RenderPrompt(kind, p.req)
	if err != nil {
		return Generation{}, err
	}
	resp, err := m.complete(ctx, prompt)
	if err != nil {
		return Generation{}, &GenerationError{Code: classify(err), Err: err}
	}
	result, err := ParseResult(kind, p.req, resp.Text)
	if err != nil {
		return Generation{}, &GenerationError{Code: CodeInvalidResponse, Err: err}
	}
	return Generation{
		Kind:        kind,
		GeneratedAt: m.now().UTC(),
		Provider:    resp.Provider,
		Model:       resp.Model,
		Result:      result,
	}, nil
}

func (m *Manager) prepare(ctx context.Context, userID string, kind Kind, raw []byte) (prepared, error) {
	f, ok := features[kind]
	if !ok {
		return prepared{}, ErrUnknownKind
	}
	req := f.newRequest()
	if err := decodeStrict(raw, req); err != nil {
		return prepared{}, &ValidationError{Message: "invalid request body", Issues: []Issue{decodeIssue(err)}}
	}
	req.applyDefaults()
	if err := m.enrich(ctx, userID, kind, req); err != nil {
		return prepared{}, err
	}
	finalize(req)
	if issues := validateStruct(req); len(issues) > 0 {
		return prepared{}, &ValidationError{Message: "invalid request", Issues: issues}
	}

	input, err := json.Marshal(req)
	if err != nil {
		return prepared{}, err
	}
	hash, err := util.CanonicalJSONHash(req)
	if err != nil {
		return prepared{}, err
	}
	jobID, _ := req.refs()
	return prepared{kind: kind, req: req, input: input, cacheKey: string(kind) + ":" + hash, jobID: jobID}, nil
}

func (m *Manager) enrich(ctx context.Context, userID string, kind Kind, req Request) error {
	if userID == "" {
		return nil
	}
	jobID, resumeID := req.refs()
	if jobID != "" && m.Jobs != nil {
		job, err := m.Jobs.Get(ctx, userID, jobID)
		if errors.Is(err, jobs.ErrNotFound) {
			return ErrJobNotFound
		}
		if err != nil {
			return err
		}
		req.applyJob(job)
	}
	if m.Resumes == nil {
		return nil
	}
	switch {
	case resumeID != "":
		res, err := m.Resumes.Get(ctx, userID, resumeID)
		if errors.Is(err, resumes.ErrNotFound) {
			return ErrResumeNotFound
		}
		if err != nil {
			return err
		}
		req.applyResume(res.TextContent)
	case kind.usesResume():
		res, err := m.Resumes.Primary(ctx, userID)
		if errors.Is(err, resumes.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		req.applyResume(res.TextContent)
	}
	return nil
}

// cachedGeneration is what the unified cache stores for a generation.
type cachedGeneration struct {
	AnalysisID  string          `json:"analysisId,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Provider    string          `json:"provider,omitempty"`
	Model       string          `json:"model,omitempty"`
	Result      json.RawMessage `json:"result"`
}

func (m *Manager) lookup(ctx context.Context, userID string, p prepared) (Generation, bool) {
	if m.Cache == nil {
		return Generation{}, false
	}
	e, err := m.Cache.Get(ctx, userID, p.cacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			telemetry.Warn("ai.cache_lookup_failed", map[string]any{"kind": p.kind, "error": err})
		}
		return Generation{}, false
	}
	var cg cachedGeneration
	if err := json.Unmarshal(e.Value, &cg); err != nil || len(cg.Result) == 0 {
		telemetry.Warn("ai.cache_entry_invalid", map[string]any{"kind": p.kind, "key": p.cacheKey})
		return Generation{}, false
	}
	metrics.ObserveAIGeneration(string(p.kind), "cached", 0)
	return Generation{
		Kind:        p.kind,
		AnalysisID:  cg.AnalysisID,
		Cached:      true,
		GeneratedAt: cg.GeneratedAt,
		Provider:    cg.Provider,
		Model:       cg.Model,
		Result:      cg.Result,
	}, true
}

func (m *Manager) store(ctx context.Context, userID string, p prepared, g Generation) {
	if m.Cache == nil {
		return
	}
	value, err := json.Marshal(cachedGeneration{
		AnalysisID:  g.AnalysisID,
		GeneratedAt: g.GeneratedAt,
		Provider:    g.Provider,
		Model:       g.Model,
		Result:      g.Result,
	})
	if err == nil {
		_, err = m.Cache.Set(analyses.DetachedContext(ctx), userID, p.cacheKey, value, p.kind.TTL())
	}
	if err != nil {
		telemetry.Warn("ai.cache_store_failed", map[string]any{"kind": p.kind, "key": p.cacheKey, "error": err})
	}
}

func (m *Manager) consume(ctx context.Context, userID string) error {
	if m.Usage == nil {
		return nil
	}
	u, err := m.Usage.Consume(ctx, userID, 1)
	if errors.Is(err, usage.ErrLimitReached) {
		return &LimitError{Usage: u}
	}
	return err
}

// refund returns a consumed unit. It runs detached so a cancelled request
// still gets its unit back.
func (m *Manager) refund(ctx context.Context, userID string) {
	if m.Usage == nil {
		return
	}
	if err := m.Usage.Refund(analyses.DetachedContext(ctx), userID, 1); err != nil {
		telemetry.Warn("ai.refund_failed", map[string]any{"user_id": userID, "error": err})
	}
}

// run calls the model for an analysis that is already processing and
// records the outcome.
func (m *Manager) run(ctx context.Context, a analyses.Analysis, p prepared) (Generation, error) {
	start := m.now()
	fields := map[string]any{
		"analysis_id": a.ID,
		"kind":        p.kind,
		"user_id":     a.UserID,
		"request_id":  analyses.RequestIDFromContext(ctx),
	}

	prompt, err := RenderPrompt(p.kind, p.req)
	var resp llm.Response
	if err == nil {
		resp, err = m.complete(ctx, prompt)
	}
	var result json.RawMessage
	if err == nil {
		result, err = ParseResult(p.kind, p.req, resp.Text)
	}
	elapsed := m.now().Sub(start)
	fields["duration_ms"] = elapsed.Milliseconds()

	if err != nil {
		code := classify(err)
		fields["code"] = code
		fields["error"] = err
		telemetry.Error("ai.generation_failed", fields)
		metrics.ObserveAIGeneration(string(p.kind), "failed", elapsed)
		m.refund(ctx, a.UserID)

		msg := util.SanitizeMessage(err.Error(), maxErrorMessage)
		if ferr := m.Analyses.Fail(analyses.DetachedContext(ctx), a.ID, code, msg, m.now().UTC()); ferr != nil {
			telemetry.Error("ai.fail_record_failed", map[string]any{"analysis_id": a.ID, "error": ferr})
		}
		return Generation{}, &GenerationError{Code: code, AnalysisID: a.ID, Err: err}
	}

	g := Generation{
		Kind:        p.kind,
		AnalysisID:  a.ID,
		GeneratedAt: m.now().UTC(),
		Provider:    resp.Provider,
		Model:       resp.Model,
		Result:      result,
	}
	out := analyses.Outcome{Result: result, Provider: resp.Provider, Model: resp.Model, At: g.GeneratedAt}
	if err := m.Analyses.Complete(analyses.DetachedContext(ctx), a.ID, out); err != nil {
		telemetry.Error("ai.complete_record_failed", map[string]any{"analysis_id": a.ID, "error": err})
	}
	m.store(ctx, a.UserID, p, g)

	fields["provider"] = resp.Provider
	fields["model"] = resp.Model
	telemetry.Info("ai.generation_completed", fields)
	metrics.ObserveAIGeneration(string(p.kind), "completed", elapsed)
	return g, nil
}

// complete calls the model, retrying once on a transient failure.
func (m *Manager) complete(ctx context.Context, prompt Prompt) (llm.Response, error) {
	req := llm.Request{System: prompt.System, Prompt: prompt.User, JSON: true, Temperature: temperature}
	resp, err := m.LLM.Complete(ctx, req)
	if err == nil || !llm.IsTransient(err) || ctx.Err() != nil {
		return resp, err
	}
	telemetry.Warn("ai.retry", map[string]any{"error": err, "request_id": analyses.RequestIDFromContext(ctx)})
	if m.RetryDelay > 0 {
		t := time.NewTimer(m.RetryDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return llm.Response{}, ctx.Err()
		}
	}
	return m.LLM.Complete(ctx, req)
}
