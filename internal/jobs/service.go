package jobs

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"jobhunt-backend/internal/shared/telemetry"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200

	maxNameLen        = 200
	maxNotesLen       = 10000
	maxDescriptionLen = 50000
)

// CreateInput holds the fields accepted when creating a job.
type CreateInput struct {
	Company     string     `json:"company"`
	Title       string     `json:"title"`
	Location    string     `json:"location"`
	URL         string     `json:"url"`
	Status      Status     `json:"status"`
	SalaryMin   *int64     `json:"salaryMin"`
	SalaryMax   *int64     `json:"salaryMax"`
	Currency    string     `json:"currency"`
	Notes       string     `json:"notes"`
	Description string     `json:"description"`
	AppliedAt   *time.Time `json:"appliedAt"`
}

// UpdateInput is a partial update; nil fields are left unchanged. A salary
// of 0 clears the bound.
type UpdateInput struct {
	Company     *string    `json:"company"`
	Title       *string    `json:"title"`
	Location    *string    `json:"location"`
	URL         *string    `json:"url"`
	Status      *Status    `json:"status"`
	SalaryMin   *int64     `json:"salaryMin"`
	SalaryMax   *int64     `json:"salaryMax"`
	Currency    *string    `json:"currency"`
	Notes       *string    `json:"notes"`
	Description *string    `json:"description"`
	AppliedAt   *time.Time `json:"appliedAt"`
}

type Service struct {
	Repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Job, error) {
	now := s.now()
	job := Job{
		ID:          uuid.NewString(),
		UserID:      userID,
		Company:     strings.TrimSpace(in.Company),
		Title:       strings.TrimSpace(in.Title),
		Location:    strings.TrimSpace(in.Location),
		URL:         strings.TrimSpace(in.URL),
		Status:      in.Status,
		SalaryMin:   in.SalaryMin,
		SalaryMax:   in.SalaryMax,
		Currency:    strings.ToUpper(strings.TrimSpace(in.Currency)),
		Notes:       in.Notes,
		Description: in.Description,
		AppliedAt:   in.AppliedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if job.Status == "" {
		job.Status = StatusSaved
	}
	if job.Currency == "" {
		job.Currency = "USD"
	}
	s.stampApplied(&job)
	if err := validate(job); err != nil {
		return Job{}, err
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}
	s.record(ctx, Event{JobID: job.ID, UserID: userID, Type: EventCreated, ToStatus: job.Status})
	telemetry.Info("job.created", map[string]any{"user_id": userID, "job_id": job.ID, "status": job.Status})
	return job, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Job, error) {
	return s.Repo.Get(ctx, userID, id)
}

// List returns a page of jobs and the total matching count.
func (s *Service) List(ctx context.Context, userID string, f Filter) ([]Job, int, error) {
	f = f.Normalized()
	if f.Status != "" && !f.Status.Valid() {
		ve := &ValidationError{}
		ve.add("status", "invalid")
		return nil, 0, ve
	}
	return s.Repo.List(ctx, userID, f)
}

// Normalized applies the default and maximum page size.
func (f Filter) Normalized() Filter {
	f.Query = strings.TrimSpace(f.Query)
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (Job, error) {
	job, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return Job{}, err
	}
	prevStatus := job.Status

	if in.Company != nil {
		job.Company = strings.TrimSpace(*in.Company)
	}
	if in.Title != nil {
		job.Title = strings.TrimSpace(*in.Title)
	}
	if in.Location != nil {
		job.Location = strings.TrimSpace(*in.Location)
	}
	if in.URL != nil {
		job.URL = strings.TrimSpace(*in.URL)
	}
	if in.Status != nil {
		job.Status = *in.Status
	}
	if in.SalaryMin != nil {
		job.SalaryMin = clearZero(in.SalaryMin)
	}
	if in.SalaryMax != nil {
		job.SalaryMax = clearZero(in.SalaryMax)
	}
	if in.Currency != nil {
		job.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	if in.Notes != nil {
		job.Notes = *in.Notes
	}
	if in.Description != nil {
		job.Description = *in.Description
	}
	if in.AppliedAt != nil {
		job.AppliedAt = in.AppliedAt
	}
	s.stampApplied(&job)
	if err := validate(job); err != nil {
		return Job{}, err
	}

	job.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, job); err != nil {
		return Job{}, err
	}
	if job.Status != prevStatus {
		s.record(ctx, Event{JobID: job.ID, UserID: userID, Type: EventStatusChanged, FromStatus: prevStatus, ToStatus: job.Status})
		telemetry.Info("job.status_changed", map[string]any{
			"user_id": userID,
			"job_id":  job.ID,
			"from":    prevStatus,
			"to":      job.Status,
		})
	} else if in.editsFields() {
		s.record(ctx, Event{JobID: job.ID, UserID: userID, Type: EventUpdated})
	}
	return job, nil
}

// editsFields reports whether the update touches anything besides status.
func (in UpdateInput) editsFields() bool {
	return in.Company != nil || in.Title != nil || in.Location != nil || in.URL != nil ||
		in.SalaryMin != nil || in.SalaryMax != nil || in.Currency != nil ||
		in.Notes != nil || in.Description != nil || in.AppliedAt != nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.Repo.Delete(ctx, userID, id)
}

// Stats counts jobs per status; every status is present in the result.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	counts, err := s.Repo.CountByStatus(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	out := Stats{ByStatus: make(map[Status]int, len(Statuses))}
	for _, st := range Statuses {
		out.ByStatus[st] = counts[st]
		out.Total += counts[st]
	}
	return out, nil
}

func (s *Service) Events(ctx context.Context, userID, jobID string) ([]Event, error) {
	return s.Repo.ListEvents(ctx, userID, jobID)
}

func (s *Service) stampApplied(job *Job) {
	if job.Status == StatusApplied && job.AppliedAt == nil {
		t := s.now()
		job.AppliedAt = &t
	}
}

// record appends a timeline event. A failed write is logged, not returned:
// the job change itself already succeeded.
func (s *Service) record(ctx context.Context, ev Event) {
	ev.ID = uuid.NewString()
	ev.CreatedAt = s.now()
	if err := s.Repo.AddEvent(ctx, ev); err != nil {
		telemetry.Error("job.event_failed", map[string]any{"job_id": ev.JobID, "err": err})
	}
}

func validate(job Job) error {
	ve := &ValidationError{}
	checkName := func(field, v string) {
		switch {
		case v == "":
			ve.add(field, "required")
		case utf8.RuneCountInString(v) > maxNameLen:
			ve.add(field, "too_long")
		}
	}
	checkName("company", job.Company)
	checkName("title", job.Title)
	if utf8.RuneCountInString(job.Location) > maxNameLen {
		ve.add("location", "too_long")
	}
	if !job.Status.Valid() {
		ve.add("status", "invalid")
	}
	if job.URL != "" {
		u, err := url.Parse(job.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			ve.add("url", "invalid")
		}
	}
	if job.SalaryMin != nil && *job.SalaryMin < 0 {
		ve.add("salaryMin", "negative")
	}
	if job.SalaryMax != nil && *job.SalaryMax < 0 {
		ve.add("salaryMax", "negative")
	}
	if job.SalaryMin != nil && job.SalaryMax != nil && *job.SalaryMin > *job.SalaryMax {
		ve.add("salaryMin", "greater_than_max")
	}
	if !isCurrencyCode(job.Currency) {
		ve.add("currency", "invalid")
	}
	if utf8.RuneCountInString(job.Notes) > maxNotesLen {
		ve.add("notes", "too_long")
	}
	if utf8.RuneCountInString(job.Description) > maxDescriptionLen {
		ve.add("description", "too_long")
	}
	return ve.orNil()
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func clearZero(v *int64) *int64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}
