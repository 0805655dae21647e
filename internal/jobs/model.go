package jobs

import "time"

// Status is the stage of a job application.
type Status string

const (
	StatusSaved        Status = "saved"
	StatusApplied      Status = "applied"
	StatusInterviewing Status = "interviewing"
	StatusOffer        Status = "offer"
	StatusRejected     Status = "rejected"
	StatusWithdrawn    Status = "withdrawn"
	StatusAccepted     Status = "accepted"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{
	StatusSaved,
	StatusApplied,
	StatusInterviewing,
	StatusOffer,
	StatusRejected,
	StatusWithdrawn,
	StatusAccepted,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Job is a tracked job application.
type Job struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	Company     string     `json:"company"`
	Title       string     `json:"title"`
	Location    string     `json:"location"`
	URL         string     `json:"url"`
	Status      Status     `json:"status"`
	SalaryMin   *int64     `json:"salaryMin,omitempty"`
	SalaryMax   *int64     `json:"salaryMax,omitempty"`
	Currency    string     `json:"currency"`
	Notes       string     `json:"notes"`
	Description string     `json:"description"`
	AppliedAt   *time.Time `json:"appliedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// EventType names a timeline entry.
type EventType string

const (
	EventCreated       EventType = "created"
	EventStatusChanged EventType = "status_changed"
	EventUpdated       EventType = "updated"
)

// Event is one entry in a job's timeline.
type Event struct {
	ID         string    `json:"id"`
	JobID      string    `json:"jobId"`
	UserID     string    `json:"-"`
	Type       EventType `json:"type"`
	FromStatus Status    `json:"fromStatus,omitempty"`
	ToStatus   Status    `json:"toStatus,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Filter narrows List results.
type Filter struct {
	Status Status
	Query  string
	Limit  int
	Offset int
}

// Stats summarizes a user's pipeline.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"byStatus"`
}
