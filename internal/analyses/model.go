package analyses

import (
	"encoding/json"
	"time"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Analysis is one AI generation, synchronous or queued.
type Analysis struct {
	ID           string          `json:"id"`
	UserID       string          `json:"-"`
	Kind         string          `json:"kind"`
	JobID        string          `json:"jobId,omitempty"`
	CacheKey     string          `json:"-"`
	Status       string          `json:"status"`
	Input        json.RawMessage `json:"input"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorCode    string          `json:"errorCode,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Provider     string          `json:"provider,omitempty"`
	Model        string          `json:"model,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	StartedAt    *time.Time      `json:"startedAt,omitempty"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}

// Summary drops the bulky payloads for list responses.
func (a Analysis) Summary() Analysis {
	a.Input = nil
	a.Result = nil
	return a
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Kind   string
	Status string
	JobID  string
	Limit  int
	Offset int
}

// Normalized clamps paging to sane bounds.
func (f Filter) Normalized() Filter {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Outcome is the terminal state written by Complete.
type Outcome struct {
	Result   json.RawMessage
	Provider string
	Model    string
	At       time.Time
}
