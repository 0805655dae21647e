package analyses

import (
	"context"
	"time"
)

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, a Analysis) error
	Get(ctx context.Context, userID, id string) (Analysis, error)
	GetByID(ctx context.Context, id string) (Analysis, error)
	List(ctx context.Context, userID string, f Filter) ([]Analysis, int, error)
	// MarkProcessing moves a queued analysis to processing. It returns
	// ErrNotQueued for any other state.
	MarkProcessing(ctx context.Context, id string, at time.Time) error
	Complete(ctx context.Context, id string, out Outcome) error
	Fail(ctx context.Context, id, code, message string, at time.Time) error
	Delete(ctx context.Context, userID, id string) error
}
