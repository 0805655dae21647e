package jobs

import "context"

// Repo persists jobs and their timeline. Every method is scoped to userID;
// a job owned by another user is reported as ErrNotFound.
type Repo interface {
	Create(ctx context.Context, job Job) error
	Get(ctx context.Context, userID, id string) (Job, error)
	List(ctx context.Context, userID string, f Filter) ([]Job, int, error)
	Update(ctx context.Context, job Job) error
	Delete(ctx context.Context, userID, id string) error
	CountByStatus(ctx context.Context, userID string) (map[Status]int, error)
	AddEvent(ctx context.Context, ev Event) error
	ListEvents(ctx context.Context, userID, jobID string) ([]Event, error)
}
