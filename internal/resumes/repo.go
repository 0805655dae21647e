package resumes

import "context"

// Repo persists resumes. Deleted resumes are invisible to every read.
type Repo interface {
	// Create stores r and returns it. The resume becomes primary when the
	// user has no other live resume; r.IsPrimary is ignored.
	Create(ctx context.Context, r Resume) (Resume, error)
	Get(ctx context.Context, userID, id string) (Resume, error)
	Primary(ctx context.Context, userID string) (Resume, error)
	List(ctx context.Context, userID string) ([]Resume, error)
	SetPrimary(ctx context.Context, userID, id string) error
	SoftDelete(ctx context.Context, userID, id string) (Resume, error)
}
