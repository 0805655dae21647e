package analyses

import (
	"context"
	"time"
)

// Service exposes the analysis history.
type Service struct {
	Repo  Repo
	polls *pollLimiter
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, polls: newPollLimiter(pollLimitWindow, time.Now)}
}

func (s *Service) Get(ctx context.Context, userID, id string) (Analysis, error) {
	return s.Repo.Get(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, f Filter) ([]Analysis, int, error) {
	return s.Repo.List(ctx, userID, f.Normalized())
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.Repo.Delete(ctx, userID, id)
}
