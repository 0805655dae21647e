package usage

import (
	"context"
	"time"
)

type store interface {
	Ensure(ctx context.Context, userID string, p Policy, now time.Time) (Usage, error)
	Consume(ctx context.Context, userID string, n int, p Policy, now time.Time) (Usage, error)
	Refund(ctx context.Context, userID string, n int) error
	Reset(ctx context.Context, userID string, p Policy, now time.Time) (Usage, error)
	Delete(ctx context.Context, userID string) error
}

// Service manages usage data via an underlying store.
type Service struct {
	store  store
	policy Policy
	now    func() time.Time
}

// NewService constructs a Service with an in-memory store.
func NewService(limit int) *Service {
	return newService(newMemoryStore(), limit)
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore *PGStore, limit int) *Service {
	return newService(pgStore, limit)
}

func newService(s store, limit int) *Service {
	if limit <= 0 {
		limit = 25
	}
	return &Service{store: s, policy: Policy{Plan: PlanFree, Limit: limit}, now: time.Now}
}

// Get returns the current usage for a user, starting a new window if the
// previous one ended.
func (s *Service) Get(ctx context.Context, userID string) (Usage, error) {
	return s.store.Ensure(ctx, userID, s.policy, s.now().UTC())
}

// CanConsume reports whether the user can consume n units.
func (s *Service) CanConsume(ctx context.Context, userID string, n int) (bool, Usage, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return false, Usage{}, err
	}
	if n <= 0 {
		return true, u, nil
	}
	return u.Used+n <= u.Limit, u, nil
}

// Consume atomically adds n units. When the quota would be exceeded it
// returns ErrLimitReached together with the unchanged usage.
func (s *Service) Consume(ctx context.Context, userID string, n int) (Usage, error) {
	if n <= 0 {
		return s.Get(ctx, userID)
	}
	return s.store.Consume(ctx, userID, n, s.policy, s.now().UTC())
}

// Refund returns n units after a generation that produced nothing.
func (s *Service) Refund(ctx context.Context, userID string, n int) error {
	if n <= 0 {
		return nil
	}
	return s.store.Refund(ctx, userID, n)
}

// Reset sets usage to zero and starts a new window.
func (s *Service) Reset(ctx context.Context, userID string) (Usage, error) {
	return s.store.Reset(ctx, userID, s.policy, s.now().UTC())
}

// DeleteUser drops the user's counter.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, userID)
}
