package usage

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]Usage
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]Usage)}
}

func (s *memoryStore) Ensure(ctx context.Context, userID string, p Policy, now time.Time) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(userID, p, now), nil
}

func (s *memoryStore) ensureLocked(userID string, p Policy, now time.Time) Usage {
	u, ok := s.data[userID]
	if !ok {
		u = p.fresh(now)
	}
	u, _ = p.roll(u, now)
	s.data[userID] = u
	return u
}

func (s *memoryStore) Consume(ctx context.Context, userID string, n int, p Policy, now time.Time) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensureLocked(userID, p, now)
	if u.Used+n > u.Limit {
		return u, ErrLimitReached
	}
	u.Used += n
	s.data[userID] = u
	return u, nil
}

func (s *memoryStore) Refund(ctx context.Context, userID string, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data[userID]
	if !ok {
		return nil
	}
	u.Used -= n
	if u.Used < 0 {
		u.Used = 0
	}
	s.data[userID] = u
	return nil
}

func (s *memoryStore) Reset(ctx context.Context, userID string, p Policy, now time.Time) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := p.fresh(now)
	s.data[userID] = u
	return u, nil
}

func (s *memoryStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
	return nil
}
