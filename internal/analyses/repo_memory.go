package analyses

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores analyses in memory.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Analysis
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Analysis)}
}

func (r *MemoryRepo) Create(ctx context.Context, a Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[a.ID] = a
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (Analysis, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return Analysis{}, err
	}
	if a.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) List(ctx context.Context, userID string, f Filter) ([]Analysis, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	var matched []Analysis
	for _, a := range r.items {
		if a.UserID != userID {
			continue
		}
		if (f.Kind != "" && a.Kind != f.Kind) || (f.Status != "" && a.Status != f.Status) || (f.JobID != "" && a.JobID != f.JobID) {
			continue
		}
		matched = append(matched, a.Summary())
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	if f.Offset >= total {
		return []Analysis{}, total, nil
	}
	end := f.Offset + f.Limit
	if f.Limit <= 0 || end > total {
		end = total
	}
	return matched[f.Offset:end], total, nil
}

func (r *MemoryRepo) MarkProcessing(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, func(a *Analysis) error {
		if a.Status != StatusQueued {
			return ErrNotQueued
		}
		a.Status = StatusProcessing
		a.StartedAt = &at
		return nil
	})
}

func (r *MemoryRepo) Complete(ctx context.Context, id string, out Outcome) error {
	return r.update(ctx, id, func(a *Analysis) error {
		a.Status = StatusCompleted
		a.Result = out.Result
		a.Provider = out.Provider
		a.Model = out.Model
		a.ErrorCode = ""
		a.ErrorMessage = ""
		at := out.At
		a.CompletedAt = &at
		return nil
	})
}

func (r *MemoryRepo) Fail(ctx context.Context, id, code, message string, at time.Time) error {
	return r.update(ctx, id, func(a *Analysis) error {
		a.Status = StatusFailed
		a.ErrorCode = code
		a.ErrorMessage = message
		a.CompletedAt = &at
		return nil
	})
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// DeleteByUser removes every analysis of a user.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, a := range r.items {
		if a.UserID == userID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) update(ctx context.Context, id string, fn func(*Analysis) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	if err := fn(&a); err != nil {
		return err
	}
	r.items[id] = a
	return nil
}
