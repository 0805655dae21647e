package jobs

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo stores jobs and their events in memory.
type MemoryRepo struct {
	mu     sync.RWMutex
	jobs   map[string]Job
	events map[string][]Event
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{jobs: make(map[string]Job), events: make(map[string][]Event)}
}

func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok || job.UserID != userID {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// List returns one page of matching jobs and the total match count.
func (r *MemoryRepo) List(ctx context.Context, userID string, f Filter) ([]Job, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	q := strings.ToLower(f.Query)
	r.mu.RLock()
	var matched []Job
	for _, job := range r.jobs {
		if job.UserID != userID {
			continue
		}
		if f.Status != "" && job.Status != f.Status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(job.Company), q) && !strings.Contains(strings.ToLower(job.Title), q) {
			continue
		}
		matched = append(matched, job)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	total := len(matched)
	if f.Offset >= total {
		return []Job{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return matched[f.Offset:end], total, nil
}

func (r *MemoryRepo) Update(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.jobs[job.ID]
	if !ok || existing.UserID != job.UserID {
		return ErrNotFound
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.UserID != userID {
		return ErrNotFound
	}
	delete(r.jobs, id)
	delete(r.events, id)
	return nil
}

func (r *MemoryRepo) CountByStatus(ctx context.Context, userID string) (map[Status]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[Status]int)
	for _, job := range r.jobs {
		if job.UserID == userID {
			counts[job.Status]++
		}
	}
	return counts, nil
}

func (r *MemoryRepo) AddEvent(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[ev.JobID] = append(r.events[ev.JobID], ev)
	return nil
}

// ListEvents returns a job's events in insertion order.
func (r *MemoryRepo) ListEvents(ctx context.Context, userID, jobID string) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if job, ok := r.jobs[jobID]; !ok || job.UserID != userID {
		return nil, ErrNotFound
	}
	out := make([]Event, len(r.events[jobID]))
	copy(out, r.events[jobID])
	return out, nil
}

// DeleteByUser removes every job owned by userID and reports how many.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, job := range r.jobs {
		if job.UserID == userID {
			delete(r.jobs, id)
			delete(r.events, id)
			n++
		}
	}
	return n, nil
}
