package resumes

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	items   map[string]Resume
	deleted map[string]bool
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Resume), deleted: make(map[string]bool)}
}

func (m *MemoryRepo) Create(ctx context.Context, r Resume) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r.IsPrimary = true
	for id, other := range m.items {
		if other.UserID == r.UserID && !m.deleted[id] {
			r.IsPrimary = false
			break
		}
	}
	m.items[r.ID] = r
	return r, nil
}

func (m *MemoryRepo) Get(ctx context.Context, userID, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.items[id]
	if !ok || r.UserID != userID || m.deleted[id] {
		return Resume{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryRepo) Primary(ctx context.Context, userID string) (Resume, error) {
	list, err := m.List(ctx, userID)
	if err != nil {
		return Resume{}, err
	}
	for _, r := range list {
		if r.IsPrimary {
			return m.Get(ctx, userID, r.ID)
		}
	}
	return Resume{}, ErrNotFound
}

func (m *MemoryRepo) List(ctx context.Context, userID string) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := []Resume{}
	for id, r := range m.items {
		if r.UserID == userID && !m.deleted[id] {
			out = append(out, r.Summary())
		}
	}
	m.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func (m *MemoryRepo) SetPrimary(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.UserID != userID || m.deleted[id] {
		return ErrNotFound
	}
	m.clearPrimaryLocked(userID)
	r.IsPrimary = true
	m.items[id] = r
	return nil
}

func (m *MemoryRepo) SoftDelete(ctx context.Context, userID, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.UserID != userID || m.deleted[id] {
		return Resume{}, ErrNotFound
	}
	m.deleted[id] = true
	if r.IsPrimary {
		stored := r
		stored.IsPrimary = false
		m.items[id] = stored
	}
	return r, nil
}

// DeleteByUser hard-deletes every resume of a user and returns their
// storage keys.
func (m *MemoryRepo) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for id, r := range m.items {
		if r.UserID != userID {
			continue
		}
		keys = append(keys, r.StorageKey)
		delete(m.items, id)
		delete(m.deleted, id)
	}
	return keys, nil
}

func (m *MemoryRepo) clearPrimaryLocked(userID string) {
	for id, r := range m.items {
		if r.UserID == userID && r.IsPrimary {
			r.IsPrimary = false
			m.items[id] = r
		}
	}
}

func sortNewestFirst(list []Resume) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
