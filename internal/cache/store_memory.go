package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memKey struct {
	userID string
	key    string
}

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[memKey]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[memKey]Entry)}
}

func (m *MemoryStore) Get(ctx context.Context, userID, key string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[memKey{userID, key}]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (m *MemoryStore) Set(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey{e.UserID, e.Key}
	if prev, ok := m.entries[k]; ok {
		e.CreatedAt = prev.CreatedAt
	}
	m.entries[k] = e
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, userID, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey{userID, key}
	_, ok := m.entries[k]
	delete(m.entries, k)
	return ok, nil
}

func (m *MemoryStore) DeletePrefix(ctx context.Context, userID, prefix string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.entries {
		if k.userID == userID && strings.HasPrefix(k.key, prefix) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, e := range m.entries {
		if e.Expired(now) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}
