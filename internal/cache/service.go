package cache

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"time"

	"jobhunt-backend/internal/shared/metrics"
	"jobhunt-backend/internal/shared/telemetry"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9:_.\-]{1,200}$`)

// ValidKey reports whether key is usable as a cache key.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Service is the Unified Cache: per-user JSON values with a TTL.
type Service struct {
	Store      Store
	DefaultTTL time.Duration
	now        func() time.Time
}

func NewService(store Store, defaultTTL time.Duration) *Service {
	if defaultTTL <= 0 || defaultTTL > MaxTTL {
		defaultTTL = DefaultTTL
	}
	return &Service{Store: store, DefaultTTL: defaultTTL, now: time.Now}
}

// Get returns a live entry. Expired entries are removed and reported as
// misses.
func (s *Service) Get(ctx context.Context, userID, key string) (Entry, error) {
	if !ValidKey(key) {
		return Entry{}, ErrInvalidKey
	}
	e, err := s.Store.Get(ctx, userID, key)
	if errors.Is(err, ErrNotFound) {
		metrics.ObserveCacheLookup(false)
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	if e.Expired(s.now()) {
		metrics.ObserveCacheLookup(false)
		if _, err := s.Store.Delete(ctx, userID, key); err != nil {
			telemetry.Warn("cache.expire_failed", map[string]any{"user_id": userID, "key": key, "error": err})
		}
		return Entry{}, ErrNotFound
	}
	metrics.ObserveCacheLookup(true)
	return e, nil
}

// Set stores value under key. ttl <= 0 uses the default TTL.
func (s *Service) Set(ctx context.Context, userID, key string, value json.RawMessage, ttl time.Duration) (Entry, error) {
	if !ValidKey(key) {
		return Entry{}, ErrInvalidKey
	}
	if len(value) == 0 || !json.Valid(value) {
		return Entry{}, ErrInvalidValue
	}
	if len(value) > MaxValueSize {
		return Entry{}, ErrValueTooBig
	}
	if ttl <= 0 {
		ttl = s.DefaultTTL
	}
	if ttl > MaxTTL {
		return Entry{}, ErrInvalidTTL
	}
	now := s.now().UTC()
	e := Entry{
		UserID:    userID,
		Key:       key,
		Value:     value,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Set(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Invalidate removes one key. Missing keys are not an error.
func (s *Service) Invalidate(ctx context.Context, userID, key string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	_, err := s.Store.Delete(ctx, userID, key)
	return err
}

// InvalidatePrefix removes every key of the user starting with prefix.
func (s *Service) InvalidatePrefix(ctx context.Context, userID, prefix string) (int64, error) {
	if !ValidKey(prefix) {
		return 0, ErrInvalidKey
	}
	return s.Store.DeletePrefix(ctx, userID, prefix)
}

// Purge drops every expired entry.
func (s *Service) Purge(ctx context.Context) (int64, error) {
	n, err := s.Store.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		telemetry.Info("cache.purged", map[string]any{"count": n})
	}
	return n, nil
}
