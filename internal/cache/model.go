package cache

import (
	"encoding/json"
	"errors"
	"time"
)

const (
	DefaultTTL   = 24 * time.Hour
	MaxTTL       = 30 * 24 * time.Hour
	MaxKeyLen    = 200
	MaxValueSize = 256 << 10
)

var (
	ErrNotFound     = errors.New("cache entry not found")
	ErrInvalidKey   = errors.New("key must be 1-200 characters of letters, digits, ':', '_', '.', '-'")
	ErrInvalidValue = errors.New("value must be valid JSON")
	ErrValueTooBig  = errors.New("value exceeds 256 KB")
	ErrInvalidTTL   = errors.New("ttl must not exceed 30 days")
)

// Entry is one cached JSON value scoped to a user.
type Entry struct {
	UserID    string          `json:"-"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expiresAt"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Expired reports whether the entry is stale at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
