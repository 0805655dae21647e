package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// cacheRow maps the cache_entries table.
type cacheRow struct {
	UserID    string    `gorm:"primaryKey;column:user_id"`
	Key       string    `gorm:"primaryKey;column:key;size:200"`
	Value     []byte    `gorm:"column:value;type:jsonb"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cacheRow) TableName() string { return "cache_entries" }

// GormStore keeps entries in Postgres through gorm, sharing the app's pool.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens gorm on an existing connection pool.
func NewGormStore(sqlDB *sql.DB) (*GormStore, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return &GormStore{db: gdb}, nil
}

func (s *GormStore) Get(ctx context.Context, userID, key string) (Entry, error) {
	var row cacheRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		UserID:    row.UserID,
		Key:       row.Key,
		Value:     row.Value,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *GormStore) Set(ctx context.Context, e Entry) error {
	row := cacheRow{
		UserID:    e.UserID,
		Key:       e.Key,
		Value:     []byte(e.Value),
		ExpiresAt: e.ExpiresAt,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&row).Error
}

func (s *GormStore) Delete(ctx context.Context, userID, key string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		Delete(&cacheRow{})
	return res.RowsAffected > 0, res.Error
}

func (s *GormStore) DeletePrefix(ctx context.Context, userID, prefix string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND key LIKE ?", userID, escapeLike(prefix)+"%").
		Delete(&cacheRow{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&cacheRow{})
	return res.RowsAffected, res.Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
