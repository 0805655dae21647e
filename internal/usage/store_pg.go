package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"jobhunt-backend/internal/shared/storage/db"
)

// PGStore keeps usage counters in the usage_counters table.
type PGStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed usage store.
func NewPGStore(conn *sql.DB) *PGStore {
	return &PGStore{DB: conn}
}

func (s *PGStore) Ensure(ctx context.Context, userID string, p Policy, now time.Time) (Usage, error) {
	var u Usage
	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		u, err = lockAndEnsure(ctx, tx, userID, p, now)
		return err
	})
	return u, err
}

func (s *PGStore) Consume(ctx context.Context, userID string, n int, p Policy, now time.Time) (Usage, error) {
	var u Usage
	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		u, err = lockAndEnsure(ctx, tx, userID, p, now)
		if err != nil {
			return err
		}
		if u.Used+n > u.Limit {
			return ErrLimitReached
		}
		u.Used += n
		_, err = tx.ExecContext(ctx, `UPDATE usage_counters SET used = $1, updated_at = $2 WHERE user_id = $3`, u.Used, now, userID)
		return err
	})
	if err != nil && !errors.Is(err, ErrLimitReached) {
		return Usage{}, err
	}
	return u, err
}

func (s *PGStore) Refund(ctx context.Context, userID string, n int) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE usage_counters SET used = GREATEST(used - $1, 0), updated_at = now() WHERE user_id = $2`, n, userID)
	return err
}

func (s *PGStore) Reset(ctx context.Context, userID string, p Policy, now time.Time) (Usage, error) {
	u := p.fresh(now)
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO usage_counters (user_id, plan, quota, used, resets_at, updated_at)
VALUES ($1, $2, $3, 0, $4, $5)
ON CONFLICT (user_id) DO UPDATE SET used = 0, quota = EXCLUDED.quota, resets_at = EXCLUDED.resets_at, updated_at = EXCLUDED.updated_at`,
		userID, u.Plan, u.Limit, u.ResetsAt, now)
	if err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *PGStore) Delete(ctx context.Context, userID string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM usage_counters WHERE user_id = $1`, userID)
	return err
}

func lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string, p Policy, now time.Time) (Usage, error) {
	var u Usage
	row := tx.QueryRowContext(ctx, `
SELECT plan, quota, used, resets_at FROM usage_counters WHERE user_id = $1 FOR UPDATE`, userID)
	err := row.Scan(&u.Plan, &u.Limit, &u.Used, &u.ResetsAt)
	if errors.Is(err, sql.ErrNoRows) {
		u = p.fresh(now)
		// a concurrent first request may have inserted the row already
		if _, err := tx.ExecContext(ctx, `
INSERT INTO usage_counters (user_id, plan, quota, used, resets_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO NOTHING`,
			userID, u.Plan, u.Limit, u.Used, u.ResetsAt, now); err != nil {
			return Usage{}, err
		}
		row = tx.QueryRowContext(ctx, `
SELECT plan, quota, used, resets_at FROM usage_counters WHERE user_id = $1 FOR UPDATE`, userID)
		if err := row.Scan(&u.Plan, &u.Limit, &u.Used, &u.ResetsAt); err != nil {
			return Usage{}, err
		}
	} else if err != nil {
		return Usage{}, err
	}

	rolled, changed := p.roll(u, now)
	if changed {
		if _, err := tx.ExecContext(ctx,
			`UPDATE usage_counters SET used = $1, quota = $2, resets_at = $3, updated_at = $4 WHERE user_id = $5`,
			rolled.Used, rolled.Limit, rolled.ResetsAt, now, userID); err != nil {
			return Usage{}, err
		}
	}
	return rolled, nil
}
