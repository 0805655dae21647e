package usage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGStoreConsumeLocksRow(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	svc := NewPostgresService(NewPGStore(conn), 25)
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	resets := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT plan, quota, used, resets_at FROM usage_counters WHERE user_id = \$1 FOR UPDATE`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"plan", "quota", "used", "resets_at"}).AddRow("free", 25, 4, resets))
	mock.ExpectExec(`UPDATE usage_counters SET used = \$1`).
		WithArgs(5, now, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := svc.Consume(context.Background(), "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, 5, u.Used)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStoreConsumeAtLimitRollsBack(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	svc := NewPostgresService(NewPGStore(conn), 25)
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM usage_counters WHERE user_id = \$1 FOR UPDATE`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"plan", "quota", "used", "resets_at"}).
			AddRow("free", 25, 25, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)))
	mock.ExpectRollback()

	u, err := svc.Consume(context.Background(), "u1", 1)
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.Equal(t, 25, u.Used)
	assert.NoError(t, mock.ExpectationsWereMet())
}
