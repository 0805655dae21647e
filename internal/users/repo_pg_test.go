package users

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", "a@example.com", "Ada", "hash", ProviderLocal, nil, nil, PlanFree).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), User{
		ID: "u1", Email: "a@example.com", Name: "Ada", PasswordHash: "hash", Provider: ProviderLocal, Plan: PlanFree,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := &PGRepo{DB: db}

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "provider", "provider_id", "avatar_url", "plan", "created_at", "updated_at"}).
		AddRow("u1", "a@example.com", "Ada", "hash", "local", nil, nil, "free", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(email) = lower($1)")).
		WithArgs("A@example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "A@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.Empty(t, user.AvatarURL)
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoUpdateProfileReturnsRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := &PGRepo{DB: db}

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "provider", "provider_id", "avatar_url", "plan", "created_at", "updated_at"}).
		AddRow("u1", "a@example.com", "Ada L.", nil, "google", "g-1", nil, "free", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET name = $2, avatar_url = $3")).
		WithArgs("u1", "Ada L.", nil).
		WillReturnRows(rows)

	user, err := repo.UpdateProfile(context.Background(), "u1", "Ada L.", "")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", user.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
