package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, email, name, password_hash, provider, provider_id, avatar_url, plan, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, name, password_hash, provider, provider_id, avatar_url, plan, created_at, updated_at)
VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		nullableString(user.PasswordHash),
		user.Provider,
		nullableString(user.ProviderID),
		nullableString(user.AvatarURL),
		user.Plan,
	)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, email))
}

func (r *PGRepo) UpsertOAuth(ctx context.Context, user User) (User, error) {
	query := `
INSERT INTO users (id, email, name, provider, provider_id, avatar_url, plan, created_at, updated_at)
VALUES ($1, lower($2), $3, $4, $5, $6, $7, now(), now())
ON CONFLICT (lower(email)) DO UPDATE SET
  provider_id = COALESCE(users.provider_id, EXCLUDED.provider_id),
  name = CASE WHEN users.name = '' THEN EXCLUDED.name ELSE users.name END,
  avatar_url = EXCLUDED.avatar_url,
  updated_at = now()
RETURNING ` + userColumns
	return scanUser(r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Provider,
		nullableString(user.ProviderID),
		nullableString(user.AvatarURL),
		user.Plan,
	))
}

func (r *PGRepo) UpdateProfile(ctx context.Context, userID, name, avatarURL string) (User, error) {
	query := `
UPDATE users SET name = $2, avatar_url = $3, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns
	return scanUser(r.DB.QueryRowContext(ctx, query, userID, name, nullableString(avatarURL)))
}

func (r *PGRepo) Delete(ctx context.Context, userID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var passwordHash, providerID, avatarURL sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&passwordHash,
		&user.Provider,
		&providerID,
		&avatarURL,
		&user.Plan,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.PasswordHash = passwordHash.String
	user.ProviderID = providerID.String
	user.AvatarURL = avatarURL.String
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
