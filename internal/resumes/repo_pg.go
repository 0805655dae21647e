package resumes

import (
	"context"
	"database/sql"
	"errors"

	"jobhunt-backend/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const summaryColumns = `id, user_id, title, file_name, mime_type, size_bytes, storage_key, is_primary, created_at`

func (r *PGRepo) Create(ctx context.Context, res Resume) (Resume, error) {
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		// Row lock on the owner serializes concurrent uploads of one user.
		if _, err := tx.ExecContext(ctx, `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`, res.UserID); err != nil {
			return err
		}
		const query = `
INSERT INTO resumes (id, user_id, title, file_name, mime_type, size_bytes, storage_key, text_content, is_primary, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
        NOT EXISTS (SELECT 1 FROM resumes WHERE user_id = $2 AND deleted_at IS NULL), $9)
RETURNING is_primary`
		return tx.QueryRowContext(ctx, query,
			res.ID,
			res.UserID,
			res.Title,
			res.FileName,
			res.MimeType,
			res.SizeBytes,
			res.StorageKey,
			res.TextContent,
			res.CreatedAt,
		).Scan(&res.IsPrimary)
	})
	if err != nil {
		return Resume{}, err
	}
	return res, nil
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (Resume, error) {
	const query = `SELECT ` + summaryColumns + `, text_content FROM resumes WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`
	return r.getOne(ctx, query, id, userID)
}

func (r *PGRepo) Primary(ctx context.Context, userID string) (Resume, error) {
	const query = `SELECT ` + summaryColumns + `, text_content FROM resumes WHERE user_id = $1 AND is_primary AND deleted_at IS NULL`
	return r.getOne(ctx, query, userID)
}

func (r *PGRepo) getOne(ctx context.Context, query string, args ...any) (Resume, error) {
	var res Resume
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&res.ID, &res.UserID, &res.Title, &res.FileName, &res.MimeType, &res.SizeBytes,
		&res.StorageKey, &res.IsPrimary, &res.CreatedAt, &res.TextContent,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	return res, err
}

func (r *PGRepo) List(ctx context.Context, userID string) ([]Resume, error) {
	const query = `SELECT ` + summaryColumns + ` FROM resumes WHERE user_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Resume{}
	for rows.Next() {
		var res Resume
		if err := rows.Scan(&res.ID, &res.UserID, &res.Title, &res.FileName, &res.MimeType, &res.SizeBytes,
			&res.StorageKey, &res.IsPrimary, &res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *PGRepo) SetPrimary(ctx context.Context, userID, id string) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM resumes WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL)`, id, userID).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `UPDATE resumes SET is_primary = false WHERE user_id = $1 AND is_primary`, userID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE resumes SET is_primary = true WHERE id = $1 AND user_id = $2`, id, userID)
		return err
	})
}

// SoftDelete hides the resume and reports whether it was primary.
func (r *PGRepo) SoftDelete(ctx context.Context, userID, id string) (Resume, error) {
	const query = `
UPDATE resumes AS r SET deleted_at = now(), is_primary = false
FROM (SELECT id, is_primary FROM resumes WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL FOR UPDATE) AS prev
WHERE r.id = prev.id
RETURNING r.id, r.user_id, r.title, r.file_name, r.mime_type, r.size_bytes, r.storage_key, prev.is_primary, r.created_at`
	var res Resume
	err := r.DB.QueryRowContext(ctx, query, id, userID).Scan(
		&res.ID, &res.UserID, &res.Title, &res.FileName, &res.MimeType, &res.SizeBytes,
		&res.StorageKey, &res.IsPrimary, &res.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	return res, err
}
