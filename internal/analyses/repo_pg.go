package analyses

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `id, user_id, kind, job_id, cache_key, status, input, result, error_code, error_message, provider, model, created_at, started_at, completed_at`

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, a Analysis) error {
	const query = `
INSERT INTO analyses (id, user_id, kind, job_id, cache_key, status, input, result, error_code, error_message, provider, model, created_at, started_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.DB.ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.Kind,
		nullableString(a.JobID),
		a.CacheKey,
		a.Status,
		jsonOrEmpty(a.Input),
		nullableJSON(a.Result),
		nullableString(a.ErrorCode),
		nullableString(a.ErrorMessage),
		nullableString(a.Provider),
		nullableString(a.Model),
		a.CreatedAt,
		a.StartedAt,
		a.CompletedAt,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (Analysis, error) {
	const query = `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1 AND user_id = $2`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	return a, err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Analysis, error) {
	const query = `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	return a, err
}

func (r *PGRepo) List(ctx context.Context, userID string, f Filter) ([]Analysis, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		where = append(where, col+" = $"+strconv.Itoa(len(args)))
	}
	add("kind", f.Kind)
	add("status", f.Status)
	add("job_id", f.JobID)
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE ` + clause +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a.Summary())
	}
	return out, total, rows.Err()
}

func (r *PGRepo) MarkProcessing(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE analyses SET status = $2, started_at = $3 WHERE id = $1 AND status = $4`,
		id, StatusProcessing, at, StatusQueued)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrNotQueued
	}
	return nil
}

func (r *PGRepo) Complete(ctx context.Context, id string, out Outcome) error {
	const query = `
UPDATE analyses SET status = $2, result = $3, provider = $4, model = $5, completed_at = $6, error_code = NULL, error_message = NULL
WHERE id = $1`
	return r.execOne(ctx, query, id, StatusCompleted, nullableJSON(out.Result), nullableString(out.Provider), nullableString(out.Model), out.At)
}

func (r *PGRepo) Fail(ctx context.Context, id, code, message string, at time.Time) error {
	const query = `UPDATE analyses SET status = $2, error_code = $3, error_message = $4, completed_at = $5 WHERE id = $1`
	return r.execOne(ctx, query, id, StatusFailed, code, message, at)
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	return r.execOne(ctx, `DELETE FROM analyses WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *PGRepo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		a                                 Analysis
		jobID, errCode, errMsg, prov, mdl sql.NullString
		input, result                     []byte
		startedAt, completedAt            sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Kind, &jobID, &a.CacheKey, &a.Status, &input, &result,
		&errCode, &errMsg, &prov, &mdl, &a.CreatedAt, &startedAt, &completedAt); err != nil {
		return Analysis{}, err
	}
	a.JobID = jobID.String
	a.ErrorCode = errCode.String
	a.ErrorMessage = errMsg.String
	a.Provider = prov.String
	a.Model = mdl.String
	if len(input) > 0 {
		a.Input = input
	}
	if len(result) > 0 {
		a.Result = result
	}
	if startedAt.Valid {
		t := startedAt.Time
		a.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	return a, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func jsonOrEmpty(raw []byte) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
