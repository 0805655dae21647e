package jobs

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `id, user_id, company, title, location, url, status, salary_min, salary_max, currency, notes, description, applied_at, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO jobs (` + jobColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.UserID,
		job.Company,
		job.Title,
		job.Location,
		job.URL,
		string(job.Status),
		nullableInt(job.SalaryMin),
		nullableInt(job.SalaryMax),
		job.Currency,
		job.Notes,
		job.Description,
		nullableTime(job.AppliedAt),
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1 AND user_id = $2`
	job, err := scanJob(r.DB.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return job, err
}

func (r *PGRepo) List(ctx context.Context, userID string, f Filter) ([]Job, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+escapeLike(f.Query)+"%")
		n := strconv.Itoa(len(args))
		where = append(where, "(company ILIKE $"+n+" OR title ILIKE $"+n+")")
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE ` + clause +
		` ORDER BY updated_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, job)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, job Job) error {
	const query = `
UPDATE jobs SET
  company = $3, title = $4, location = $5, url = $6, status = $7,
  salary_min = $8, salary_max = $9, currency = $10, notes = $11,
  description = $12, applied_at = $13, updated_at = $14
WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.UserID,
		job.Company,
		job.Title,
		job.Location,
		job.URL,
		string(job.Status),
		nullableInt(job.SalaryMin),
		nullableInt(job.SalaryMax),
		job.Currency,
		job.Notes,
		job.Description,
		nullableTime(job.AppliedAt),
		job.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) CountByStatus(ctx context.Context, userID string) (map[Status]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM jobs WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}

func (r *PGRepo) AddEvent(ctx context.Context, ev Event) error {
	const query = `
INSERT INTO job_events (id, job_id, user_id, type, from_status, to_status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		ev.ID,
		ev.JobID,
		ev.UserID,
		string(ev.Type),
		nullableString(string(ev.FromStatus)),
		nullableString(string(ev.ToStatus)),
		ev.CreatedAt,
	)
	return err
}

func (r *PGRepo) ListEvents(ctx context.Context, userID, jobID string) ([]Event, error) {
	if _, err := r.Get(ctx, userID, jobID); err != nil {
		return nil, err
	}
	const query = `
SELECT id, job_id, type, from_status, to_status, created_at
FROM job_events
WHERE job_id = $1 AND user_id = $2
ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, jobID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var ev Event
		var typ string
		var from, to sql.NullString
		if err := rows.Scan(&ev.ID, &ev.JobID, &typ, &from, &to, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.UserID = userID
		ev.Type = EventType(typ)
		ev.FromStatus = Status(from.String)
		ev.ToStatus = Status(to.String)
		out = append(out, ev)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var job Job
	var status string
	var salaryMin, salaryMax sql.NullInt64
	var appliedAt sql.NullTime
	err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.Company,
		&job.Title,
		&job.Location,
		&job.URL,
		&status,
		&salaryMin,
		&salaryMax,
		&job.Currency,
		&job.Notes,
		&job.Description,
		&appliedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return Job{}, err
	}
	job.Status = Status(status)
	if salaryMin.Valid {
		v := salaryMin.Int64
		job.SalaryMin = &v
	}
	if salaryMax.Valid {
		v := salaryMax.Int64
		job.SalaryMax = &v
	}
	if appliedAt.Valid {
		t := appliedAt.Time
		job.AppliedAt = &t
	}
	return job, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
