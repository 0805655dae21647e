package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"jobhunt-backend/internal/analyses"
	"jobhunt-backend/internal/cache"
	"jobhunt-backend/internal/jobs"
	"jobhunt-backend/internal/resumes"
	"jobhunt-backend/internal/shared/storage/db"
	"jobhunt-backend/internal/shared/storage/object"
	"jobhunt-backend/internal/shared/telemetry"
	"jobhunt-backend/internal/usage"
	"jobhunt-backend/internal/users"
)

// Service deletes everything a user owns.
type Service struct {
	UserRepo     users.Repo
	JobRepo      jobs.Repo
	ResumeRepo   resumes.Repo
	AnalysisRepo analyses.Repo
	CacheStore   cache.Store
	Usage        *usage.Service
	Objects      object.Store
}

// DeleteResult counts what was removed.
type DeleteResult struct {
	DeletedJobs     int `json:"deletedJobs"`
	DeletedResumes  int `json:"deletedResumes"`
	DeletedAnalyses int `json:"deletedAnalyses"`
}

// Delete removes the user's cache entries, analyses, resumes, jobs, usage
// and user record. On Postgres the rows go in one transaction; stored
// resume files are removed after commit.
func (s *Service) Delete(ctx context.Context, userID string) (DeleteResult, error) {
	if strings.TrimSpace(userID) == "" {
		return DeleteResult{}, errors.New("userID is required")
	}

	var (
		res  DeleteResult
		keys []string
		err  error
	)
	if pg, ok := s.UserRepo.(*users.PGRepo); ok && pg != nil && pg.DB != nil {
		res, keys, err = deleteWithTx(ctx, pg.DB, userID)
	} else {
		res, keys, err = s.deleteEach(ctx, userID)
	}
	if err != nil {
		return DeleteResult{}, err
	}

	s.removeObjects(ctx, userID, keys)
	telemetry.Info("account.deleted", map[string]any{
		"user_id":          userID,
		"deleted_jobs":     res.DeletedJobs,
		"deleted_resumes":  res.DeletedResumes,
		"deleted_analyses": res.DeletedAnalyses,
	})
	return res, nil
}

func deleteWithTx(ctx context.Context, conn *sql.DB, userID string) (DeleteResult, []string, error) {
	var (
		res  DeleteResult
		keys []string
	)
	err := db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cache_entries WHERE user_id = $1`, userID); err != nil {
			return err
		}
		n, err := execCount(ctx, tx, `DELETE FROM analyses WHERE user_id = $1`, userID)
		if err != nil {
			return err
		}
		res.DeletedAnalyses = n

		rows, err := tx.QueryContext(ctx, `DELETE FROM resumes WHERE user_id = $1 RETURNING storage_key, deleted_at IS NULL`, userID)
		if err != nil {
			return err
		}
		for rows.Next() {
			var key string
			var live bool
			if err := rows.Scan(&key, &live); err != nil {
				rows.Close()
				return err
			}
			keys = append(keys, key)
			if live {
				res.DeletedResumes++
			}
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM job_events WHERE user_id = $1`, userID); err != nil {
			return err
		}
		if res.DeletedJobs, err = execCount(ctx, tx, `DELETE FROM jobs WHERE user_id = $1`, userID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM usage_counters WHERE user_id = $1`, userID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
		return err
	})
	if err != nil {
		return DeleteResult{}, nil, err
	}
	return res, keys, nil
}

func execCount(ctx context.Context, tx *sql.Tx, query string, args ...any) (int, error) {
	r, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, _ := r.RowsAffected()
	return int(n), nil
}

type countDeleter interface {
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

type userResumeDeleter interface {
	DeleteByUser(ctx context.Context, userID string) ([]string, error)
}

// deleteEach is the path for the in-memory repos.
func (s *Service) deleteEach(ctx context.Context, userID string) (DeleteResult, []string, error) {
	var res DeleteResult
	if s.CacheStore != nil {
		if _, err := s.CacheStore.DeletePrefix(ctx, userID, ""); err != nil {
			return res, nil, err
		}
	}
	if d, ok := s.AnalysisRepo.(countDeleter); ok {
		n, err := d.DeleteByUser(ctx, userID)
		if err != nil {
			return res, nil, err
		}
		res.DeletedAnalyses = n
	}
	var keys []string
	if d, ok := s.ResumeRepo.(userResumeDeleter); ok {
		var err error
		if keys, err = d.DeleteByUser(ctx, userID); err != nil {
			return res, nil, err
		}
		res.DeletedResumes = len(keys)
	}
	if d, ok := s.JobRepo.(countDeleter); ok {
		n, err := d.DeleteByUser(ctx, userID)
		if err != nil {
			return res, nil, err
		}
		res.DeletedJobs = n
	}
	if s.Usage != nil {
		if err := s.Usage.DeleteUser(ctx, userID); err != nil {
			return res, nil, err
		}
	}
	if s.UserRepo != nil {
		if err := s.UserRepo.Delete(ctx, userID); err != nil && !errors.Is(err, users.ErrNotFound) {
			return res, nil, err
		}
	}
	return res, keys, nil
}

func (s *Service) removeObjects(ctx context.Context, userID string, keys []string) {
	if s.Objects == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.Objects.Delete(ctx, key); err != nil {
			telemetry.Warn("account.object_delete_failed", map[string]any{"user_id": userID, "key": key, "error": err})
		}
	}
}
