package analyses

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoMarkProcessingNotQueued(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE analyses SET status = \$2, started_at = \$3 WHERE id = \$1 AND status = \$4`).
		WithArgs("a1", StatusProcessing, now, StatusQueued).
		WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"id", "user_id", "kind", "job_id", "cache_key", "status", "input", "result",
		"error_code", "error_message", "provider", "model", "created_at", "started_at", "completed_at"}).
		AddRow("a1", "u1", "salary_estimate", nil, "k", StatusCompleted, []byte(`{}`), []byte(`{"a":1}`),
			nil, nil, "openai", "gpt-4o-mini", now, now, now)
	mock.ExpectQuery(`FROM analyses WHERE id = \$1`).WithArgs("a1").WillReturnRows(rows)

	if err := repo.MarkProcessing(context.Background(), "a1", now); err != ErrNotQueued {
		t.Fatalf("expected ErrNotQueued, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGRepoListBuildsFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM analyses WHERE user_id = \$1 AND kind = \$2 AND job_id = \$3`).
		WithArgs("u1", "salary_estimate", "j1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC LIMIT \$4 OFFSET \$5`).
		WithArgs("u1", "salary_estimate", "j1", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, total, err := repo.List(context.Background(), "u1", Filter{Kind: "salary_estimate", JobID: "j1"}.Normalized())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("expected empty result, got %d/%d", len(items), total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
