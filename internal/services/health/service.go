package health

import (
	"context"
	"database/sql"
	"time"

	"jobhunt-backend/internal/shared/storage/db"
)

const pingTimeout = 2 * time.Second

// Service encapsulates health-related checks.
type Service struct {
	DB  *sql.DB
	LLM string
}

// NewService constructs a new health service. conn may be nil when running
// on in-memory repositories.
func NewService(conn *sql.DB, llmProvider string) *Service {
	return &Service{DB: conn, LLM: llmProvider}
}

// Status is the health payload.
type Status struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	LLM      string `json:"llm"`
}

// Check pings the database. OK is false only when a configured database is
// unreachable.
func (s *Service) Check(ctx context.Context) Status {
	st := Status{OK: true, Database: "memory", LLM: s.LLM}
	if st.LLM == "" {
		st.LLM = "none"
	}
	if s.DB == nil {
		return st
	}
	if err := db.Ping(ctx, s.DB, pingTimeout); err != nil {
		st.OK = false
		st.Database = "unreachable"
		return st
	}
	st.Database = "ok"
	return st
}
