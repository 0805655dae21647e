package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckWithoutDatabase(t *testing.T) {
	st := NewService(nil, "").Check(context.Background())
	assert.Equal(t, Status{OK: true, Database: "memory", LLM: "none"}, st)
}

func TestCheckPingsDatabase(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer conn.Close()
	svc := NewService(conn, "openai")

	mock.ExpectPing()
	assert.Equal(t, Status{OK: true, Database: "ok", LLM: "openai"}, svc.Check(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	st := svc.Check(context.Background())
	assert.False(t, st.OK)
	assert.Equal(t, "unreachable", st.Database)
	require.NoError(t, mock.ExpectationsWereMet())
}
