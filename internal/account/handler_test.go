package account

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobhunt-backend/internal/analyses"
	"jobhunt-backend/internal/cache"
	"jobhunt-backend/internal/jobs"
	"jobhunt-backend/internal/resumes"
	"jobhunt-backend/internal/shared/storage/object"
	"jobhunt-backend/internal/usage"
	"jobhunt-backend/internal/users"
)

type fakeObjects struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeObjects) Save(ctx context.Context, userID, fileName string, r io.Reader) (object.Object, error) {
	return object.Object{}, nil
}

func (f *fakeObjects) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, nil
}

func (f *fakeObjects) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func TestDeleteAccountMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	now := time.Now().UTC()

	userRepo := users.NewMemoryRepo()
	jobRepo := jobs.NewMemoryRepo()
	resumeRepo := resumes.NewMemoryRepo()
	analysisRepo := analyses.NewMemoryRepo()
	cacheStore := cache.NewMemoryStore()
	usageSvc := usage.NewService(5)
	objects := &fakeObjects{}

	require.NoError(t, userRepo.Create(ctx, users.User{ID: "u1", Email: "a@example.com", Plan: users.PlanFree}))
	require.NoError(t, jobRepo.Create(ctx, jobs.Job{ID: "j1", UserID: "u1", Company: "Acme", Title: "SRE", Status: jobs.StatusSaved, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, jobRepo.Create(ctx, jobs.Job{ID: "j2", UserID: "u2", Company: "Other", Title: "SRE", Status: jobs.StatusSaved, CreatedAt: now, UpdatedAt: now}))
	_, err := resumeRepo.Create(ctx, resumes.Resume{ID: "r1", UserID: "u1", StorageKey: "k1", CreatedAt: now})
	require.NoError(t, err)
	require.NoError(t, analysisRepo.Create(ctx, analyses.Analysis{ID: "a1", UserID: "u1", Status: analyses.StatusCompleted, CreatedAt: now}))
	require.NoError(t, cacheStore.Set(ctx, cache.Entry{UserID: "u1", Key: "salary_estimate:x", Value: json.RawMessage(`{}`), ExpiresAt: now.Add(time.Hour)}))
	_, err = usageSvc.Consume(ctx, "u1", 2)
	require.NoError(t, err)

	svc := &Service{
		UserRepo:     userRepo,
		JobRepo:      jobRepo,
		ResumeRepo:   resumeRepo,
		AnalysisRepo: analysisRepo,
		CacheStore:   cacheStore,
		Usage:        usageSvc,
		Objects:      objects,
	}
	router := gin.New()
	api := router.Group("/api/v1", func(c *gin.Context) {
		c.Set("userId", "u1")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(api)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/v1/account", nil))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got DeleteResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, DeleteResult{DeletedJobs: 1, DeletedResumes: 1, DeletedAnalyses: 1}, got)
	assert.Equal(t, []string{"k1"}, objects.deleted)

	_, err = userRepo.GetByID(ctx, "u1")
	assert.ErrorIs(t, err, users.ErrNotFound)
	_, err = cacheStore.Get(ctx, "u1", "salary_estimate:x")
	assert.ErrorIs(t, err, cache.ErrNotFound)
	u, err := usageSvc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, u.Used)
	_, err = jobRepo.Get(ctx, "u2", "j2")
	assert.NoError(t, err, "other users keep their data")
}

func TestDeleteAccountPostgresSingleTransaction(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	objects := &fakeObjects{}
	svc := &Service{UserRepo: &users.PGRepo{DB: conn}, Objects: objects}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM cache_entries").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM analyses").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery("DELETE FROM resumes").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"storage_key", "live"}).AddRow("k1", true).AddRow("k2", false))
	mock.ExpectExec("DELETE FROM job_events").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectExec("DELETE FROM jobs").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM usage_counters").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM users").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.Delete(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, DeleteResult{DeletedJobs: 2, DeletedResumes: 1, DeletedAnalyses: 3}, res)
	assert.Equal(t, []string{"k1", "k2"}, objects.deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccountRollsBackOnError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	objects := &fakeObjects{}
	svc := &Service{UserRepo: &users.PGRepo{DB: conn}, Objects: objects}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM cache_entries").WithArgs("u1").WillReturnError(sqlmock.ErrCancelled)
	mock.ExpectRollback()

	_, err = svc.Delete(context.Background(), "u1")
	require.Error(t, err)
	assert.Empty(t, objects.deleted, "objects stay when the transaction fails")
	require.NoError(t, mock.ExpectationsWereMet())
}
