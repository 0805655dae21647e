package cache

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(api)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCacheEndpoints(t *testing.T) {
	r := newTestRouter(NewService(NewMemoryStore(), 0))

	resp := do(r, http.MethodGet, "/api/v1/cache/prefs", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = do(r, http.MethodPut, "/api/v1/cache/prefs", `{"value":{"theme":"dark"},"ttlSeconds":60}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = do(r, http.MethodGet, "/api/v1/cache/prefs", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var got entryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, "prefs", got.Key)
	assert.JSONEq(t, `{"theme":"dark"}`, string(got.Value))

	resp = do(r, http.MethodDelete, "/api/v1/cache?prefix=pre", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"deleted":1}`, resp.Body.String())

	resp = do(r, http.MethodDelete, "/api/v1/cache/prefs", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestCachePutRejectsBadInput(t *testing.T) {
	r := newTestRouter(NewService(NewMemoryStore(), 0))

	resp := do(r, http.MethodPut, "/api/v1/cache/prefs", `{"ttlSeconds":60}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), `"validation_error"`)

	resp = do(r, http.MethodPut, "/api/v1/cache/prefs", `{"value":1,"ttlSeconds":99999999}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Large enough to overflow a Duration once multiplied by time.Second.
	resp = do(r, http.MethodPut, "/api/v1/cache/prefs", `{"value":1,"ttlSeconds":10000000000}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "ttlSeconds")

	resp = do(r, http.MethodDelete, "/api/v1/cache", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
