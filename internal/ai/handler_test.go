package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobhunt-backend/internal/llm"
)

func newTestRouter(mgr *Manager, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	h := NewHandler(mgr)
	h.RegisterRoutes(api)
	h.RegisterGenerationRoutes(api)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

type errorEnvelope struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func TestGenerateEndpoint(t *testing.T) {
	fx := newFixture(t, 5, reply{text: validSalary})
	r := newTestRouter(fx.mgr, "u1")

	resp := post(r, "/api/v1/ai/salary-estimate", `{"jobTitle":"SRE","location":"Remote","forceRefresh":false}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var gen Generation
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &gen))
	assert.Equal(t, KindSalaryEstimate, gen.Kind)
	assert.False(t, gen.Cached)
	assert.NotEmpty(t, gen.AnalysisID)
	assert.JSONEq(t, validSalary, string(gen.Result))

	resp = post(r, "/api/v1/ai/salary-estimate", `{"jobTitle":"SRE","location":"Remote"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &gen))
	assert.True(t, gen.Cached)
}

func TestGenerateEndpointErrors(t *testing.T) {
	fx := newFixture(t, 5, reply{err: llm.ErrNotConfigured})
	r := newTestRouter(fx.mgr, "u1")

	resp := post(r, "/api/v1/ai/salary-estimate", `{"location":"Remote"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Contains(t, string(env.Error.Details), `"field":"jobTitle"`)

	resp = post(r, "/api/v1/ai/salary-estimate", `{"jobTitle":"SRE","location":"Remote"}`)
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, CodeNotConfigured, env.Error.Code)
	assert.NotContains(t, resp.Body.String(), "result")

	resp = post(r, "/api/v1/ai/salary-estimate", `{"jobTitle":"SRE","location":"Remote","forceRefresh":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGenerateEndpointLimitReached(t *testing.T) {
	fx := newFixture(t, 1, reply{text: validSalary})
	r := newTestRouter(fx.mgr, "u1")

	require.Equal(t, http.StatusOK, post(r, "/api/v1/ai/salary-estimate", `{"jobTitle":"SRE","location":"Remote"}`).Code)
	resp := post(r, "/api/v1/ai/salary-estimate", `{"jobTitle":"SRE","location":"Remote","forceRefresh":true}`)
	require.Equal(t, http.StatusTooManyRequests, resp.Code)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "limit_reached", env.Error.Code)
	var details map[string]any
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.EqualValues(t, 1, details["limit"])
	assert.EqualValues(t, 1, details["used"])
	assert.NotEmpty(t, details["resetsAt"])
}

func TestSubmitEndpoint(t *testing.T) {
	fx := newFixture(t, 5, reply{text: validSalary})
	d := &recordingDispatcher{}
	fx.mgr.Dispatcher = d
	r := newTestRouter(fx.mgr, "u1")

	resp := post(r, "/api/v1/analyses", `{"kind":"salary_estimate","input":{"jobTitle":"SRE","location":"Remote"}}`)
	require.Equal(t, http.StatusAccepted, resp.Code, resp.Body.String())
	var sub Submission
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &sub))
	assert.Equal(t, "queued", sub.Status)
	assert.Equal(t, []string{sub.AnalysisID}, d.ids)

	resp = post(r, "/api/v1/analyses", `{"kind":"astrology","input":{}}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = post(r, "/api/v1/analyses", `{"kind":"salary_estimate","input":{},"extra":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestOptionsEndpoint(t *testing.T) {
	fx := newFixture(t, 5)
	r := newTestRouter(fx.mgr, "u1")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/ai/options", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var opts OptionSet
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &opts))
	assert.Len(t, opts.Kinds, len(Kinds))
	assert.Len(t, opts.InterviewStages, 5)
	assert.Len(t, opts.OutreachPurposes, 6)
}
