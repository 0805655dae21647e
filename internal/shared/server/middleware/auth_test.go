package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobhunt-backend/internal/shared/auth"
)

func newTestSigner(t *testing.T) *auth.Signer {
	t.Helper()
	s, err := auth.NewSigner("test-secret", time.Hour, "development")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return s
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(newTestSigner(t)))
	router.OPTIONS("/api/v1/jobs", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/jobs", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(newTestSigner(t)))
	router.GET("/api/v1/jobs", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, resp.Code)
		}
	}
}

func TestAuthStoresIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	signer := newTestSigner(t)
	token, err := signer.Sign("user-1", "a@example.com", "Ada")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	router := gin.New()
	router.Use(Auth(signer))
	router.GET("/api/v1/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":    UserIDFromContext(c),
			"email": UserEmailFromContext(c),
			"name":  UserNameFromContext(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	want := `{"email":"a@example.com","id":"user-1","name":"Ada"}`
	if resp.Body.String() != want {
		t.Fatalf("expected %s, got %s", want, resp.Body.String())
	}
}
