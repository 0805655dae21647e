package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sharedauth "jobhunt-backend/internal/shared/auth"
	"jobhunt-backend/internal/shared/server/respond"
	"jobhunt-backend/internal/shared/telemetry"
	"jobhunt-backend/internal/users"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleService handles the Google OAuth code flow.
type GoogleService struct {
	oauthConfig *oauth2.Config
	users       *users.Service
	signer      *sharedauth.Signer
	uiRedirect  string
	userInfoURL string
	stateTTL    time.Duration
	stateStore  *stateStore
}

// NewGoogleService builds a GoogleService. frontendURL is the SPA origin;
// the token is delivered to <frontendURL>/auth/callback.
func NewGoogleService(clientID, clientSecret, redirectURL, frontendURL string, usersSvc *users.Service, signer *sharedauth.Signer) *GoogleService {
	return &GoogleService{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		users:       usersSvc,
		signer:      signer,
		uiRedirect:  frontendURL + "/auth/callback",
		userInfoURL: googleUserInfoURL,
		stateTTL:    10 * time.Minute,
		stateStore:  newStateStore(),
	}
}

// RegisterRoutes attaches Google auth routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/login", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) configured() bool {
	return s.oauthConfig.ClientID != "" && s.oauthConfig.ClientSecret != "" && s.oauthConfig.RedirectURL != ""
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusServiceUnavailable, "auth_not_configured", "Google auth not configured", nil)
		return
	}
	state := uuid.NewString()
	s.stateStore.put(state, time.Now().Add(s.stateTTL))
	c.Redirect(http.StatusFound, s.oauthConfig.AuthCodeURL(state))
}

func (s *GoogleService) callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	if !s.stateStore.consume(state, time.Now()) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}
	info, err := s.fetchUserInfo(ctx, token)
	if err != nil || info.Sub == "" || info.Email == "" {
		telemetry.Error("auth.google.profile_failed", map[string]any{"err": err})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}
	if !info.EmailVerified {
		respond.Error(c, http.StatusForbidden, "email_unverified", "Google account email is not verified", nil)
		return
	}

	user, err := s.users.UpsertFromOAuth(ctx, users.ProviderGoogle, info.Sub, info.Email, info.Name, info.Picture)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to persist user", nil)
		return
	}
	jwt, err := s.signer.Sign(user.ID, user.Email, user.Name)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	redirectURL, err := appendToken(s.uiRedirect, jwt)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	c.Redirect(http.StatusFound, redirectURL)
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (s *GoogleService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := s.oauthConfig.Client(ctx, token)
	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}
	return info, nil
}

// stateStore holds single-use OAuth states until they expire.
type stateStore struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]time.Time)}
}

func (s *stateStore) put(state string, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, v := range s.items {
		if now.After(v) {
			delete(s.items, k)
		}
	}
	s.items[state] = exp
}

func (s *stateStore) consume(state string, now time.Time) bool {
	s.mu.Lock()
	exp, ok := s.items[state]
	delete(s.items, state)
	s.mu.Unlock()
	return ok && !now.After(exp)
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
