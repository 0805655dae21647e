package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the identity contained in a JWT.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c Claims) UserID() string {
	return c.Subject
}

var (
	errMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

const defaultTTL = 7 * 24 * time.Hour

// Signer issues and verifies HS256 tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner builds a Signer. An empty secret falls back to the dev secret
// outside production.
func NewSigner(secret string, ttl time.Duration, env string) (*Signer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		if isProduction(env) {
			return nil, fmt.Errorf("%w: JWT_SECRET required in production", errMissingSecret)
		}
		secret = "dev-secret"
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Sign issues a token for the given user.
func (s *Signer) Sign(userID, email, name string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("sub is required")
	}
	now := s.now().UTC()
	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses a token and returns its claims.
func (s *Signer) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// TTL reports how long issued tokens stay valid.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// SignerFromEnv builds a Signer from JWT_SECRET and ENV. Used by tools that
// do not load the full config.
func SignerFromEnv() (*Signer, error) {
	return NewSigner(os.Getenv("JWT_SECRET"), 0, os.Getenv("ENV"))
}

func isProduction(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "production" || env == "prod"
}
