package users

import (
	"context"
	"errors"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidName        = errors.New("name must be at most 100 characters")
	ErrInvalidAvatarURL   = errors.New("avatarUrl must be an https URL")
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores bytes past 72
	maxNameLen     = 100
)

type Service struct {
	Repo Repo
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Register creates a local account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, email, password, name string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	if utf8.RuneCountInString(password) < minPasswordLen || len(password) > maxPasswordLen {
		return User{}, ErrWeakPassword
	}
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return User{}, err
	}
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Provider:     ProviderLocal,
		Plan:         PlanFree,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, user.ID)
}

// Authenticate checks an email/password pair. Unknown email and wrong
// password both return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	user, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if user.PasswordHash == "" {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpsertFromOAuth persists an identity returned by an OAuth provider.
func (s *Service) UpsertFromOAuth(ctx context.Context, provider, providerID, email, name, avatarURL string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	return s.Repo.UpsertOAuth(ctx, User{
		ID:         uuid.NewString(),
		Email:      email,
		Name:       strings.TrimSpace(name),
		Provider:   provider,
		ProviderID: providerID,
		AvatarURL:  avatarURL,
		Plan:       PlanFree,
	})
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}

// ProfileInput is a partial profile update; nil fields are left unchanged.
type ProfileInput struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

// UpdateProfile changes the display name and avatar. An empty avatarUrl
// clears it.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	name, avatar := user.Name, user.AvatarURL
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if utf8.RuneCountInString(name) > maxNameLen {
			return User{}, ErrInvalidName
		}
	}
	if in.AvatarURL != nil {
		avatar = strings.TrimSpace(*in.AvatarURL)
		if avatar != "" {
			u, err := url.Parse(avatar)
			if err != nil || u.Scheme != "https" || u.Host == "" {
				return User{}, ErrInvalidAvatarURL
			}
		}
	}
	return s.Repo.UpdateProfile(ctx, userID, name, avatar)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
