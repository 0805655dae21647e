package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// UpsertOAuth links an external identity to the account with the same
	// email, creating the account when none exists.
	UpsertOAuth(ctx context.Context, user User) (User, error)
	UpdateProfile(ctx context.Context, userID, name, avatarURL string) (User, error)
	Delete(ctx context.Context, userID string) error
}
