package users

import (
	"context"
	"strings"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	users   map[string]User
	byEmail map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User), byEmail: make(map[string]string)}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, ok := r.byEmail[email]; ok {
		return ErrEmailTaken
	}
	now := time.Now().UTC()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	r.byEmail[email] = user.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.users[id], nil
}

func (r *MemoryRepo) UpsertOAuth(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(user.Email)
	now := time.Now().UTC()
	if id, ok := r.byEmail[email]; ok {
		existing := r.users[id]
		if existing.ProviderID == "" {
			existing.ProviderID = user.ProviderID
		}
		if existing.Name == "" {
			existing.Name = user.Name
		}
		existing.AvatarURL = user.AvatarURL
		existing.UpdatedAt = now
		r.users[id] = existing
		return existing, nil
	}
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	r.byEmail[email] = user.ID
	return user, nil
}

func (r *MemoryRepo) UpdateProfile(ctx context.Context, userID, name, avatarURL string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	user.Name = name
	user.AvatarURL = avatarURL
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return user, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	delete(r.byEmail, user.Email)
	delete(r.users, userID)
	return nil
}
