package users

import "time"

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"

	PlanFree = "free"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider"`
	ProviderID   string    `json:"-"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	Plan         string    `json:"plan"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
