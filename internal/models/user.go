package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a registered quiz player. Registration is an upsert on email,
// so there is no password for regular users.
type Profile struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	IsAdmin     bool       `json:"is_admin"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthTokens struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	Profile      *Profile `json:"profile,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
