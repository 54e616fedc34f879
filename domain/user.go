package domain

import (
	"strings"
	"time"
)

// User is an identity registered with email and password.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the public view of a user together with task counters.
type Profile struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Summary   Summary   `json:"summary"`
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
