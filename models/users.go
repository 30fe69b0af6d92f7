package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system. Credential fields never marshal
// into API responses.
type User struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	ResetPasswordToken  *string    `json:"-"`
	ResetPasswordSentAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// UserResponse represents a response with a single user.
type UserResponse struct {
	User User `json:"user"`
}

// LoginResponse carries the bearer token issued on a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
