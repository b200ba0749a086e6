package model

import (
	"context"
	"time"
)

// UserStore defines persistence operations for users.
//
// Create must enforce email uniqueness atomically and return ErrDuplicate
// when the email is already registered.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string, updatedAt time.Time) error
}

// User represents a stored user with authentication material.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	ProfileImage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns the client-facing projection of the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
	}
}

// PublicUser is the user projection returned to clients and attached to
// authenticated requests. It never carries the password hash.
type PublicUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`
}

// NewUser holds registration input for the credential store.
type NewUser struct {
	Username     string
	Email        string
	Password     string
	ProfileImage string
}

// AuthResult is returned by successful register and login flows.
type AuthResult struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}
