package domain

import (
	"errors"
	"time"
)

var ErrUserExists = errors.New("email already registered")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidResetToken = errors.New("invalid reset token")
var ErrInvalidCredentials = errors.New("invalid credentials")

// User models a registered account. The credential and token fields are
// never serialized: the session token travels only via the session cookie,
// and the reset token only through the reset response body.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	SessionToken string    `json:"-"`
	ResetToken   string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasSession reports whether the user currently holds an active session.
func (u *User) HasSession() bool {
	return u.SessionToken != ""
}
