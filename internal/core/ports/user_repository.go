package ports

import (
	"context"

	"github.com/identito/auth-service/internal/core/domain"
)

// UserFilter selects a user by exact match on the set fields. Zero-valued
// fields are ignored; at least one field must be set.
type UserFilter struct {
	ID           string
	Email        string
	SessionToken string
	ResetToken   string
}

// IsZero reports whether no filter field is set.
func (f UserFilter) IsZero() bool {
	return f == UserFilter{}
}

// UserUpdate is a partial field set applied to a single user record.
// A nil pointer leaves the field untouched; a pointer to the empty string
// clears it.
type UserUpdate struct {
	PasswordHash *string
	SessionToken *string
	ResetToken   *string
}

// UserRepository defines the persistence contract for user accounts.
type UserRepository interface {
	// Insert creates a new user with the given email and password hash.
	// Returns domain.ErrUserExists when the email is already taken.
	Insert(ctx context.Context, email, passwordHash string) (*domain.User, error)

	// FindOne returns the single user matching the filter. Returns
	// domain.ErrUserNotFound when zero records match, or when more than one
	// matches (an ambiguous filter is treated as no match).
	FindOne(ctx context.Context, filter UserFilter) (*domain.User, error)

	// UpdateFields applies a partial update to the user with the given id
	// as one atomic write. Returns domain.ErrUserNotFound for unknown ids.
	UpdateFields(ctx context.Context, id string, update UserUpdate) error

	// ConsumeResetToken atomically replaces the password hash of the user
	// holding resetToken and clears the token, in a single compare-and-swap.
	// Returns domain.ErrUserNotFound when no user holds the token, which is
	// also the outcome when two concurrent calls race: exactly one wins.
	ConsumeResetToken(ctx context.Context, resetToken, newPasswordHash string) (*domain.User, error)
}
