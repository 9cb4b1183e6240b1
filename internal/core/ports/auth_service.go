package ports

import (
	"context"

	"github.com/identito/auth-service/internal/core/domain"
)

// AuthService exposes the credential-lifecycle operations consumed by the
// HTTP layer. Expected absences surface as zero values (false, "", nil);
// only genuine conflicts and store failures surface as errors.
type AuthService interface {
	// Register creates a new account. Returns domain.ErrUserExists when the
	// email is already registered.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// ValidLogin reports whether the credentials match a registered account.
	// Unknown emails, wrong passwords, and internal lookup failures are all
	// indistinguishable: every one of them is just false.
	ValidLogin(ctx context.Context, email, password string) bool

	// CreateSession mints a fresh session token for the account, replacing
	// any previous one. Returns "" (and no error) for unknown emails. It does
	// not re-check the password; callers authenticate via ValidLogin first.
	CreateSession(ctx context.Context, email string) (string, error)

	// GetUserBySession resolves a session token to its owner. Returns
	// (nil, nil) for empty, unknown, or stale tokens.
	GetUserBySession(ctx context.Context, token string) (*domain.User, error)

	// DestroySession clears the account's session token. Unknown or empty
	// ids are a silent no-op, so double-logout is harmless.
	DestroySession(ctx context.Context, userID string) error

	// RequestPasswordReset issues a single-use reset token for the account.
	// Returns domain.ErrUserNotFound for unknown emails.
	RequestPasswordReset(ctx context.Context, email string) (string, error)

	// CompletePasswordReset consumes a reset token and installs the new
	// password. Returns domain.ErrInvalidResetToken when the token is
	// unknown or already consumed.
	CompletePasswordReset(ctx context.Context, resetToken, newPassword string) error
}
