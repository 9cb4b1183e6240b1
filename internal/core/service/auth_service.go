package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/identito/auth-service/internal/core/domain"
	"github.com/identito/auth-service/internal/core/ports"
)

// Hasher abstracts the password hashing scheme (bcrypt in production).
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenSource mints opaque session and reset tokens.
type TokenSource interface {
	Generate() string
}

// SessionCache is an optional lookup accelerator for session tokens
// (Redis in production). Entries are hints only: every hit is re-verified
// against the store, so stale entries can never resurrect a dead session.
type SessionCache interface {
	Put(ctx context.Context, token, userID string) error
	Lookup(ctx context.Context, token string) (string, error)
	Drop(ctx context.Context, token string) error
}

// AuthService implements ports.AuthService: registration, login checks,
// session lifecycle, and single-use password resets.
type AuthService struct {
	repo   ports.UserRepository
	hasher Hasher
	tokens TokenSource
	cache  SessionCache // may be nil
	log    zerolog.Logger
}

// NewAuthService wires an AuthService. cache may be nil to run without the
// session lookup cache.
func NewAuthService(repo ports.UserRepository, hasher Hasher, tokens TokenSource, cache SessionCache, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, cache: cache, log: log}
}

// Register creates a new account with a freshly hashed password and no
// session or reset token outstanding.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	// Lookup first so the common conflict path reports cleanly; the store's
	// unique email index closes the race between two concurrent registers.
	if _, err := s.repo.FindOne(ctx, ports.UserFilter{Email: email}); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user, err := s.repo.Insert(ctx, email, hash)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ValidLogin reports whether the credentials are good. Every failure mode
// collapses to false: an attacker probing emails learns nothing from the
// response, and the slow bcrypt check runs only for accounts that exist.
func (s *AuthService) ValidLogin(ctx context.Context, email, password string) bool {
	if email == "" || password == "" {
		return false
	}

	user, err := s.repo.FindOne(ctx, ports.UserFilter{Email: email})
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Warn().Err(err).Msg("login lookup failed")
		}
		return false
	}
	return s.hasher.Verify(password, user.PasswordHash)
}

// CreateSession mints a session token and installs it on the account,
// overwriting any previous token. Unknown emails yield ("", nil). The
// caller is trusted to have run ValidLogin already.
func (s *AuthService) CreateSession(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", nil
	}

	user, err := s.repo.FindOne(ctx, ports.UserFilter{Email: email})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("create session: %w", err)
	}

	token := s.tokens.Generate()
	if err := s.repo.UpdateFields(ctx, user.ID, ports.UserUpdate{SessionToken: &token}); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("create session: %w", err)
	}

	s.cacheDrop(ctx, user.SessionToken)
	s.cachePut(ctx, token, user.ID)
	return token, nil
}

// GetUserBySession resolves a session token to its owner, or (nil, nil)
// when the token is empty, unknown, or stale.
func (s *AuthService) GetUserBySession(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}

	if user := s.cacheResolve(ctx, token); user != nil {
		return user, nil
	}

	user, err := s.repo.FindOne(ctx, ports.UserFilter{SessionToken: token})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("session lookup: %w", err)
	}

	s.cachePut(ctx, token, user.ID)
	return user, nil
}

// DestroySession clears the account's session token. Empty and unknown
// ids no-op so a double logout never fails.
func (s *AuthService) DestroySession(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}

	user, err := s.repo.FindOne(ctx, ports.UserFilter{ID: userID})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("destroy session: %w", err)
	}

	cleared := ""
	if err := s.repo.UpdateFields(ctx, user.ID, ports.UserUpdate{SessionToken: &cleared}); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("destroy session: %w", err)
	}

	s.cacheDrop(ctx, user.SessionToken)
	return nil
}

// RequestPasswordReset issues a reset token for the account, replacing any
// outstanding one so at most one reset is pending per user.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.repo.FindOne(ctx, ports.UserFilter{Email: email})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("request password reset: %w", err)
	}

	token := s.tokens.Generate()
	if err := s.repo.UpdateFields(ctx, user.ID, ports.UserUpdate{ResetToken: &token}); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("request password reset: %w", err)
	}
	return token, nil
}

// CompletePasswordReset consumes the reset token and installs the new
// password hash. The store-level compare-and-swap guarantees a token is
// honoured exactly once even under concurrent completion attempts.
func (s *AuthService) CompletePasswordReset(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return domain.ErrInvalidResetToken
	}

	// Hash outside any store-side serialization: bcrypt is the slow step.
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("complete password reset: hash password: %w", err)
	}

	user, err := s.repo.ConsumeResetToken(ctx, resetToken, hash)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidResetToken
		}
		return fmt.Errorf("complete password reset: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset completed")
	return nil
}

// cacheResolve returns the session owner if the cache hint is still valid.
func (s *AuthService) cacheResolve(ctx context.Context, token string) *domain.User {
	if s.cache == nil {
		return nil
	}

	userID, err := s.cache.Lookup(ctx, token)
	if err != nil {
		s.log.Warn().Err(err).Msg("session cache lookup failed, falling back to store")
		return nil
	}
	if userID == "" {
		return nil
	}

	user, err := s.repo.FindOne(ctx, ports.UserFilter{ID: userID})
	if err != nil || user.SessionToken != token {
		// Stale hint: the session was destroyed or rotated since caching.
		s.cacheDrop(ctx, token)
		return nil
	}
	return user
}

func (s *AuthService) cachePut(ctx context.Context, token, userID string) {
	if s.cache == nil || token == "" {
		return
	}
	if err := s.cache.Put(ctx, token, userID); err != nil {
		s.log.Warn().Err(err).Msg("session cache put failed")
	}
}

func (s *AuthService) cacheDrop(ctx context.Context, token string) {
	if s.cache == nil || token == "" {
		return
	}
	if err := s.cache.Drop(ctx, token); err != nil {
		s.log.Warn().Err(err).Msg("session cache drop failed")
	}
}
