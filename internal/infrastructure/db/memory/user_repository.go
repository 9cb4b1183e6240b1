// Package memory provides a mutex-serialized in-memory UserRepository.
// It implements the exact port contract, so tests exercise the service
// against the same semantics the Mongo store provides.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/identito/auth-service/internal/core/domain"
	"github.com/identito/auth-service/internal/core/ports"
)

// UserRepository stores users in a map guarded by a single mutex, which
// serializes every lookup-then-mutate sequence the same way a per-record
// lock would for a one-process store.
type UserRepository struct {
	mu     sync.Mutex
	users  map[string]*domain.User // keyed by id
	nextID int
}

// NewUserRepository returns an empty in-memory store.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User), nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

// Insert creates a user with a store-assigned id.
func (r *UserRepository) Insert(_ context.Context, email, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return nil, domain.ErrUserExists
		}
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           strconv.Itoa(r.nextID),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.nextID++
	r.users[user.ID] = user
	return cloneUser(user), nil
}

// FindOne returns the single user matching the filter, or
// domain.ErrUserNotFound on zero or ambiguous matches.
func (r *UserRepository) FindOne(_ context.Context, filter ports.UserFilter) (*domain.User, error) {
	if filter.IsZero() {
		return nil, domain.ErrUserNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var found *domain.User
	for _, u := range r.users {
		if !matches(u, filter) {
			continue
		}
		if found != nil {
			return nil, domain.ErrUserNotFound
		}
		found = u
	}
	if found == nil {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(found), nil
}

// UpdateFields applies the partial update atomically under the store lock.
func (r *UserRepository) UpdateFields(_ context.Context, id string, update ports.UserUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	applyUpdate(user, update)
	return nil
}

// ConsumeResetToken swaps the password hash for the token holder and
// clears the token in one critical section.
func (r *UserRepository) ConsumeResetToken(_ context.Context, resetToken, newPasswordHash string) (*domain.User, error) {
	if resetToken == "" {
		return nil, domain.ErrUserNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ResetToken == resetToken {
			u.PasswordHash = newPasswordHash
			u.ResetToken = ""
			u.UpdatedAt = time.Now().UTC()
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func matches(u *domain.User, f ports.UserFilter) bool {
	if f.ID != "" && u.ID != f.ID {
		return false
	}
	if f.Email != "" && u.Email != f.Email {
		return false
	}
	if f.SessionToken != "" && u.SessionToken != f.SessionToken {
		return false
	}
	if f.ResetToken != "" && u.ResetToken != f.ResetToken {
		return false
	}
	return true
}

func applyUpdate(u *domain.User, upd ports.UserUpdate) {
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.SessionToken != nil {
		u.SessionToken = *upd.SessionToken
	}
	if upd.ResetToken != nil {
		u.ResetToken = *upd.ResetToken
	}
	u.UpdatedAt = time.Now().UTC()
}
