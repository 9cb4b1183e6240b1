package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/identito/auth-service/internal/core/domain"
	"github.com/identito/auth-service/internal/core/ports"
)

func TestUserRepository_InsertAssignsIDs(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	first, err := repo.Insert(ctx, "a@example.com", "hash-a")
	if err != nil {
		t.Fatalf("insert a: %v", err)
	}
	second, err := repo.Insert(ctx, "b@example.com", "hash-b")
	if err != nil {
		t.Fatalf("insert b: %v", err)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", first.ID, second.ID)
	}
}

func TestUserRepository_InsertDuplicateEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	if _, err := repo.Insert(ctx, "a@example.com", "hash"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := repo.Insert(ctx, "a@example.com", "other"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserRepository_FindOne(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	created, _ := repo.Insert(ctx, "a@example.com", "hash")
	tok := "tok-1"
	if err := repo.UpdateFields(ctx, created.ID, ports.UserUpdate{SessionToken: &tok}); err != nil {
		t.Fatalf("update: %v", err)
	}

	byEmail, err := repo.FindOne(ctx, ports.UserFilter{Email: "a@example.com"})
	if err != nil || byEmail.ID != created.ID {
		t.Fatalf("find by email: %v %+v", err, byEmail)
	}
	byToken, err := repo.FindOne(ctx, ports.UserFilter{SessionToken: "tok-1"})
	if err != nil || byToken.ID != created.ID {
		t.Fatalf("find by session token: %v %+v", err, byToken)
	}
	if _, err := repo.FindOne(ctx, ports.UserFilter{Email: "ghost@example.com"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.FindOne(ctx, ports.UserFilter{}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("empty filter must not match, got %v", err)
	}
}

func TestUserRepository_FindOneAmbiguous(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	a, _ := repo.Insert(ctx, "a@example.com", "hash")
	b, _ := repo.Insert(ctx, "b@example.com", "hash")
	tok := "shared"
	_ = repo.UpdateFields(ctx, a.ID, ports.UserUpdate{ResetToken: &tok})
	_ = repo.UpdateFields(ctx, b.ID, ports.UserUpdate{ResetToken: &tok})

	if _, err := repo.FindOne(ctx, ports.UserFilter{ResetToken: "shared"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("ambiguous match must report not-found, got %v", err)
	}
}

func TestUserRepository_UpdateFieldsPartial(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	created, _ := repo.Insert(ctx, "a@example.com", "hash")
	session := "sess"
	reset := "reset"
	_ = repo.UpdateFields(ctx, created.ID, ports.UserUpdate{SessionToken: &session})
	_ = repo.UpdateFields(ctx, created.ID, ports.UserUpdate{ResetToken: &reset})

	got, _ := repo.FindOne(ctx, ports.UserFilter{ID: created.ID})
	if got.SessionToken != "sess" || got.ResetToken != "reset" || got.PasswordHash != "hash" {
		t.Fatalf("partial updates clobbered other fields: %+v", got)
	}

	cleared := ""
	_ = repo.UpdateFields(ctx, created.ID, ports.UserUpdate{SessionToken: &cleared})
	got, _ = repo.FindOne(ctx, ports.UserFilter{ID: created.ID})
	if got.SessionToken != "" || got.ResetToken != "reset" {
		t.Fatalf("clearing session must not touch reset token: %+v", got)
	}

	if err := repo.UpdateFields(ctx, "999", ports.UserUpdate{SessionToken: &session}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("unknown id must report not-found, got %v", err)
	}
}

func TestUserRepository_ConsumeResetToken(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	created, _ := repo.Insert(ctx, "a@example.com", "old-hash")
	tok := "reset-1"
	_ = repo.UpdateFields(ctx, created.ID, ports.UserUpdate{ResetToken: &tok})

	user, err := repo.ConsumeResetToken(ctx, "reset-1", "new-hash")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if user.PasswordHash != "new-hash" || user.ResetToken != "" {
		t.Fatalf("consume must swap hash and clear token: %+v", user)
	}

	// Single use: the same token cannot be consumed twice.
	if _, err := repo.ConsumeResetToken(ctx, "reset-1", "again"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second consume, got %v", err)
	}
	if _, err := repo.ConsumeResetToken(ctx, "", "hash"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("empty token must never match, got %v", err)
	}
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	created, _ := repo.Insert(ctx, "a@example.com", "hash")
	created.PasswordHash = "tampered"

	stored, _ := repo.FindOne(ctx, ports.UserFilter{ID: created.ID})
	if stored.PasswordHash != "hash" {
		t.Fatalf("mutating a returned record must not affect the store")
	}
}
