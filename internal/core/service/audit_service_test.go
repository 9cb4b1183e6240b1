package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/identito/auth-service/internal/core/domain"
	"github.com/identito/auth-service/internal/core/ports"
)

type stubAuditRepo struct {
	events []*domain.AuthEvent
}

func (r *stubAuditRepo) InsertEvent(_ context.Context, e *domain.AuthEvent) error {
	r.events = append(r.events, e)
	return nil
}

func TestAuditService_Record(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	err := svc.Record(context.Background(), ports.AuthEventInput{
		Email:     "a@x.com",
		Action:    domain.ActionLoginSucceeded,
		RequestID: "req-1",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	got := repo.events[0]
	if got.Email != "a@x.com" || got.Action != domain.ActionLoginSucceeded || got.RequestID != "req-1" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Fatalf("missing timestamp must be filled in")
	}
}

func TestAuditService_KeepsExplicitTimestamp(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	_ = svc.Record(context.Background(), ports.AuthEventInput{
		Email:     "a@x.com",
		Action:    domain.ActionResetRequested,
		Timestamp: ts,
	})
	if !repo.events[0].Timestamp.Equal(ts) {
		t.Fatalf("explicit timestamp must be preserved, got %v", repo.events[0].Timestamp)
	}
}

func TestAuditService_DropsEmptyAction(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	if err := svc.Record(context.Background(), ports.AuthEventInput{Email: "a@x.com"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(repo.events) != 0 {
		t.Fatalf("event without action must be dropped")
	}
}
