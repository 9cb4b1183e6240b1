package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/identito/auth-service/internal/core/domain"
	"github.com/identito/auth-service/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService persisting events through repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists one auth event. Events with no action are dropped;
// a missing timestamp is filled with the current time.
func (s *auditService) Record(ctx context.Context, in ports.AuthEventInput) error {
	if in.Action == "" {
		return nil
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	event := &domain.AuthEvent{
		Email:     in.Email,
		Action:    in.Action,
		RequestID: in.RequestID,
		Timestamp: ts,
	}
	if err := s.repo.InsertEvent(ctx, event); err != nil {
		return fmt.Errorf("record auth event: %w", err)
	}

	s.log.Debug().
		Str("action", string(in.Action)).
		Str("request_id", in.RequestID).
		Msg("auth event recorded")
	return nil
}
