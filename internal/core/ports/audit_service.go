package ports

import (
	"context"
	"time"

	"github.com/identito/auth-service/internal/core/domain"
)

// AuthEventInput is the DTO handed from the transport layer to the audit
// pipeline.
type AuthEventInput struct {
	Email     string
	Action    domain.AuthAction
	RequestID string
	Timestamp time.Time
}

// AuditService records a single auth event.
type AuditService interface {
	Record(ctx context.Context, event AuthEventInput) error
}
