package ports

import (
	"context"

	"github.com/identito/auth-service/internal/core/domain"
)

// AuditRepository persists auth activity to the audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
