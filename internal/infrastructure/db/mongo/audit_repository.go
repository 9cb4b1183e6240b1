package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/identito/auth-service/internal/core/domain"
	"github.com/identito/auth-service/internal/core/ports"
)

const auditCollection = "auth_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	db *mongo.Database
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{db: db}
}

// InsertEvent appends one auth event to the auth_events collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	doc := bson.M{
		"email":       event.Email,
		"action":      string(event.Action),
		"timestamp":   event.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.RequestID != "" {
		doc["request_id"] = event.RequestID
	}

	_, err := r.db.Collection(auditCollection).InsertOne(ctx, doc)
	return err
}
