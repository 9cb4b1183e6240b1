package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/identito/auth-service/internal/core/domain"
	"github.com/identito/auth-service/internal/core/ports"
)

const usersCollection = "users"

// UserRepository implements ports.UserRepository on a MongoDB collection.
// All mutations are single-document writes, which MongoDB applies
// atomically, and the unique email index closes the register race.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	SessionToken string             `bson:"session_token,omitempty"`
	ResetToken   string             `bson:"reset_token,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		SessionToken: d.SessionToken,
		ResetToken:   d.ResetToken,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// Insert creates a user document. Duplicate emails are rejected by the
// unique index and surface as domain.ErrUserExists.
func (r *UserRepository) Insert(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	now := time.Now().UTC()
	doc := userDoc{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// FindOne returns the single user matching the filter. To honour the
// "exactly one" contract it fetches up to two documents: a second match
// means the filter is ambiguous, reported as not-found.
func (r *UserRepository) FindOne(ctx context.Context, filter ports.UserFilter) (*domain.User, error) {
	query, err := buildQuery(filter)
	if err != nil {
		return nil, err
	}

	cur, err := r.coll.Find(ctx, query, options.Find().SetLimit(2))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if len(docs) != 1 {
		return nil, domain.ErrUserNotFound
	}
	return docs[0].toDomain(), nil
}

// UpdateFields applies a partial update to one user document. Cleared
// token fields are removed with $unset so lookups by token never match a
// stored empty string.
func (r *UserRepository) UpdateFields(ctx context.Context, id string, update ports.UserUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	applyField(set, unset, "password_hash", update.PasswordHash)
	applyField(set, unset, "session_token", update.SessionToken)
	applyField(set, unset, "reset_token", update.ResetToken)

	ops := bson.M{"$set": set}
	if len(unset) > 0 {
		ops["$unset"] = unset
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, ops)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ConsumeResetToken is a compare-and-swap on the reset token: one
// FindOneAndUpdate matches the holder, installs the new hash, and removes
// the token. Of two racing calls, exactly one matches.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, resetToken, newPasswordHash string) (*domain.User, error) {
	if resetToken == "" {
		return nil, domain.ErrUserNotFound
	}

	update := bson.M{
		"$set":   bson.M{"password_hash": newPasswordHash, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"reset_token": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"reset_token": resetToken}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the unique email index and the token lookup
// indexes. Token indexes are sparse: most documents carry no tokens.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "session_token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "reset_token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func buildQuery(filter ports.UserFilter) (bson.M, error) {
	if filter.IsZero() {
		return nil, domain.ErrUserNotFound
	}

	query := bson.M{}
	if filter.ID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.ID)
		if err != nil {
			return nil, domain.ErrUserNotFound
		}
		query["_id"] = oid
	}
	if filter.Email != "" {
		query["email"] = filter.Email
	}
	if filter.SessionToken != "" {
		query["session_token"] = filter.SessionToken
	}
	if filter.ResetToken != "" {
		query["reset_token"] = filter.ResetToken
	}
	return query, nil
}

func applyField(set, unset bson.M, key string, value *string) {
	if value == nil {
		return
	}
	if *value == "" {
		unset[key] = ""
		return
	}
	set[key] = *value
}
