package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/standmarket/marketplace/internal/core/ports"
)

// SessionRepository stores one document per issued access token, keyed by
// the token id, so sign-out can revoke a token before it expires.
type SessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(collSessions)}
}

type mongoSession struct {
	ID        string `bson:"_id"`
	UserID    string `bson:"user_id"`
	IssuedAt  int64  `bson:"issued_at"`
	ExpiresAt int64  `bson:"expires_at"`
}

func (r *SessionRepository) Create(ctx context.Context, rec ports.RemoteSessionRecord) error {
	_, err := r.coll.InsertOne(ctx, mongoSession(rec))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("find session: %w", err)
	}
	return n > 0, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.coll,
		mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	)
}
