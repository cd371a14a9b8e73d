package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/standmarket/marketplace/internal/core/domain"
)

type ResetTokenRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewResetTokenRepository(db *mongo.Database) *ResetTokenRepository {
	return &ResetTokenRepository{coll: db.Collection(collResetTokens), now: time.Now}
}

type mongoReset struct {
	Token     string `bson:"_id"`
	UserID    string `bson:"user_id"`
	Email     string `bson:"email"`
	ExpiresAt int64  `bson:"expires_at"`
}

func (r *ResetTokenRepository) Create(ctx context.Context, reset domain.PasswordReset) error {
	_, err := r.coll.InsertOne(ctx, mongoReset{
		Token:     reset.Token,
		UserID:    reset.UserID,
		Email:     reset.Email,
		ExpiresAt: reset.ExpiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

// Consume atomically removes the token. Expired or unknown tokens yield
// ErrInvalidResetToken.
func (r *ResetTokenRepository) Consume(ctx context.Context, token string) (*domain.PasswordReset, error) {
	filter := bson.M{"_id": token, "expires_at": bson.M{"$gt": r.now().Unix()}}

	var doc mongoReset
	if err := r.coll.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvalidResetToken
		}
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	return &domain.PasswordReset{
		Token:     doc.Token,
		UserID:    doc.UserID,
		Email:     doc.Email,
		ExpiresAt: unixToTime(doc.ExpiresAt),
	}, nil
}

func (r *ResetTokenRepository) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, fmt.Errorf("purge reset tokens: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *ResetTokenRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.coll, mongo.IndexModel{Keys: bson.D{{Key: "expires_at", Value: 1}}})
}
