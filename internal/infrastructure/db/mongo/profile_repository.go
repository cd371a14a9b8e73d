package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/standmarket/marketplace/internal/core/domain"
)

// ProfileRepository stores profiles keyed by the identity's user id.
type ProfileRepository struct {
	col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{col: db.Collection(collProfiles)}
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Profile
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) List(ctx context.Context, role domain.Role, status domain.ProfileStatus, page, limit int) ([]*domain.Profile, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if role != "" {
		filter["role"] = string(role)
	}
	if status != "" {
		filter["status"] = string(status)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}
	cur, err := r.col.Find(ctx, filter, pageOptions(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("find profiles: %w", err)
	}
	items := make([]*domain.Profile, 0, limit)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode profiles: %w", err)
	}
	return items, total, nil
}

func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col,
		uniqueIndex("email"),
		mongo.IndexModel{Keys: bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}}},
	)
}
