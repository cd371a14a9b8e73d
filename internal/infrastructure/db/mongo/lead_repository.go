package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

// LeadRepository implements ports.LeadRepository using MongoDB.
type LeadRepository struct {
	db *mongo.Database
}

// NewLeadRepository creates a new LeadRepository.
func NewLeadRepository(db *mongo.Database) *LeadRepository {
	return &LeadRepository{db: db}
}

// Insert persists a lead and assigns its id.
func (r *LeadRepository) Insert(ctx context.Context, lead *domain.Lead) error {
	lead.ID = primitive.NewObjectID().Hex()
	if _, err := r.db.Collection(collLeads).InsertOne(ctx, lead); err != nil {
		lead.ID = ""
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) List(ctx context.Context, dealerID string, page, limit int) ([]*domain.Lead, int64, error) {
	col := r.db.Collection(collLeads)
	filter := bson.M{}
	if dealerID != "" {
		filter["dealer_id"] = dealerID
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}
	cur, err := col.Find(ctx, filter, pageOptions(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("find leads: %w", err)
	}
	items := make([]*domain.Lead, 0, limit)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode leads: %w", err)
	}
	return items, total, nil
}

func (r *LeadRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.db.Collection(collLeads),
		mongo.IndexModel{Keys: bson.D{{Key: "dealer_id", Value: 1}, {Key: "created_at", Value: -1}}},
	)
}

var _ ports.LeadRepository = (*LeadRepository)(nil)
