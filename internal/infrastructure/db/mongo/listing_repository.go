package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(collListings)}
}

// Create inserts a new listing and assigns its id.
func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	l.ID = primitive.NewObjectID().Hex()
	if _, err := r.col.InsertOne(ctx, l); err != nil {
		l.ID = ""
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var l domain.Listing
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": l.ID}, l)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// List returns a page of listings matching f, newest first, and the total
// number of matches.
func (r *ListingRepository) List(ctx context.Context, f ports.ListListingsFilter) ([]*domain.Listing, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildListingFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	cur, err := r.col.Find(ctx, filter, pageOptions(f.Page, f.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("find listings: %w", err)
	}
	items := make([]*domain.Listing, 0, f.Limit)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode listings: %w", err)
	}
	return items, total, nil
}

func buildListingFilter(f ports.ListListingsFilter) bson.M {
	filter := bson.M{}
	if f.DealerID != "" {
		filter["dealer_id"] = f.DealerID
	}
	switch len(f.Statuses) {
	case 0:
	case 1:
		filter["status"] = f.Statuses[0]
	default:
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	if f.Make != "" {
		filter["make"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Make) + "$", Options: "i"}
	}
	if f.Fuel != "" {
		filter["fuel"] = f.Fuel
	}
	if price := rangeFilter(f.PriceMin, f.PriceMax); price != nil {
		filter["price"] = price
	}
	if year := rangeFilter(f.YearMin, f.YearMax); year != nil {
		filter["year"] = year
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"make": rx},
			bson.M{"model": rx},
		}
	}
	return filter
}

func rangeFilter[T int | float64](lo, hi T) bson.M {
	if lo <= 0 && hi <= 0 {
		return nil
	}
	m := bson.M{}
	if lo > 0 {
		m["$gte"] = lo
	}
	if hi > 0 {
		m["$lte"] = hi
	}
	return m
}

// EnsureIndexes creates necessary indexes on the listings collection.
func (r *ListingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "dealer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "make", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
