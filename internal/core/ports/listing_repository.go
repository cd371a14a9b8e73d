package ports

import (
	"context"

	"github.com/standmarket/marketplace/internal/core/domain"
)

// ListListingsFilter carries all query parameters for listing searches.
// DealerID is enforced by the service layer for dealer dashboards.
type ListListingsFilter struct {
	DealerID string   // empty = all dealers
	Statuses []string // empty = any status
	Make     string
	Fuel     string
	Search   string // partial match on title, make or model
	PriceMin float64
	PriceMax float64
	YearMin  int
	YearMax  int
	Page     int // 1-based
	Limit    int // capped at 100 by the service
}

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	Create(ctx context.Context, l *domain.Listing) error
	FindByID(ctx context.Context, id string) (*domain.Listing, error)
	Update(ctx context.Context, l *domain.Listing) error
	Delete(ctx context.Context, id string) error
	// List returns a page of listings matching filter and the total count.
	List(ctx context.Context, filter ListListingsFilter) ([]*domain.Listing, int64, error)
}
