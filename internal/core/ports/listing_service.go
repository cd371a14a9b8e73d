package ports

import (
	"context"

	"github.com/standmarket/marketplace/internal/core/domain"
)

// Actor identifies who is performing a listing or lead operation.
type Actor struct {
	UserID string
	Email  string
	Role   domain.Role
}

// ListingInput carries the editable fields of a listing.
type ListingInput struct {
	Title        string
	Make         string
	Model        string
	Year         int
	Price        float64
	Currency     string
	MileageKm    int
	Fuel         string
	Transmission string
	Description  string
	Images       []string
}

// ListListingsInput carries all parameters for the listing endpoints.
type ListListingsInput struct {
	DealerID string
	Status   string
	Make     string
	Fuel     string
	Search   string
	PriceMin float64
	PriceMax float64
	YearMin  int
	YearMax  int
	Page     int
	Limit    int
}

// ListListingsResult is a page of listings.
type ListListingsResult struct {
	Items      []*domain.Listing
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ListingService defines use-case operations for listings.
type ListingService interface {
	CreateListing(ctx context.Context, actor Actor, in ListingInput) (*domain.Listing, error)
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	UpdateListing(ctx context.Context, actor Actor, id string, in ListingInput) (*domain.Listing, error)
	ChangeStatus(ctx context.Context, actor Actor, id string, status string) (*domain.Listing, error)
	DeleteListing(ctx context.Context, actor Actor, id string) error
	// ListPublic lists active listings only.
	ListPublic(ctx context.Context, in ListListingsInput) (*ListListingsResult, error)
	// ListForActor lists the actor's own listings (dealer) or every listing (admin).
	ListForActor(ctx context.Context, actor Actor, in ListListingsInput) (*ListListingsResult, error)
}
