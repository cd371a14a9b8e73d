package ports

import (
	"context"

	"github.com/standmarket/marketplace/internal/core/domain"
)

// ProfileRepository persists account profiles.
type ProfileRepository interface {
	Create(ctx context.Context, p *domain.Profile) error
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	Update(ctx context.Context, p *domain.Profile) error
	// List filters by role and status when they are non-empty.
	List(ctx context.Context, role domain.Role, status domain.ProfileStatus, page, limit int) ([]*domain.Profile, int64, error)
}

// ProfilePage is a page of profiles.
type ProfilePage struct {
	Items      []*domain.Profile
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ProfileService covers dealer pages and admin moderation.
type ProfileService interface {
	Get(ctx context.Context, id string) (*domain.Profile, error)
	// GetDealer returns an approved dealer profile only.
	GetDealer(ctx context.Context, id string) (*domain.Profile, error)
	ListDealers(ctx context.Context, page, limit int) (*ProfilePage, error)
	ListAll(ctx context.Context, role, status string, page, limit int) (*ProfilePage, error)
	SetStatus(ctx context.Context, id, status string) (*domain.Profile, error)
}
