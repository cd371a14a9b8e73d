package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

const defaultCurrency = "EUR"

type ListingService struct {
	repo     ports.ListingRepository
	profiles ports.ProfileRepository
	logger   zerolog.Logger
	now      ports.Clock
}

func NewListingService(repo ports.ListingRepository, profiles ports.ProfileRepository, logger zerolog.Logger) *ListingService {
	return &ListingService{repo: repo, profiles: profiles, logger: logger, now: time.Now}
}

// CreateListing publishes a new listing. Only approved dealers may create
// listings; administrators are not dealers and are refused.
func (s *ListingService) CreateListing(ctx context.Context, actor ports.Actor, in ports.ListingInput) (*domain.Listing, error) {
	if actor.Role != domain.RoleDealer || actor.UserID == "" {
		return nil, domain.ErrForbidden
	}

	profile, err := s.profiles.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	if !profile.CanCreateListings() {
		return nil, domain.ErrDealerNotApproved
	}

	now := s.now().UTC()
	listing := &domain.Listing{
		DealerID:  actor.UserID,
		Status:    domain.ListingActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyListingInput(listing, in)

	if err := s.repo.Create(ctx, listing); err != nil {
		s.logger.Error().Err(err).Msg("failed to create listing")
		return nil, err
	}

	s.logger.Info().Str("listing_id", listing.ID).Str("dealer_id", actor.UserID).Msg("listing created")
	return listing, nil
}

func (s *ListingService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateListing edits a listing owned by the dealer, or any listing for admins.
func (s *ListingService) UpdateListing(ctx context.Context, actor ports.Actor, id string, in ports.ListingInput) (*domain.Listing, error) {
	listing, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	applyListingInput(listing, in)
	listing.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return listing, nil
}

// ChangeStatus moves a listing through its state machine.
func (s *ListingService) ChangeStatus(ctx context.Context, actor ports.Actor, id string, status string) (*domain.Listing, error) {
	listing, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	next := domain.ListingStatus(status)
	if !listing.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, listing.Status, next)
	}

	listing.Status = next
	listing.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("change listing status: %w", err)
	}

	s.logger.Info().Str("listing_id", id).Str("status", status).Msg("listing status changed")
	return listing, nil
}

func (s *ListingService) DeleteListing(ctx context.Context, actor ports.Actor, id string) error {
	if _, err := s.loadManaged(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	s.logger.Info().Str("listing_id", id).Str("actor", actor.Email).Msg("listing deleted")
	return nil
}

// ListPublic returns active listings for the public catalog.
func (s *ListingService) ListPublic(ctx context.Context, in ports.ListListingsInput) (*ports.ListListingsResult, error) {
	filter := toListFilter(in)
	filter.Statuses = []string{string(domain.ListingActive)}
	return s.list(ctx, filter)
}

// ListForActor scopes a dashboard listing to the dealer's own listings;
// administrators see every listing. A dealer without a user id is refused
// since the listing cannot be scoped.
func (s *ListingService) ListForActor(ctx context.Context, actor ports.Actor, in ports.ListListingsInput) (*ports.ListListingsResult, error) {
	filter := toListFilter(in)
	if in.Status != "" {
		filter.Statuses = []string{in.Status}
	}
	switch actor.Role {
	case domain.RoleDealer:
		if actor.UserID == "" {
			return nil, domain.ErrForbidden
		}
		filter.DealerID = actor.UserID
	case domain.RoleAdmin:
	default:
		return nil, domain.ErrForbidden
	}
	return s.list(ctx, filter)
}

func (s *ListingService) list(ctx context.Context, filter ports.ListListingsFilter) (*ports.ListListingsResult, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return &ports.ListListingsResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// loadManaged fetches a listing the actor is allowed to manage.
func (s *ListingService) loadManaged(ctx context.Context, actor ports.Actor, id string) (*domain.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.Role == domain.RoleAdmin:
	case actor.Role == domain.RoleDealer && actor.UserID != "" && listing.DealerID == actor.UserID:
	default:
		return nil, domain.ErrForbidden
	}
	return listing, nil
}

func toListFilter(in ports.ListListingsInput) ports.ListListingsFilter {
	page, limit := normalizePage(in.Page, in.Limit)
	return ports.ListListingsFilter{
		DealerID: in.DealerID,
		Make:     strings.TrimSpace(in.Make),
		Fuel:     in.Fuel,
		Search:   strings.TrimSpace(in.Search),
		PriceMin: in.PriceMin,
		PriceMax: in.PriceMax,
		YearMin:  in.YearMin,
		YearMax:  in.YearMax,
		Page:     page,
		Limit:    limit,
	}
}

func applyListingInput(l *domain.Listing, in ports.ListingInput) {
	l.Title = strings.TrimSpace(in.Title)
	l.Make = strings.TrimSpace(in.Make)
	l.Model = strings.TrimSpace(in.Model)
	l.Year = in.Year
	l.Price = in.Price
	l.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if l.Currency == "" {
		l.Currency = defaultCurrency
	}
	l.MileageKm = in.MileageKm
	l.Fuel = in.Fuel
	l.Transmission = in.Transmission
	l.Description = in.Description
	l.Images = append([]string(nil), in.Images...)
}

var _ ports.ListingService = (*ListingService)(nil)
