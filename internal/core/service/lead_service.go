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

type leadService struct {
	leads    ports.LeadRepository
	listings ports.ListingRepository
	profiles ports.ProfileRepository
	dedup    ports.LeadDedup
	notify   ports.NotificationQueue
	log      zerolog.Logger
	now      ports.Clock
}

// NewLeadService returns a LeadService implementation.
func NewLeadService(
	leads ports.LeadRepository,
	listings ports.ListingRepository,
	profiles ports.ProfileRepository,
	dedup ports.LeadDedup,
	notify ports.NotificationQueue,
	log zerolog.Logger,
) ports.LeadService {
	return &leadService{
		leads:    leads,
		listings: listings,
		profiles: profiles,
		dedup:    dedup,
		notify:   notify,
		log:      log,
		now:      time.Now,
	}
}

// Submit stores a lead against an active listing and notifies its dealer.
func (s *leadService) Submit(ctx context.Context, in ports.LeadInput) (*ports.LeadResult, error) {
	email := normalizeEmail(in.Email)

	// 1. The listing must exist and still be on sale.
	listing, err := s.listings.FindByID(ctx, in.ListingID)
	if err != nil {
		return nil, fmt.Errorf("submit lead: %w", err)
	}
	if listing.Status != domain.ListingActive {
		return nil, fmt.Errorf("submit lead: %w", domain.ErrListingNotFound)
	}

	// 2. Repeated submissions are accepted but stored once.
	isDup, err := s.dedup.IsDuplicate(ctx, in.ListingID, email)
	if err != nil {
		s.log.Warn().Err(err).Str("listing_id", in.ListingID).Msg("lead dedup check failed, storing anyway")
	} else if isDup {
		s.log.Debug().Str("listing_id", in.ListingID).Msg("duplicate lead skipped")
		return &ports.LeadResult{Duplicate: true}, nil
	}

	lead := &domain.Lead{
		ListingID: in.ListingID,
		DealerID:  listing.DealerID,
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Phone:     strings.TrimSpace(in.Phone),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: s.now().UTC(),
	}
	if err := s.leads.Insert(ctx, lead); err != nil {
		return nil, fmt.Errorf("submit lead: %w", err)
	}

	if err := s.dedup.Mark(ctx, in.ListingID, email); err != nil {
		s.log.Warn().Err(err).Str("listing_id", in.ListingID).Msg("failed to set lead dedup key")
	}

	// 3. Dealer notification is best effort.
	s.notifyDealer(ctx, listing, lead)

	s.log.Info().Str("listing_id", lead.ListingID).Str("dealer_id", lead.DealerID).Msg("lead received")
	return &ports.LeadResult{Lead: lead}, nil
}

func (s *leadService) notifyDealer(ctx context.Context, listing *domain.Listing, lead *domain.Lead) {
	dealer, err := s.profiles.FindByID(ctx, listing.DealerID)
	if err != nil {
		s.log.Warn().Err(err).Str("dealer_id", listing.DealerID).Msg("lead notification skipped: dealer profile unavailable")
		return
	}
	s.notify.Enqueue(domain.Notification{
		Kind:      domain.NotifyLeadReceived,
		Recipient: dealer.Email,
		Subject:   "New lead for " + listing.Title,
		Body: fmt.Sprintf("%s <%s> %s wrote:\n\n%s",
			lead.Name, lead.Email, lead.Phone, lead.Message),
		CreatedAt: lead.CreatedAt,
	})
}

// ListForActor lists the dealer's own leads, or all leads for administrators.
func (s *leadService) ListForActor(ctx context.Context, actor ports.Actor, page, limit int) (*ports.LeadPage, error) {
	var dealerID string
	switch actor.Role {
	case domain.RoleDealer:
		if actor.UserID == "" {
			return nil, domain.ErrForbidden
		}
		dealerID = actor.UserID
	case domain.RoleAdmin:
	default:
		return nil, domain.ErrForbidden
	}

	page, limit = normalizePage(page, limit)
	items, total, err := s.leads.List(ctx, dealerID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return &ports.LeadPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}
