package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

type ProfileService struct {
	repo   ports.ProfileRepository
	notify ports.NotificationQueue
	log    zerolog.Logger
	now    ports.Clock
}

func NewProfileService(repo ports.ProfileRepository, notify ports.NotificationQueue, log zerolog.Logger) *ProfileService {
	return &ProfileService{repo: repo, notify: notify, log: log, now: time.Now}
}

func (s *ProfileService) Get(ctx context.Context, id string) (*domain.Profile, error) {
	return s.repo.FindByID(ctx, id)
}

// GetDealer hides profiles that are not approved dealers.
func (s *ProfileService) GetDealer(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role != domain.RoleDealer || p.Status != domain.ProfileApproved {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

func (s *ProfileService) ListDealers(ctx context.Context, page, limit int) (*ports.ProfilePage, error) {
	return s.list(ctx, domain.RoleDealer, domain.ProfileApproved, page, limit)
}

func (s *ProfileService) ListAll(ctx context.Context, role, status string, page, limit int) (*ports.ProfilePage, error) {
	var r domain.Role
	if role != "" {
		r = domain.ParseRole(role)
	}
	return s.list(ctx, r, domain.ProfileStatus(status), page, limit)
}

func (s *ProfileService) list(ctx context.Context, role domain.Role, status domain.ProfileStatus, page, limit int) (*ports.ProfilePage, error) {
	page, limit = normalizePage(page, limit)
	items, total, err := s.repo.List(ctx, role, status, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return &ports.ProfilePage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// SetStatus moderates an account and tells the account holder.
func (s *ProfileService) SetStatus(ctx context.Context, id, status string) (*domain.Profile, error) {
	next := domain.ProfileStatus(status)
	switch next {
	case domain.ProfilePending, domain.ProfileApproved, domain.ProfileSuspended:
	default:
		return nil, domain.ErrInvalidProfileStatus
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, p.Status, next)
	}

	p.Status = next
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("set profile status: %w", err)
	}

	s.notify.Enqueue(domain.Notification{
		Kind:      domain.NotifyDealerStatus,
		Recipient: p.Email,
		Subject:   "Your account is now " + string(next),
		Body:      "An administrator changed the status of your account to " + string(next) + ".",
		CreatedAt: p.UpdatedAt,
	})
	s.log.Info().Str("profile_id", id).Str("status", status).Msg("profile status changed")
	return p, nil
}

var _ ports.ProfileService = (*ProfileService)(nil)
