package handler

import (
	"context"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

type stubListingService struct {
	listing *domain.Listing
	err     error

	gotActor  ports.Actor
	gotInput  ports.ListingInput
	gotQuery  ports.ListListingsInput
	gotStatus string
	deleted   string
}

func (s *stubListingService) CreateListing(_ context.Context, actor ports.Actor, in ports.ListingInput) (*domain.Listing, error) {
	s.gotActor, s.gotInput = actor, in
	return s.listing, s.err
}

func (s *stubListingService) GetListing(context.Context, string) (*domain.Listing, error) {
	return s.listing, s.err
}

func (s *stubListingService) UpdateListing(_ context.Context, actor ports.Actor, _ string, in ports.ListingInput) (*domain.Listing, error) {
	s.gotActor, s.gotInput = actor, in
	return s.listing, s.err
}

func (s *stubListingService) ChangeStatus(_ context.Context, actor ports.Actor, _ string, status string) (*domain.Listing, error) {
	s.gotActor, s.gotStatus = actor, status
	return s.listing, s.err
}

func (s *stubListingService) DeleteListing(_ context.Context, actor ports.Actor, id string) error {
	s.gotActor, s.deleted = actor, id
	return s.err
}

func (s *stubListingService) ListPublic(_ context.Context, in ports.ListListingsInput) (*ports.ListListingsResult, error) {
	s.gotQuery = in
	return s.page(in)
}

func (s *stubListingService) ListForActor(_ context.Context, actor ports.Actor, in ports.ListListingsInput) (*ports.ListListingsResult, error) {
	s.gotActor, s.gotQuery = actor, in
	return s.page(in)
}

func (s *stubListingService) page(in ports.ListListingsInput) (*ports.ListListingsResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	res := &ports.ListListingsResult{Page: 1, Limit: in.Limit}
	if s.listing != nil {
		res.Items = []*domain.Listing{s.listing}
		res.Total = 1
		res.TotalPages = 1
	}
	return res, nil
}

type stubLeadService struct {
	result *ports.LeadResult
	err    error

	gotInput ports.LeadInput
	gotActor ports.Actor
}

func (s *stubLeadService) Submit(_ context.Context, in ports.LeadInput) (*ports.LeadResult, error) {
	s.gotInput = in
	return s.result, s.err
}

func (s *stubLeadService) ListForActor(_ context.Context, actor ports.Actor, page, limit int) (*ports.LeadPage, error) {
	s.gotActor = actor
	if s.err != nil {
		return nil, s.err
	}
	return &ports.LeadPage{Page: 1, Limit: limit}, nil
}

type stubProfileService struct {
	profiles map[string]*domain.Profile
	err      error

	gotRole, gotStatus string
}

func (s *stubProfileService) Get(_ context.Context, id string) (*domain.Profile, error) {
	if p, ok := s.profiles[id]; ok {
		return p, nil
	}
	return nil, domain.ErrProfileNotFound
}

func (s *stubProfileService) GetDealer(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role != domain.RoleDealer || p.Status != domain.ProfileApproved {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

func (s *stubProfileService) ListDealers(context.Context, int, int) (*ports.ProfilePage, error) {
	return s.page()
}

func (s *stubProfileService) ListAll(_ context.Context, role, status string, _, _ int) (*ports.ProfilePage, error) {
	s.gotRole, s.gotStatus = role, status
	return s.page()
}

func (s *stubProfileService) SetStatus(_ context.Context, id, status string) (*domain.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	p.Status = domain.ProfileStatus(status)
	return p, nil
}

func (s *stubProfileService) page() (*ports.ProfilePage, error) {
	if s.err != nil {
		return nil, s.err
	}
	res := &ports.ProfilePage{Page: 1, Limit: 20}
	for _, p := range s.profiles {
		res.Items = append(res.Items, p)
	}
	res.Total = int64(len(res.Items))
	return res, nil
}

func sampleListing() *domain.Listing {
	return &domain.Listing{
		ID:       "l1",
		DealerID: "u-dealer",
		Title:    "Golf 1.6 TDI",
		Make:     "Volkswagen",
		Model:    "Golf",
		Year:     2019,
		Price:    15900,
		Currency: "EUR",
		Fuel:     domain.FuelDiesel,
		Status:   domain.ListingActive,
	}
}
