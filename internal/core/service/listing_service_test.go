package service

import (
	"context"
	"errors"
	"testing"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

var (
	dealerActor = ports.Actor{UserID: "d1", Email: "d1@cars.pt", Role: domain.RoleDealer}
	otherDealer = ports.Actor{UserID: "d2", Email: "d2@cars.pt", Role: domain.RoleDealer}
	adminActor  = ports.Actor{UserID: "a1", Email: testAdminEmail, Role: domain.RoleAdmin}
	visitor     = ports.Actor{UserID: "v1", Email: "v@cars.pt", Role: domain.RoleVisitor}
)

func newListingFixture() (*ListingService, *stubListingRepo) {
	repo := newStubListingRepo()
	profiles := newStubProfileRepo(
		&domain.Profile{ID: "d1", Email: "d1@cars.pt", Role: domain.RoleDealer, Status: domain.ProfileApproved},
		&domain.Profile{ID: "d2", Email: "d2@cars.pt", Role: domain.RoleDealer, Status: domain.ProfileApproved},
		&domain.Profile{ID: "d3", Email: "d3@cars.pt", Role: domain.RoleDealer, Status: domain.ProfilePending},
	)
	return NewListingService(repo, profiles, discardLogger), repo
}

func sampleInput() ports.ListingInput {
	return ports.ListingInput{Title: " BMW 320d ", Make: "BMW", Model: "320d", Year: 2019, Price: 21500, Fuel: domain.FuelDiesel}
}

func TestCreateListing_Success(t *testing.T) {
	svc, repo := newListingFixture()

	l, err := svc.CreateListing(context.Background(), dealerActor, sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.ID == "" || l.DealerID != "d1" || l.Status != domain.ListingActive {
		t.Fatalf("unexpected listing: %+v", l)
	}
	if l.Title != "BMW 320d" || l.Currency != "EUR" {
		t.Fatalf("input not normalised: %+v", l)
	}
	if _, ok := repo.byID[l.ID]; !ok {
		t.Fatalf("listing not persisted")
	}
}

func TestCreateListing_RoleAndApproval(t *testing.T) {
	svc, _ := newListingFixture()
	ctx := context.Background()

	if _, err := svc.CreateListing(ctx, adminActor, sampleInput()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("admin: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.CreateListing(ctx, visitor, sampleInput()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("visitor: expected ErrForbidden, got %v", err)
	}
	pending := ports.Actor{UserID: "d3", Role: domain.RoleDealer}
	if _, err := svc.CreateListing(ctx, pending, sampleInput()); !errors.Is(err, domain.ErrDealerNotApproved) {
		t.Fatalf("pending dealer: expected ErrDealerNotApproved, got %v", err)
	}
}

func TestUpdateListing_Ownership(t *testing.T) {
	svc, _ := newListingFixture()
	ctx := context.Background()
	l, _ := svc.CreateListing(ctx, dealerActor, sampleInput())

	in := sampleInput()
	in.Price = 19900
	if _, err := svc.UpdateListing(ctx, otherDealer, l.ID, in); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other dealer: expected ErrForbidden, got %v", err)
	}
	updated, err := svc.UpdateListing(ctx, adminActor, l.ID, in)
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if updated.Price != 19900 {
		t.Fatalf("price not updated: %v", updated.Price)
	}
	if _, err := svc.UpdateListing(ctx, dealerActor, "missing", in); !errors.Is(err, domain.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestChangeStatus_Transitions(t *testing.T) {
	svc, _ := newListingFixture()
	ctx := context.Background()
	l, _ := svc.CreateListing(ctx, dealerActor, sampleInput())

	if _, err := svc.ChangeStatus(ctx, dealerActor, l.ID, "archived"); err != nil {
		t.Fatalf("active -> archived: %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, dealerActor, l.ID, "sold"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("archived -> sold: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, dealerActor, l.ID, "active"); err != nil {
		t.Fatalf("archived -> active: %v", err)
	}
	sold, err := svc.ChangeStatus(ctx, dealerActor, l.ID, "sold")
	if err != nil || sold.Status != domain.ListingSold {
		t.Fatalf("active -> sold: %v %+v", err, sold)
	}
	if _, err := svc.ChangeStatus(ctx, dealerActor, l.ID, "active"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("sold is terminal, got %v", err)
	}
}

func TestDeleteListing(t *testing.T) {
	svc, repo := newListingFixture()
	ctx := context.Background()
	l, _ := svc.CreateListing(ctx, dealerActor, sampleInput())

	if err := svc.DeleteListing(ctx, visitor, l.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("visitor: expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteListing(ctx, dealerActor, l.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("listing not removed")
	}
}

func TestListPublic_OnlyActive(t *testing.T) {
	svc, _ := newListingFixture()
	ctx := context.Background()
	a, _ := svc.CreateListing(ctx, dealerActor, sampleInput())
	b, _ := svc.CreateListing(ctx, otherDealer, sampleInput())
	_, _ = svc.ChangeStatus(ctx, otherDealer, b.ID, "sold")

	res, err := svc.ListPublic(ctx, ports.ListListingsInput{Status: "sold"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || res.Items[0].ID != a.ID {
		t.Fatalf("expected only the active listing, got %+v", res.Items)
	}
	if res.Page != 1 || res.Limit != defaultPageSize || res.TotalPages != 1 {
		t.Fatalf("unexpected paging: %+v", res)
	}
}

func TestListForActor_Scoping(t *testing.T) {
	svc, repo := newListingFixture()
	ctx := context.Background()
	_, _ = svc.CreateListing(ctx, dealerActor, sampleInput())
	_, _ = svc.CreateListing(ctx, otherDealer, sampleInput())

	res, err := svc.ListForActor(ctx, dealerActor, ports.ListListingsInput{DealerID: "d2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || repo.last.DealerID != "d1" {
		t.Fatalf("dealer must only see own listings, filter=%+v", repo.last)
	}

	res, err = svc.ListForActor(ctx, adminActor, ports.ListListingsInput{Limit: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || res.Limit != maxPageSize {
		t.Fatalf("admin listing: %+v", res)
	}

	if _, err := svc.ListForActor(ctx, visitor, ports.ListListingsInput{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("visitor: expected ErrForbidden, got %v", err)
	}
}

func TestListForActor_DealerWithoutUserIDIsRefused(t *testing.T) {
	svc, repo := newListingFixture()
	ctx := context.Background()
	_, _ = svc.CreateListing(ctx, dealerActor, sampleInput())
	_, _ = svc.CreateListing(ctx, otherDealer, sampleInput())

	cached := ports.Actor{Email: "a@b.com", Role: domain.RoleDealer}
	res, err := svc.ListForActor(ctx, cached, ports.ListListingsInput{})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v (result %+v)", err, res)
	}
	if repo.last.Statuses != nil || repo.last.Limit != 0 {
		t.Fatalf("repository must not be queried, filter=%+v", repo.last)
	}
}

func TestListPublic_RepositoryError(t *testing.T) {
	svc, repo := newListingFixture()
	repo.listErr = errBackendDown

	if _, err := svc.ListPublic(context.Background(), ports.ListListingsInput{}); !errors.Is(err, errBackendDown) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}
