package service

import (
	"context"
	"errors"
	"testing"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

type leadFixture struct {
	svc      ports.LeadService
	leads    *stubLeadRepo
	listings *stubListingRepo
	dedup    *stubDedup
	queue    *stubQueue
}

func newLeadFixture() *leadFixture {
	f := &leadFixture{
		leads:    &stubLeadRepo{},
		listings: newStubListingRepo(),
		dedup:    &stubDedup{},
		queue:    &stubQueue{},
	}
	profiles := newStubProfileRepo(&domain.Profile{ID: "d1", Email: "stand@cars.pt", Role: domain.RoleDealer, Status: domain.ProfileApproved})
	f.listings.byID["lst_1"] = &domain.Listing{ID: "lst_1", DealerID: "d1", Title: "Golf VII", Status: domain.ListingActive}
	f.listings.byID["lst_2"] = &domain.Listing{ID: "lst_2", DealerID: "d1", Title: "Clio", Status: domain.ListingSold}
	f.listings.byID["lst_3"] = &domain.Listing{ID: "lst_3", DealerID: "ghost", Title: "Panda", Status: domain.ListingActive}
	f.svc = NewLeadService(f.leads, f.listings, profiles, f.dedup, f.queue, discardLogger)
	return f
}

func leadInput(listingID string) ports.LeadInput {
	return ports.LeadInput{ListingID: listingID, Name: " Rui ", Email: "Rui@Mail.pt", Message: "Still available?"}
}

func TestSubmitLead_Success(t *testing.T) {
	f := newLeadFixture()

	res, err := f.svc.Submit(context.Background(), leadInput("lst_1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Duplicate || res.Lead == nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Lead.DealerID != "d1" || res.Lead.Email != "rui@mail.pt" || res.Lead.Name != "Rui" {
		t.Fatalf("lead not normalised: %+v", res.Lead)
	}
	if len(f.dedup.marked) != 1 || f.dedup.marked[0] != "lst_1:rui@mail.pt" {
		t.Fatalf("dedup key not marked: %v", f.dedup.marked)
	}
	if len(f.queue.sent) != 1 || f.queue.sent[0].Recipient != "stand@cars.pt" || f.queue.sent[0].Kind != domain.NotifyLeadReceived {
		t.Fatalf("dealer not notified: %+v", f.queue.sent)
	}
}

func TestSubmitLead_Duplicate(t *testing.T) {
	f := newLeadFixture()
	f.dedup.dupResult = true

	res, err := f.svc.Submit(context.Background(), leadInput("lst_1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Duplicate || len(f.leads.inserted) != 0 || len(f.queue.sent) != 0 {
		t.Fatalf("duplicate must not be stored or notified: %+v", res)
	}
}

func TestSubmitLead_DedupErrorStillStores(t *testing.T) {
	f := newLeadFixture()
	f.dedup.dupErr = errBackendDown

	if _, err := f.svc.Submit(context.Background(), leadInput("lst_1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.leads.inserted) != 1 {
		t.Fatalf("lead should be stored when dedup is unavailable")
	}
}

func TestSubmitLead_ListingNotOnSale(t *testing.T) {
	f := newLeadFixture()
	ctx := context.Background()

	if _, err := f.svc.Submit(ctx, leadInput("lst_2")); !errors.Is(err, domain.ErrListingNotFound) {
		t.Fatalf("sold listing: expected ErrListingNotFound, got %v", err)
	}
	if _, err := f.svc.Submit(ctx, leadInput("nope")); !errors.Is(err, domain.ErrListingNotFound) {
		t.Fatalf("missing listing: expected ErrListingNotFound, got %v", err)
	}
}

func TestSubmitLead_MissingDealerProfileSkipsNotification(t *testing.T) {
	f := newLeadFixture()

	if _, err := f.svc.Submit(context.Background(), leadInput("lst_3")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.leads.inserted) != 1 || len(f.queue.sent) != 0 {
		t.Fatalf("expected stored lead without notification")
	}
}

func TestSubmitLead_InsertError(t *testing.T) {
	f := newLeadFixture()
	f.leads.insertErr = errBackendDown

	if _, err := f.svc.Submit(context.Background(), leadInput("lst_1")); !errors.Is(err, errBackendDown) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if len(f.dedup.marked) != 0 {
		t.Fatalf("dedup key must not be set for unsaved leads")
	}
}

func TestListLeads_Scoping(t *testing.T) {
	f := newLeadFixture()
	ctx := context.Background()
	_, _ = f.svc.Submit(ctx, leadInput("lst_1"))
	_, _ = f.svc.Submit(ctx, leadInput("lst_3"))

	page, err := f.svc.ListForActor(ctx, dealerActor, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 1 || page.Page != 1 || page.Limit != defaultPageSize {
		t.Fatalf("unexpected dealer page: %+v", page)
	}

	page, err = f.svc.ListForActor(ctx, adminActor, 1, 10)
	if err != nil || page.Total != 2 {
		t.Fatalf("admin should see all leads: %v %+v", err, page)
	}

	if _, err := f.svc.ListForActor(ctx, visitor, 1, 10); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("visitor: expected ErrForbidden, got %v", err)
	}
}
