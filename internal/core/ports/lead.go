package ports

import (
	"context"
	"time"

	"github.com/standmarket/marketplace/internal/core/domain"
)

// LeadRepository persists leads.
type LeadRepository interface {
	Insert(ctx context.Context, lead *domain.Lead) error
	// List returns leads, newest first. An empty dealerID lists every lead.
	List(ctx context.Context, dealerID string, page, limit int) ([]*domain.Lead, int64, error)
}

// LeadDedup suppresses repeated submissions of the same lead.
type LeadDedup interface {
	IsDuplicate(ctx context.Context, listingID, email string) (bool, error)
	Mark(ctx context.Context, listingID, email string) error
}

// LeadInput is the lead capture form.
type LeadInput struct {
	ListingID string
	Name      string
	Email     string
	Phone     string
	Message   string
}

// LeadResult reports the outcome of a lead submission.
type LeadResult struct {
	Lead      *domain.Lead
	Duplicate bool
}

// LeadPage is a page of leads.
type LeadPage struct {
	Items      []*domain.Lead
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// LeadService processes lead capture and dashboard lead views.
type LeadService interface {
	Submit(ctx context.Context, in LeadInput) (*LeadResult, error)
	ListForActor(ctx context.Context, actor Actor, page, limit int) (*LeadPage, error)
}

// Notifier delivers an outbound notification.
type Notifier interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// NotificationQueue accepts notifications for asynchronous delivery.
type NotificationQueue interface {
	Enqueue(n domain.Notification)
}

// Clock is injected where tests need deterministic time.
type Clock func() time.Time
