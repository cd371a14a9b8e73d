package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

var discardLogger = zerolog.Nop()

var errBackendDown = errors.New("backend unreachable")

// ---------------------------------------------------------------------------
// Identity gateway
// ---------------------------------------------------------------------------

type stubGateway struct {
	sessions     map[string]*domain.RemoteSession // access token → session
	getErr       error
	signInFn     func(email, password string) (string, *domain.RemoteSession, error)
	signUpFn     func(in domain.SignUpInput) (string, *domain.RemoteSession, error)
	signOutErr   error
	signedOut    []string
	updateUserFn func(token string, u domain.UserUpdate) (*domain.User, error)
	resetFn      func(email string) (*domain.PasswordReset, error)
	updatePwFn   func(token, pw string) (*domain.User, error)
	getCalls     int
}

func newStubGateway() *stubGateway {
	return &stubGateway{sessions: make(map[string]*domain.RemoteSession)}
}

func (g *stubGateway) SignIn(_ context.Context, email, password string) (string, *domain.RemoteSession, error) {
	if g.signInFn == nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	return g.signInFn(email, password)
}

func (g *stubGateway) SignUp(_ context.Context, in domain.SignUpInput) (string, *domain.RemoteSession, error) {
	return g.signUpFn(in)
}

func (g *stubGateway) SignOut(_ context.Context, token string) error {
	g.signedOut = append(g.signedOut, token)
	delete(g.sessions, token)
	return g.signOutErr
}

func (g *stubGateway) GetSession(_ context.Context, token string) (*domain.RemoteSession, error) {
	g.getCalls++
	if g.getErr != nil {
		return nil, g.getErr
	}
	return g.sessions[token], nil
}

func (g *stubGateway) UpdateUser(_ context.Context, token string, u domain.UserUpdate) (*domain.User, error) {
	return g.updateUserFn(token, u)
}

func (g *stubGateway) RequestPasswordReset(_ context.Context, email string) (*domain.PasswordReset, error) {
	return g.resetFn(email)
}

func (g *stubGateway) UpdatePassword(_ context.Context, token, pw string) (*domain.User, error) {
	return g.updatePwFn(token, pw)
}

// ---------------------------------------------------------------------------
// Session cache and event bus
// ---------------------------------------------------------------------------

type stubCache struct {
	records   map[string]string
	getErr    error
	setErr    error
	deleteErr error
	deleted   []string
}

func newStubCache() *stubCache {
	return &stubCache{records: make(map[string]string)}
}

func (c *stubCache) Get(_ context.Context, key string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	raw, ok := c.records[key]
	return raw, ok, nil
}

func (c *stubCache) Set(_ context.Context, key, raw string) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.records[key] = raw
	return nil
}

func (c *stubCache) Delete(_ context.Context, key string) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	c.deleted = append(c.deleted, key)
	delete(c.records, key)
	return nil
}

type stubBus struct {
	mu           sync.Mutex
	published    []domain.AuthEvent
	ch           chan domain.AuthEvent
	unsubscribed bool
}

func newStubBus() *stubBus {
	return &stubBus{ch: make(chan domain.AuthEvent, 16)}
}

func (b *stubBus) Publish(_ context.Context, ev domain.AuthEvent) error {
	b.mu.Lock()
	b.published = append(b.published, ev)
	b.mu.Unlock()
	return nil
}

func (b *stubBus) Subscribe(context.Context) (<-chan domain.AuthEvent, func(), error) {
	var once sync.Once
	return b.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			b.unsubscribed = true
			b.mu.Unlock()
			close(b.ch)
		})
	}, nil
}

func (b *stubBus) events() []domain.AuthEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.AuthEvent(nil), b.published...)
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

type stubProfileRepo struct {
	byID      map[string]*domain.Profile
	createErr error
}

func newStubProfileRepo(profiles ...*domain.Profile) *stubProfileRepo {
	r := &stubProfileRepo{byID: make(map[string]*domain.Profile)}
	for _, p := range profiles {
		clone := *p
		r.byID[p.ID] = &clone
	}
	return r
}

func (r *stubProfileRepo) Create(_ context.Context, p *domain.Profile) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProfileRepo) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProfileRepo) Update(_ context.Context, p *domain.Profile) error {
	if _, ok := r.byID[p.ID]; !ok {
		return domain.ErrProfileNotFound
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProfileRepo) List(_ context.Context, role domain.Role, status domain.ProfileStatus, page, limit int) ([]*domain.Profile, int64, error) {
	var out []*domain.Profile
	for _, p := range r.byID {
		if role != "" && p.Role != role {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, page, limit), int64(len(out)), nil
}

type stubListingRepo struct {
	byID    map[string]*domain.Listing
	nextID  int
	listErr error
	last    ports.ListListingsFilter
}

func newStubListingRepo() *stubListingRepo {
	return &stubListingRepo{byID: make(map[string]*domain.Listing)}
}

func (r *stubListingRepo) Create(_ context.Context, l *domain.Listing) error {
	r.nextID++
	l.ID = fmt.Sprintf("lst_%03d", r.nextID)
	clone := *l
	r.byID[l.ID] = &clone
	return nil
}

func (r *stubListingRepo) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	l, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *stubListingRepo) Update(_ context.Context, l *domain.Listing) error {
	if _, ok := r.byID[l.ID]; !ok {
		return domain.ErrListingNotFound
	}
	clone := *l
	r.byID[l.ID] = &clone
	return nil
}

func (r *stubListingRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrListingNotFound
	}
	delete(r.byID, id)
	return nil
}

// List applies the same filters the Mongo repository does.
func (r *stubListingRepo) List(_ context.Context, f ports.ListListingsFilter) ([]*domain.Listing, int64, error) {
	r.last = f
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	var matched []*domain.Listing
	for _, l := range r.byID {
		if f.DealerID != "" && l.DealerID != f.DealerID {
			continue
		}
		if len(f.Statuses) > 0 && !contains(f.Statuses, string(l.Status)) {
			continue
		}
		if f.Make != "" && !strings.EqualFold(l.Make, f.Make) {
			continue
		}
		if f.Fuel != "" && l.Fuel != f.Fuel {
			continue
		}
		if f.PriceMin > 0 && l.Price < f.PriceMin {
			continue
		}
		if f.PriceMax > 0 && l.Price > f.PriceMax {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(l.Title+" "+l.Make+" "+l.Model), q) {
				continue
			}
		}
		clone := *l
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, f.Page, f.Limit), int64(len(matched)), nil
}

type stubLeadRepo struct {
	inserted  []*domain.Lead
	insertErr error
}

func (r *stubLeadRepo) Insert(_ context.Context, l *domain.Lead) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	l.ID = "lead_" + l.ListingID
	clone := *l
	r.inserted = append(r.inserted, &clone)
	return nil
}

func (r *stubLeadRepo) List(_ context.Context, dealerID string, page, limit int) ([]*domain.Lead, int64, error) {
	var out []*domain.Lead
	for _, l := range r.inserted {
		if dealerID != "" && l.DealerID != dealerID {
			continue
		}
		out = append(out, l)
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

type stubDedup struct {
	dupResult bool
	dupErr    error
	markErr   error
	marked    []string
}

func (d *stubDedup) IsDuplicate(_ context.Context, listingID, email string) (bool, error) {
	return d.dupResult, d.dupErr
}

func (d *stubDedup) Mark(_ context.Context, listingID, email string) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.marked = append(d.marked, listingID+":"+email)
	return nil
}

type stubQueue struct {
	sent []domain.Notification
}

func (q *stubQueue) Enqueue(n domain.Notification) {
	q.sent = append(q.sent, n)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	skip := (page - 1) * limit
	if skip < 0 {
		skip = 0
	}
	if skip > len(items) {
		return []T{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
