package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

// SessionResolver reconciles the remote session and the local cache into a
// single SessionState per client, and keeps it current from auth events.
type SessionResolver struct {
	gateway ports.AuthGateway
	cache   ports.SessionCache
	bus     ports.AuthEventBus
	states  ports.SessionStates
	policy  *AdminPolicy
	log     zerolog.Logger

	mu          sync.Mutex
	unsubscribe func()
	done        chan struct{}

	// signedOut holds client keys whose cache record could not be deleted
	// at sign-out. Such clients resolve anonymous until the record is gone.
	signedOutMu sync.Mutex
	signedOut   map[string]struct{}
}

func NewSessionResolver(
	gateway ports.AuthGateway,
	cache ports.SessionCache,
	bus ports.AuthEventBus,
	states ports.SessionStates,
	policy *AdminPolicy,
	log zerolog.Logger,
) *SessionResolver {
	return &SessionResolver{
		gateway:   gateway,
		cache:     cache,
		bus:       bus,
		states:    states,
		policy:    policy,
		log:       log,
		signedOut: make(map[string]struct{}),
	}
}

// Resolve determines the state for clientKey and stores it. A remote session
// takes precedence and skips the cache; remote failures fall back to the cache.
func (r *SessionResolver) Resolve(ctx context.Context, clientKey, accessToken string) domain.SessionState {
	state := r.resolve(ctx, clientKey, accessToken)
	r.states.Set(clientKey, state)
	return state
}

func (r *SessionResolver) resolve(ctx context.Context, clientKey, accessToken string) domain.SessionState {
	if accessToken != "" {
		remote, err := r.gateway.GetSession(ctx, accessToken)
		switch {
		case err != nil:
			r.log.Warn().Err(err).Str("client", clientKey).Msg("remote session check failed, using local cache")
		case remote != nil:
			return domain.StateFor(r.SessionFromRemote(remote))
		}
	}
	return r.restoreFromCache(ctx, clientKey)
}

// SessionFromRemote converts a remote session, reading the metadata role
// claim and applying the administrator override.
func (r *SessionResolver) SessionFromRemote(remote *domain.RemoteSession) *domain.Session {
	role := r.policy.ApplyOverride(domain.ParseRole(remote.MetadataRole), remote.Email)
	issued := remote.IssuedAt
	if issued.IsZero() {
		issued = time.Now().UTC()
	}
	return &domain.Session{
		UserID:   remote.UserID,
		Email:    remote.Email,
		Role:     role,
		Source:   domain.SourceRemote,
		IssuedAt: issued,
	}
}

func (r *SessionResolver) restoreFromCache(ctx context.Context, clientKey string) domain.SessionState {
	if r.pendingSignOut(clientKey) {
		if err := r.DiscardCache(ctx, clientKey); err != nil {
			r.log.Warn().Err(err).Str("client", clientKey).Msg("signed-out cache record still present")
		}
		return domain.Anonymous()
	}

	raw, found, err := r.cache.Get(ctx, clientKey)
	if err != nil {
		r.log.Warn().Err(err).Str("client", clientKey).Msg("session cache read failed")
		return domain.Anonymous()
	}
	if !found {
		return domain.Anonymous()
	}

	cached, err := domain.DecodeCachedSession(raw)
	if err != nil {
		if delErr := r.cache.Delete(ctx, clientKey); delErr != nil {
			r.log.Error().Err(delErr).Str("client", clientKey).Msg("failed to delete corrupt session cache record")
		}
		r.log.Info().Err(err).Str("client", clientKey).Msg("discarded corrupt session cache record")
		return domain.Anonymous()
	}

	return domain.StateFor(&domain.Session{
		Email:    cached.Email,
		Role:     r.policy.ApplyOverride(domain.ParseRole(cached.Role), cached.Email),
		Source:   domain.SourceLocalCache,
		IssuedAt: time.UnixMilli(cached.Timestamp).UTC(),
	})
}

// WriteCache stores sess as the client's local cache record.
func (r *SessionResolver) WriteCache(ctx context.Context, clientKey string, sess *domain.Session) error {
	raw, err := domain.NewCachedSession(sess).Encode()
	if err != nil {
		return err
	}
	if err := r.cache.Set(ctx, clientKey, raw); err != nil {
		return fmt.Errorf("write session cache: %w", err)
	}
	r.markSignedOut(clientKey, false)
	return nil
}

// DiscardCache deletes the client's cache record. If the delete fails the
// client is held anonymous and the delete is retried on each resolution
// until it succeeds or a new record is written.
func (r *SessionResolver) DiscardCache(ctx context.Context, clientKey string) error {
	if err := r.cache.Delete(ctx, clientKey); err != nil {
		r.markSignedOut(clientKey, true)
		return fmt.Errorf("delete session cache: %w", err)
	}
	r.markSignedOut(clientKey, false)
	return nil
}

func (r *SessionResolver) markSignedOut(clientKey string, pending bool) {
	r.signedOutMu.Lock()
	defer r.signedOutMu.Unlock()
	if pending {
		r.signedOut[clientKey] = struct{}{}
		return
	}
	delete(r.signedOut, clientKey)
}

func (r *SessionResolver) pendingSignOut(clientKey string) bool {
	r.signedOutMu.Lock()
	defer r.signedOutMu.Unlock()
	_, ok := r.signedOut[clientKey]
	return ok
}

// Start subscribes to auth events. Call Stop to end the subscription.
func (r *SessionResolver) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unsubscribe != nil {
		return errors.New("session resolver already started")
	}

	events, unsubscribe, err := r.bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe auth events: %w", err)
	}
	r.unsubscribe = unsubscribe
	r.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				r.HandleEvent(ev)
			}
		}
	}(r.done)
	return nil
}

// Stop ends the auth event subscription and waits for the event loop.
func (r *SessionResolver) Stop() {
	r.mu.Lock()
	unsubscribe, done := r.unsubscribe, r.done
	r.unsubscribe, r.done = nil, nil
	r.mu.Unlock()

	if unsubscribe == nil {
		return
	}
	unsubscribe()
	<-done
}

// HandleEvent applies one auth event to the state container.
func (r *SessionResolver) HandleEvent(ev domain.AuthEvent) {
	if ev.ClientKey == "" {
		return
	}
	switch ev.Type {
	case domain.AuthSignedIn:
		if ev.Session == nil || ev.Session.Email == "" {
			r.log.Debug().Str("client", ev.ClientKey).Msg("signed-in event without identity ignored")
			return
		}
		r.states.Set(ev.ClientKey, domain.StateFor(r.SessionFromRemote(ev.Session)))
	case domain.AuthSignedOut:
		r.states.Set(ev.ClientKey, domain.Anonymous())
	default:
		return
	}
	r.log.Debug().Str("client", ev.ClientKey).Str("event", string(ev.Type)).Msg("auth event applied")
}
