package ports

import (
	"context"

	"github.com/standmarket/marketplace/internal/core/domain"
)

// SessionCache is the local persistent cache holding one raw session record
// per client key.
type SessionCache interface {
	// Get returns the raw record and whether it exists.
	Get(ctx context.Context, clientKey string) (string, bool, error)
	Set(ctx context.Context, clientKey, raw string) error
	Delete(ctx context.Context, clientKey string) error
}

// AuthEventBus carries authentication state changes to every subscriber.
type AuthEventBus interface {
	Publish(ctx context.Context, event domain.AuthEvent) error
	// Subscribe returns the event stream and the function that ends the
	// subscription.
	Subscribe(ctx context.Context) (<-chan domain.AuthEvent, func(), error)
}

// SessionResolver produces the authoritative session state for a client.
type SessionResolver interface {
	Resolve(ctx context.Context, clientKey, accessToken string) domain.SessionState
}

// SessionStates is the container holding the live state of each client.
type SessionStates interface {
	Get(clientKey string) (domain.SessionState, bool)
	Set(clientKey string, state domain.SessionState)
	Clear(clientKey string)
}

// RouteAuthorizer decides render-vs-redirect for a navigation.
type RouteAuthorizer interface {
	Authorize(state domain.SessionState, path string) domain.Decision
	// AuthorizeRequest is Authorize for a specific HTTP method.
	AuthorizeRequest(state domain.SessionState, method, path string) domain.Decision
}
