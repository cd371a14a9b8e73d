package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/standmarket/marketplace/internal/api/metrics"
	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

// FreshStates exposes recently written client states.
type FreshStates interface {
	GetFresh(clientKey string, maxAge time.Duration) (domain.SessionState, bool)
}

// Session attaches the client's SessionState to the request. A state written
// within refresh (by a resolution, a login or an auth event) is reused;
// otherwise the resolver runs. It never rejects a request.
func Session(resolver ports.SessionResolver, states FreshStates, refresh time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := ClientKeyFrom(c)
			token := accessToken(c)
			c.Set(ctxAccessToken, token)

			state, ok := states.GetFresh(key, refresh)
			if !ok || key == "" {
				state = resolver.Resolve(c.Request().Context(), key, token)
				metrics.ObserveResolution(state)
			}
			c.Set(ctxSession, state)
			return next(c)
		}
	}
}

// StateFrom returns the state attached by Session, or an anonymous state.
func StateFrom(c echo.Context) domain.SessionState {
	if st, ok := c.Get(ctxSession).(domain.SessionState); ok {
		return st
	}
	return domain.Anonymous()
}

// SetState replaces the request's state, e.g. right after a login.
func SetState(c echo.Context, state domain.SessionState) {
	c.Set(ctxSession, state)
}

// AccessTokenFrom returns the access token seen by Session.
func AccessTokenFrom(c echo.Context) string {
	tok, _ := c.Get(ctxAccessToken).(string)
	return tok
}

// accessToken reads the Bearer header first, then the sv_access cookie.
func accessToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if ck, err := c.Cookie(AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}
