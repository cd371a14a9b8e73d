package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/standmarket/marketplace/internal/api/middleware"
	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

// ctxActor returns the signed-in actor and fails fast for anonymous
// requests. The route guard normally rejects those first; this covers
// handlers mounted on public routes.
func ctxActor(c echo.Context) (ports.Actor, error) {
	st := middleware.StateFrom(c)
	if !st.LoggedIn {
		return ports.Actor{}, domain.ErrNotAuthenticated
	}
	return toActor(st), nil
}

// bindValid binds the request body into req and validates it.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errBadPayload
	}
	if err := c.Validate(req); err != nil {
		return unprocessable(err)
	}
	return nil
}
