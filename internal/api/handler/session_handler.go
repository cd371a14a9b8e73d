package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/standmarket/marketplace/internal/api/middleware"
	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

// SessionHandler exposes the resolved session to client-side code.
type SessionHandler struct {
	authorizer ports.RouteAuthorizer
}

func NewSessionHandler(authorizer ports.RouteAuthorizer) *SessionHandler {
	return &SessionHandler{authorizer: authorizer}
}

// Current returns the caller's session state.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	return c.JSON(http.StatusOK, toSessionResponse(middleware.StateFrom(c)))
}

// Authorize answers whether the caller may navigate to path.
//
// @Summary      Authorize a navigation
// @Tags         session
// @Produce      json
// @Param        path    query     string  true   "Target path"
// @Param        method  query     string  false  "HTTP method, GET by default"
// @Success      200     {object}  authorizeResponse
// @Failure      400     {object}  errorResponse
// @Router       /api/authorize [get]
func (h *SessionHandler) Authorize(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" || !strings.HasPrefix(path, "/") {
		return echo.NewHTTPError(http.StatusBadRequest, "path must be an absolute path")
	}
	method := strings.ToUpper(c.QueryParam("method"))
	if method == "" {
		method = http.MethodGet
	}

	d := h.authorizer.AuthorizeRequest(middleware.StateFrom(c), method, path)
	return c.JSON(http.StatusOK, toAuthorizeResponse(path, d))
}

func toAuthorizeResponse(path string, d domain.Decision) authorizeResponse {
	return authorizeResponse{
		Path:     path,
		Allowed:  d.Allowed,
		Access:   string(d.Access),
		Redirect: d.Redirect,
	}
}
