package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/standmarket/marketplace/internal/api/metrics"
	"github.com/standmarket/marketplace/internal/core/ports"
)

type deniedResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

// Guard enforces the route table. Denied navigations are redirected to the
// decision's login surface; denied API calls get 401 with the same target
// in Location and the body.
func Guard(authz ports.RouteAuthorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			decision := authz.AuthorizeRequest(StateFrom(c), req.Method, path)

			outcome := "allowed"
			if !decision.Allowed {
				outcome = "denied"
			}
			metrics.RouteDecisionsTotal.WithLabelValues(string(decision.Access), outcome).Inc()

			if decision.Allowed {
				return next(c)
			}
			if isAPIPath(path) {
				c.Response().Header().Set(echo.HeaderLocation, decision.Redirect)
				return c.JSON(http.StatusUnauthorized, deniedResponse{Error: "unauthorized", Redirect: decision.Redirect})
			}
			return c.Redirect(http.StatusFound, decision.Redirect)
		}
	}
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
