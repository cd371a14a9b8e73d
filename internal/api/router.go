package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/standmarket/marketplace/internal/api/handler"
	"github.com/standmarket/marketplace/internal/api/middleware"
	"github.com/standmarket/marketplace/internal/core/ports"
)

const metricsNamespace = "standmarket"

// Deps is everything the HTTP layer needs from the composition root.
type Deps struct {
	Log zerolog.Logger

	Cookies  middleware.CookieConfig
	TokenTTL time.Duration
	// SessionRefresh is how long a stored client state is trusted before
	// the resolver runs again.
	SessionRefresh time.Duration

	Resolver   ports.SessionResolver
	States     middleware.FreshStates
	Authorizer ports.RouteAuthorizer

	Auth     ports.AuthService
	Listings ports.ListingService
	Leads    ports.LeadService
	Profiles ports.ProfileService

	Checks map[string]handler.DependencyCheck

	// Registry receives the HTTP metrics. Nil uses the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsConfig(d.Registry)))

	// --- Operational endpoints (outside the session chain) ---
	health := handler.NewHealthHandler(d.Checks)
	e.GET("/health", health.Liveness)             // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness)      // readiness – are dependencies up?
	e.GET("/metrics", metricsHandler(d.Registry)) // prometheus scrape
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Application routes: client key → session → route guard ---
	app := e.Group("",
		middleware.ClientKey(d.Cookies),
		middleware.Session(d.Resolver, d.States, d.SessionRefresh),
		middleware.Guard(d.Authorizer),
	)

	authH := handler.NewAuthHandler(d.Auth, d.Cookies, d.TokenTTL)
	sessionH := handler.NewSessionHandler(d.Authorizer)
	listingH := handler.NewListingHandler(d.Listings)
	leadH := handler.NewLeadHandler(d.Leads)
	profileH := handler.NewProfileHandler(d.Profiles)
	viewH := handler.NewViewHandler(d.Listings, d.Leads, d.Profiles)

	// views
	app.GET("/", viewH.Home)
	app.GET("/listings", listingH.List)
	app.GET("/listings/:id", listingH.Get)
	app.GET("/dealers", profileH.ListDealers)
	app.GET("/dealers/:id", profileH.GetDealer)
	app.GET("/login", viewH.Login)
	app.GET("/register", viewH.Register)
	app.GET("/forgot-password", viewH.ForgotPassword)
	app.GET("/reset-password", viewH.ResetPassword)
	app.GET("/admin/login", viewH.AdminLogin)
	app.GET("/dashboard", viewH.Dashboard)
	app.GET("/dashboard/listings", listingH.Mine)
	app.GET("/dashboard/listings/new", viewH.NewListing)
	app.GET("/dashboard/leads", leadH.Inbox)
	app.GET("/admin", viewH.Admin)
	app.GET("/admin/listings", listingH.Mine)
	app.GET("/admin/profiles", profileH.ListAll)
	app.GET("/admin/leads", leadH.Inbox)
	app.GET("/account", profileH.Account)

	// session
	app.GET("/api/session", sessionH.Current)
	app.GET("/api/authorize", sessionH.Authorize)

	// auth
	app.POST("/api/auth/login", authH.Login)
	app.POST("/api/auth/register", authH.Register)
	app.POST("/api/auth/logout", authH.Logout)
	app.POST("/api/auth/password-reset", authH.RequestPasswordReset)
	app.POST("/api/auth/password", authH.UpdatePassword)
	app.GET("/api/account", profileH.Account)
	app.PUT("/api/account", authH.UpdateAccount)

	// catalog
	app.GET("/api/listings", listingH.List)
	app.POST("/api/listings", listingH.Create)
	app.GET("/api/listings/:id", listingH.Get)
	app.PUT("/api/listings/:id", listingH.Update)
	app.DELETE("/api/listings/:id", listingH.Delete)
	app.PATCH("/api/listings/:id/status", listingH.ChangeStatus)
	app.POST("/api/listings/:id/leads", leadH.Submit)
	app.GET("/api/dealers", profileH.ListDealers)
	app.GET("/api/dealers/:id", profileH.GetDealer)

	// dealer dashboard
	app.GET("/api/dashboard/listings", listingH.Mine)
	app.GET("/api/dashboard/leads", leadH.Inbox)

	// administration
	app.GET("/api/admin/listings", listingH.Mine)
	app.GET("/api/admin/leads", leadH.Inbox)
	app.GET("/api/admin/profiles", profileH.ListAll)
	app.PATCH("/api/admin/profiles/:id/status", profileH.SetStatus)

	return e
}

func metricsConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{
		Namespace: metricsNamespace,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
