package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/standmarket/marketplace/internal/api/middleware"
	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

const viewPageSize = 12

// ViewHandler renders the page view models. Access has already been
// decided by the route guard; the handlers only shape data.
type ViewHandler struct {
	listings ports.ListingService
	leads    ports.LeadService
	profiles ports.ProfileService
}

func NewViewHandler(listings ports.ListingService, leads ports.LeadService, profiles ports.ProfileService) *ViewHandler {
	return &ViewHandler{listings: listings, leads: leads, profiles: profiles}
}

// Home is the public landing page with the newest listings.
func (h *ViewHandler) Home(c echo.Context) error {
	res, err := h.listings.ListPublic(c.Request().Context(), ports.ListListingsInput{Limit: viewPageSize})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, homeView{
		Session:  toSessionResponse(middleware.StateFrom(c)),
		Listings: toListingList(res).Items,
	})
}

// Login is the user sign-in surface.
func (h *ViewHandler) Login(c echo.Context) error {
	return h.login(c, false)
}

// AdminLogin is the administrator sign-in surface.
func (h *ViewHandler) AdminLogin(c echo.Context) error {
	return h.login(c, true)
}

func (h *ViewHandler) login(c echo.Context, admin bool) error {
	st := middleware.StateFrom(c)
	v := loginView{Session: toSessionResponse(st), Admin: admin}
	if st.LoggedIn {
		v.Redirect = landingFor(st.EffectiveRole())
	}
	return c.JSON(http.StatusOK, v)
}

// Register is the sign-up form.
func (h *ViewHandler) Register(c echo.Context) error {
	return h.form(c, "register")
}

// ForgotPassword is the reset request form.
func (h *ViewHandler) ForgotPassword(c echo.Context) error {
	return h.form(c, "forgot_password")
}

// ResetPassword is the new password form reached from the e-mailed link.
func (h *ViewHandler) ResetPassword(c echo.Context) error {
	return h.form(c, "reset_password")
}

func (h *ViewHandler) form(c echo.Context, name string) error {
	return c.JSON(http.StatusOK, formView{
		Session: toSessionResponse(middleware.StateFrom(c)),
		Form:    name,
		Token:   c.QueryParam("token"),
	})
}

// Dashboard shows a dealer their listings and leads. Pending dealers reach
// it but cannot create listings. Administrators see every listing. A dealer
// restored from the local cache has no user id, so their listings cannot be
// scoped; they get the restricted view until they sign in again.
func (h *ViewHandler) Dashboard(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	v := dashboardView{Session: toSessionResponse(middleware.StateFrom(c))}
	if actor.Role == domain.RoleDealer && actor.UserID == "" {
		v.Restricted = true
		v.Listings = listingListResponse{Items: []listingResponse{}}
		v.Leads = leadListResponse{Items: []leadResponse{}}
		return c.JSON(http.StatusOK, v)
	}

	profile, err := loadProfile(c, h.profiles, actor)
	if err != nil {
		return err
	}
	listings, err := h.listings.ListForActor(ctx, actor, ports.ListListingsInput{Limit: viewPageSize})
	if err != nil {
		return err
	}
	leads, err := h.leads.ListForActor(ctx, actor, 1, viewPageSize)
	if err != nil {
		return err
	}

	v.CanCreateListing = profile.CanCreateListings()
	v.Listings = toListingList(listings)
	v.Leads = toLeadList(leads)
	if profile != nil {
		pr := toProfileResponse(profile, true)
		v.Profile = &pr
	}
	return c.JSON(http.StatusOK, v)
}

// NewListing is the listing creation form.
func (h *ViewHandler) NewListing(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	profile, err := loadProfile(c, h.profiles, actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newListingView{
		Session:          toSessionResponse(middleware.StateFrom(c)),
		CanCreateListing: profile.CanCreateListings(),
		Fuels: []string{
			domain.FuelGasoline, domain.FuelDiesel, domain.FuelElectric, domain.FuelHybrid, domain.FuelLPG,
		},
		Transmissions: []string{"manual", "automatic"},
	})
}

// Admin is the moderation overview: dealers awaiting approval and the
// newest listings in any status.
func (h *ViewHandler) Admin(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	pending, err := h.profiles.ListAll(ctx, string(domain.RoleDealer), string(domain.ProfilePending), 1, viewPageSize)
	if err != nil {
		return err
	}
	listings, err := h.listings.ListForActor(ctx, actor, ports.ListListingsInput{Limit: viewPageSize})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminView{
		Session:        toSessionResponse(middleware.StateFrom(c)),
		PendingDealers: toProfileList(pending, true),
		Listings:       toListingList(listings),
	})
}
