package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/standmarket/marketplace/internal/api/middleware"
	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

// ProfileHandler serves dealer pages, the caller's account and profile
// moderation.
type ProfileHandler struct {
	service ports.ProfileService
}

func NewProfileHandler(service ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// ListDealers returns approved dealers.
//
// @Summary      List dealers
// @Tags         dealers
// @Produce      json
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  profileListResponse
// @Router       /api/dealers [get]
func (h *ProfileHandler) ListDealers(c echo.Context) error {
	res, err := h.service.ListDealers(c.Request().Context(), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileList(res, true))
}

// GetDealer returns one dealer's stand page.
//
// @Summary      Get a dealer
// @Tags         dealers
// @Produce      json
// @Param        id   path      string  true  "Dealer ID"
// @Success      200  {object}  profileResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/dealers/{id} [get]
func (h *ProfileHandler) GetDealer(c echo.Context) error {
	p, err := h.service.GetDealer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(p, true))
}

// Account returns the caller's session and profile. The bypass
// administrator has no profile.
//
// @Summary      Own account
// @Tags         account
// @Produce      json
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/account [get]
func (h *ProfileHandler) Account(c echo.Context) error {
	st := middleware.StateFrom(c)
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	resp := accountResponse{Session: toSessionResponse(st)}
	p, err := loadProfile(c, h.service, actor)
	if err != nil {
		return err
	}
	if p != nil {
		pr := toProfileResponse(p, true)
		resp.Profile = &pr
	}
	return c.JSON(http.StatusOK, resp)
}

// ListAll is the admin moderation list.
//
// @Summary      List profiles
// @Tags         admin
// @Produce      json
// @Param        role    query     string  false  "visitor, stand or admin"
// @Param        status  query     string  false  "pending, approved or suspended"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  profileListResponse
// @Failure      401     {object}  errorResponse
// @Router       /api/admin/profiles [get]
func (h *ProfileHandler) ListAll(c echo.Context) error {
	res, err := h.service.ListAll(c.Request().Context(),
		c.QueryParam("role"), c.QueryParam("status"),
		queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileList(res, true))
}

// SetStatus approves or suspends an account.
//
// @Summary      Moderate a profile
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Profile ID"
// @Param        body  body      profileStatusRequest  true  "New status"
// @Success      200   {object}  profileResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/admin/profiles/{id}/status [patch]
func (h *ProfileHandler) SetStatus(c echo.Context) error {
	var req profileStatusRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p, err := h.service.SetStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(p, true))
}

// loadProfile returns the actor's profile, or nil when they have none.
func loadProfile(c echo.Context, profiles ports.ProfileService, actor ports.Actor) (*domain.Profile, error) {
	if actor.UserID == "" {
		return nil, nil
	}
	p, err := profiles.Get(c.Request().Context(), actor.UserID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil, nil
	}
	return p, err
}
