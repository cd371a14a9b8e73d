package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/standmarket/marketplace/internal/api/metrics"
	"github.com/standmarket/marketplace/internal/core/ports"
)

// ListingHandler handles HTTP requests for car listings.
type ListingHandler struct {
	service ports.ListingService
}

func NewListingHandler(service ports.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// List returns the public catalog. Only active listings are shown.
//
// @Summary      Browse listings
// @Tags         listings
// @Produce      json
// @Param        dealer_id  query     string  false  "Dealer"
// @Param        make       query     string  false  "Make"
// @Param        fuel       query     string  false  "Fuel"
// @Param        q          query     string  false  "Free text on title, make and model"
// @Param        price_min  query     number  false  "Minimum price"
// @Param        price_max  query     number  false  "Maximum price"
// @Param        year_min   query     int     false  "Minimum year"
// @Param        year_max   query     int     false  "Maximum year"
// @Param        page       query     int     false  "Page (1-based)"
// @Param        limit      query     int     false  "Page size (max 100)"
// @Success      200        {object}  listingListResponse
// @Router       /api/listings [get]
func (h *ListingHandler) List(c echo.Context) error {
	res, err := h.service.ListPublic(c.Request().Context(), toListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingList(res))
}

// Get returns a single listing.
//
// @Summary      Get a listing
// @Tags         listings
// @Produce      json
// @Param        id   path      string  true  "Listing ID"
// @Success      200  {object}  listingResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/listings/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	l, err := h.service.GetListing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

// Create publishes a listing for the signed-in dealer.
//
// @Summary      Create a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        body  body      listingRequest  true  "Listing"
// @Success      201   {object}  listingResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/listings [post]
func (h *ListingHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req listingRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	l, err := h.service.CreateListing(c.Request().Context(), actor, toListingInput(req))
	if err != nil {
		return err
	}
	metrics.ListingsCreatedTotal.WithLabelValues(l.Fuel).Inc()
	return c.JSON(http.StatusCreated, toListingResponse(l))
}

// Update replaces the editable fields of a listing.
//
// @Summary      Update a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Listing ID"
// @Param        body  body      listingRequest  true  "Listing"
// @Success      200   {object}  listingResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/listings/{id} [put]
func (h *ListingHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req listingRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	l, err := h.service.UpdateListing(c.Request().Context(), actor, c.Param("id"), toListingInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

// ChangeStatus moves a listing through its lifecycle.
//
// @Summary      Change listing status
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Listing ID"
// @Param        body  body      listingStatusRequest  true  "New status"
// @Success      200   {object}  listingResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/listings/{id}/status [patch]
func (h *ListingHandler) ChangeStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req listingStatusRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	l, err := h.service.ChangeStatus(c.Request().Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

// Delete removes a listing.
//
// @Summary      Delete a listing
// @Tags         listings
// @Param        id   path  string  true  "Listing ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/listings/{id} [delete]
func (h *ListingHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteListing(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Mine lists the caller's listings in any status: a dealer sees their own,
// an administrator sees all of them.
//
// @Summary      Dashboard listings
// @Tags         dashboard
// @Produce      json
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  listingListResponse
// @Failure      401     {object}  errorResponse
// @Router       /api/dashboard/listings [get]
// @Router       /api/admin/listings [get]
func (h *ListingHandler) Mine(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	res, err := h.service.ListForActor(c.Request().Context(), actor, toListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingList(res))
}
