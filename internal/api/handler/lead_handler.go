package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/standmarket/marketplace/internal/api/metrics"
	"github.com/standmarket/marketplace/internal/core/ports"
)

// LeadHandler handles lead capture and the dealer lead inbox.
type LeadHandler struct {
	service ports.LeadService
}

func NewLeadHandler(service ports.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

// Submit records a visitor's contact request on a listing. A repeated
// submission is acknowledged with 202 and not stored again.
//
// @Summary      Contact the dealer
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Listing ID"
// @Param        body  body      leadRequest  true  "Contact form"
// @Success      201   {object}  leadResponse
// @Success      202   {object}  acceptedResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/listings/{id}/leads [post]
func (h *LeadHandler) Submit(c echo.Context) error {
	var req leadRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res, err := h.service.Submit(c.Request().Context(), ports.LeadInput{
		ListingID: c.Param("id"),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
	})
	if err != nil {
		metrics.LeadsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	if res.Duplicate {
		metrics.LeadsTotal.WithLabelValues("duplicate").Inc()
		return c.JSON(http.StatusAccepted, acceptedResponse{Message: "your message was already sent to the dealer"})
	}
	metrics.LeadsTotal.WithLabelValues("stored").Inc()
	return c.JSON(http.StatusCreated, toLeadResponse(res.Lead))
}

// Inbox lists leads: a dealer sees leads on their own listings, an
// administrator sees every lead.
//
// @Summary      Lead inbox
// @Tags         dashboard
// @Produce      json
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  leadListResponse
// @Failure      401    {object}  errorResponse
// @Router       /api/dashboard/leads [get]
// @Router       /api/admin/leads [get]
func (h *LeadHandler) Inbox(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	res, err := h.service.ListForActor(c.Request().Context(), actor, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLeadList(res))
}
