package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

// --- Request → Service input ---

func toListingInput(req listingRequest) ports.ListingInput {
	return ports.ListingInput{
		Title:        req.Title,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Price:        req.Price,
		Currency:     req.Currency,
		MileageKm:    req.MileageKm,
		Fuel:         req.Fuel,
		Transmission: req.Transmission,
		Description:  req.Description,
		Images:       req.Images,
	}
}

// toListQuery reads the catalog filters from the query string. Malformed
// numbers are ignored rather than rejected.
func toListQuery(c echo.Context) ports.ListListingsInput {
	return ports.ListListingsInput{
		DealerID: c.QueryParam("dealer_id"),
		Status:   c.QueryParam("status"),
		Make:     c.QueryParam("make"),
		Fuel:     c.QueryParam("fuel"),
		Search:   c.QueryParam("q"),
		PriceMin: queryFloat(c, "price_min"),
		PriceMax: queryFloat(c, "price_max"),
		YearMin:  queryInt(c, "year_min"),
		YearMax:  queryInt(c, "year_max"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	}
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

func queryFloat(c echo.Context, name string) float64 {
	f, _ := strconv.ParseFloat(c.QueryParam(name), 64)
	return f
}

// --- Service result → HTTP response ---

func toSessionResponse(st domain.SessionState) sessionResponse {
	resp := sessionResponse{
		Role:       st.EffectiveRole().String(),
		IsLoggedIn: st.LoggedIn,
		Email:      st.Email(),
	}
	if st.Session != nil {
		resp.Source = string(st.Session.Source)
	}
	return resp
}

func toActor(st domain.SessionState) ports.Actor {
	a := ports.Actor{Role: st.EffectiveRole()}
	if st.Session != nil {
		a.UserID = st.Session.UserID
		a.Email = st.Session.Email
	}
	return a
}

// landingFor is where a freshly signed-in user is sent.
func landingFor(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "/admin"
	case domain.RoleDealer:
		return "/dashboard"
	default:
		return domain.PublicRootPath
	}
}

func toListingResponse(l *domain.Listing) listingResponse {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return listingResponse{
		ID:           l.ID,
		DealerID:     l.DealerID,
		Title:        l.Title,
		Make:         l.Make,
		Model:        l.Model,
		Year:         l.Year,
		Price:        l.Price,
		Currency:     l.Currency,
		MileageKm:    l.MileageKm,
		Fuel:         l.Fuel,
		Transmission: l.Transmission,
		Description:  l.Description,
		Images:       images,
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt.UTC(),
		UpdatedAt:    l.UpdatedAt.UTC(),
		Links: listingLinks{
			Self:   "/api/listings/" + l.ID,
			Dealer: "/api/dealers/" + l.DealerID,
			Leads:  "/api/listings/" + l.ID + "/leads",
		},
	}
}

func toListingList(r *ports.ListListingsResult) listingListResponse {
	items := make([]listingResponse, 0, len(r.Items))
	for _, l := range r.Items {
		items = append(items, toListingResponse(l))
	}
	return listingListResponse{
		Items:    items,
		pageMeta: pageMeta{Page: r.Page, Limit: r.Limit, Total: r.Total, TotalPages: r.TotalPages},
	}
}

func toProfileResponse(p *domain.Profile, withContact bool) profileResponse {
	resp := profileResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Role:        p.Role.String(),
		DealerName:  p.DealerName,
		City:        p.City,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt.UTC(),
	}
	if withContact {
		resp.Email = p.Email
		resp.Phone = p.Phone
	}
	return resp
}

func toProfileList(r *ports.ProfilePage, withContact bool) profileListResponse {
	items := make([]profileResponse, 0, len(r.Items))
	for _, p := range r.Items {
		items = append(items, toProfileResponse(p, withContact))
	}
	return profileListResponse{
		Items:    items,
		pageMeta: pageMeta{Page: r.Page, Limit: r.Limit, Total: r.Total, TotalPages: r.TotalPages},
	}
}

func toLeadResponse(l *domain.Lead) leadResponse {
	return leadResponse{
		ID:        l.ID,
		ListingID: l.ListingID,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Message:   l.Message,
		CreatedAt: l.CreatedAt.UTC(),
	}
}

func toLeadList(r *ports.LeadPage) leadListResponse {
	items := make([]leadResponse, 0, len(r.Items))
	for _, l := range r.Items {
		items = append(items, toLeadResponse(l))
	}
	return leadListResponse{
		Items:    items,
		pageMeta: pageMeta{Page: r.Page, Limit: r.Limit, Total: r.Total, TotalPages: r.TotalPages},
	}
}
