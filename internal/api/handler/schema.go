package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type pageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// --- Session ---

type sessionResponse struct {
	Role       string `json:"role"`
	IsLoggedIn bool   `json:"is_logged_in"`
	Email      string `json:"email,omitempty"`
	Source     string `json:"source,omitempty"`
}

type authorizeResponse struct {
	Path     string `json:"path"`
	Allowed  bool   `json:"allowed"`
	Access   string `json:"access"`
	Redirect string `json:"redirect,omitempty"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=6"`
	DisplayName string `json:"display_name" validate:"required,max=80"`
	Role        string `json:"role"         validate:"omitempty,oneof=visitor stand dealer"`
	DealerName  string `json:"dealer_name"  validate:"required_if=Role stand,required_if=Role dealer,max=120"`
	Phone       string `json:"phone"        validate:"omitempty,max=32"`
	City        string `json:"city"         validate:"omitempty,max=80"`
}

type authResponse struct {
	AccessToken string          `json:"access_token,omitempty"`
	Session     sessionResponse `json:"session"`
	Redirect    string          `json:"redirect"`
}

type passwordResetRequest struct {
	Email      string `json:"email"       validate:"required,email"`
	RedirectTo string `json:"redirect_to"`
}

type updatePasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type accountUpdateRequest struct {
	DisplayName string `json:"display_name" validate:"omitempty,max=80"`
	Phone       string `json:"phone"        validate:"omitempty,max=32"`
	City        string `json:"city"         validate:"omitempty,max=80"`
	Password    string `json:"password"     validate:"omitempty,min=6"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

// --- Profiles ---

type profileResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	DealerName  string    `json:"dealer_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	City        string    `json:"city,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type profileListResponse struct {
	Items []profileResponse `json:"items"`
	pageMeta
}

type profileStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved suspended"`
}

type accountResponse struct {
	Session sessionResponse  `json:"session"`
	Profile *profileResponse `json:"profile,omitempty"`
}

// --- Listings ---

type listingRequest struct {
	Title        string   `json:"title"        validate:"required,max=120"`
	Make         string   `json:"make"         validate:"required,max=40"`
	Model        string   `json:"model"        validate:"required,max=60"`
	Year         int      `json:"year"         validate:"required,gte=1900,lte=2100"`
	Price        float64  `json:"price"        validate:"required,gt=0"`
	Currency     string   `json:"currency"     validate:"omitempty,len=3"`
	MileageKm    int      `json:"mileage_km"   validate:"gte=0"`
	Fuel         string   `json:"fuel"         validate:"required,oneof=gasoline diesel electric hybrid lpg"`
	Transmission string   `json:"transmission" validate:"omitempty,oneof=manual automatic"`
	Description  string   `json:"description"  validate:"max=5000"`
	Images       []string `json:"images"       validate:"max=30,dive,url"`
}

type listingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active sold archived"`
}

type listingLinks struct {
	Self   string `json:"self"`
	Dealer string `json:"dealer"`
	Leads  string `json:"leads"`
}

type listingResponse struct {
	ID           string       `json:"id"`
	DealerID     string       `json:"dealer_id"`
	Title        string       `json:"title"`
	Make         string       `json:"make"`
	Model        string       `json:"model"`
	Year         int          `json:"year"`
	Price        float64      `json:"price"`
	Currency     string       `json:"currency"`
	MileageKm    int          `json:"mileage_km"`
	Fuel         string       `json:"fuel"`
	Transmission string       `json:"transmission,omitempty"`
	Description  string       `json:"description,omitempty"`
	Images       []string     `json:"images"`
	Status       string       `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Links        listingLinks `json:"_links"`
}

type listingListResponse struct {
	Items []listingResponse `json:"items"`
	pageMeta
}

// --- Leads ---

type leadRequest struct {
	Name    string `json:"name"    validate:"required,max=80"`
	Email   string `json:"email"   validate:"required,email"`
	Phone   string `json:"phone"   validate:"omitempty,max=32"`
	Message string `json:"message" validate:"required,max=2000"`
}

type leadResponse struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type leadListResponse struct {
	Items []leadResponse `json:"items"`
	pageMeta
}

// --- Views ---

type homeView struct {
	Session  sessionResponse   `json:"session"`
	Listings []listingResponse `json:"listings"`
}

type loginView struct {
	Session sessionResponse `json:"session"`
	Admin   bool            `json:"admin"`
	// Redirect is set when the visitor is already signed in.
	Redirect string `json:"redirect,omitempty"`
}

// formView backs the anonymous account forms.
type formView struct {
	Session sessionResponse `json:"session"`
	Form    string          `json:"form"`
	// Token is the reset token carried by the e-mailed link.
	Token string `json:"token,omitempty"`
}

type dashboardView struct {
	Session          sessionResponse  `json:"session"`
	Profile          *profileResponse `json:"profile,omitempty"`
	CanCreateListing bool             `json:"can_create_listing"`
	// Restricted is set when the session carries no user id to scope by.
	Restricted bool                `json:"restricted,omitempty"`
	Listings   listingListResponse `json:"listings"`
	Leads      leadListResponse    `json:"leads"`
}

type newListingView struct {
	Session          sessionResponse `json:"session"`
	CanCreateListing bool            `json:"can_create_listing"`
	Fuels            []string        `json:"fuels"`
	Transmissions    []string        `json:"transmissions"`
}

type adminView struct {
	Session        sessionResponse     `json:"session"`
	PendingDealers profileListResponse `json:"pending_dealers"`
	Listings       listingListResponse `json:"listings"`
}
