package domain

// Access is the requirement a route places on the resolved session.
type Access string

const (
	AccessPublic        Access = "public"
	AccessAuthenticated Access = "authenticated"
	AccessDealerOrAdmin Access = "dealer_or_admin"
	AccessDealerOnly    Access = "dealer_only"
	AccessAdminOnly     Access = "admin_only"
)

// Login surfaces a denied navigation is sent to.
const (
	LoginPath      = "/login"
	AdminLoginPath = "/admin/login"
	PublicRootPath = "/"
)

// Decision is the outcome of authorizing one navigation.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
	Access   Access `json:"access"`
}
