package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/standmarket/marketplace/internal/api/middleware"
	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

type stubAuthService struct {
	loginFn    func(ctx context.Context, clientKey, email, password string) (*ports.LoginResult, error)
	registerFn func(ctx context.Context, clientKey string, in ports.RegisterInput) (*ports.LoginResult, error)
	resetFn    func(ctx context.Context, email, redirectTo string) error
	passwordFn func(ctx context.Context, token, password string) error
	accountFn  func(ctx context.Context, accessToken string, in ports.AccountUpdateInput) (*domain.Profile, error)

	loggedOut []string
}

func (s *stubAuthService) Login(ctx context.Context, clientKey, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, clientKey, email, password)
}

func (s *stubAuthService) Register(ctx context.Context, clientKey string, in ports.RegisterInput) (*ports.LoginResult, error) {
	return s.registerFn(ctx, clientKey, in)
}

func (s *stubAuthService) Logout(_ context.Context, clientKey, accessToken string) {
	s.loggedOut = append(s.loggedOut, clientKey+"|"+accessToken)
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	return s.resetFn(ctx, email, redirectTo)
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, token, password string) error {
	return s.passwordFn(ctx, token, password)
}

func (s *stubAuthService) UpdateAccount(ctx context.Context, accessToken string, in ports.AccountUpdateInput) (*domain.Profile, error) {
	return s.accountFn(ctx, accessToken, in)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// jsonContext builds a context that already carries a client key, as the
// ClientKey middleware would have left it.
func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("client_key", "client-1")
	return c, rec
}

func dealerState() domain.SessionState {
	return domain.StateFor(&domain.Session{
		UserID: "u-dealer",
		Email:  "stand@autos.pt",
		Role:   domain.RoleDealer,
		Source: domain.SourceRemote,
	})
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestAuthHandler_Login_SetsAccessCookie(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, clientKey, email, password string) (*ports.LoginResult, error) {
			if clientKey != "client-1" || email != "stand@autos.pt" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s %s", clientKey, email, password)
			}
			return &ports.LoginResult{AccessToken: "tok-1", State: dealerState()}, nil
		},
	}
	h := NewAuthHandler(stub, middleware.CookieConfig{Secure: true}, time.Hour)

	c, rec := jsonContext(e, http.MethodPost, "/api/auth/login", `{"email":"stand@autos.pt","password":"secret1"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Redirect != "/dashboard" || resp.Session.Role != "stand" || !resp.Session.IsLoggedIn {
		t.Fatalf("unexpected response: %+v", resp)
	}

	ck := findCookie(rec, middleware.AccessCookie)
	if ck == nil || ck.Value != "tok-1" || !ck.HttpOnly || !ck.Secure || ck.MaxAge != 3600 {
		t.Fatalf("unexpected access cookie: %+v", ck)
	}
	if st := middleware.StateFrom(c); !st.LoggedIn || st.Role != domain.RoleDealer {
		t.Fatalf("request state not updated: %+v", st)
	}
}

func TestAuthHandler_Login_BypassHasNoCookie(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string, string) (*ports.LoginResult, error) {
			return &ports.LoginResult{State: domain.StateFor(&domain.Session{Email: "root@standmarket.pt", Role: domain.RoleAdmin})}, nil
		},
	}
	h := NewAuthHandler(stub, middleware.CookieConfig{}, time.Hour)

	c, rec := jsonContext(e, http.MethodPost, "/api/auth/login", `{"email":"root@standmarket.pt","password":"x"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if findCookie(rec, middleware.AccessCookie) != nil {
		t.Fatal("bypass login must not set an access cookie")
	}
	if !strings.Contains(rec.Body.String(), `"redirect":"/admin"`) {
		t.Fatalf("expected admin landing, got %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, middleware.CookieConfig{}, time.Hour)

	c, _ := jsonContext(e, http.MethodPost, "/api/auth/login", `{"email":"a@b.pt","password":"nope"}`)
	if err := h.Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_ValidationError(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, middleware.CookieConfig{}, time.Hour)

	c, _ := jsonContext(e, http.MethodPost, "/api/auth/login", `{"email":"not-an-email"}`)
	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Register_Dealer(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, clientKey string, in ports.RegisterInput) (*ports.LoginResult, error) {
			if in.Role != "stand" || in.DealerName != "Auto Sul" || clientKey != "client-1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.LoginResult{AccessToken: "tok-2", State: dealerState()}, nil
		},
	}
	h := NewAuthHandler(stub, middleware.CookieConfig{}, time.Hour)

	body := `{"email":"stand@autos.pt","password":"secret1","display_name":"Rui","role":"stand","dealer_name":"Auto Sul"}`
	c, rec := jsonContext(e, http.MethodPost, "/api/auth/register", body)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_DealerNeedsName(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, middleware.CookieConfig{}, time.Hour)

	body := `{"email":"stand@autos.pt","password":"secret1","display_name":"Rui","role":"stand"}`
	c, _ := jsonContext(e, http.MethodPost, "/api/auth/register", body)
	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	if !strings.Contains(he.Message.(string), "dealer_name") {
		t.Fatalf("expected dealer_name in message, got %v", he.Message)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, string, ports.RegisterInput) (*ports.LoginResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub, middleware.CookieConfig{}, time.Hour)

	c, _ := jsonContext(e, http.MethodPost, "/api/auth/register", `{"email":"a@b.pt","password":"secret1","display_name":"A"}`)
	if err := h.Register(c); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{}
	h := NewAuthHandler(stub, middleware.CookieConfig{}, time.Hour)

	c, rec := jsonContext(e, http.MethodPost, "/api/auth/logout", "")
	c.Set("access_token", "tok-1")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if got := rec.Header().Get("Clear-Site-Data"); got != clearSiteData {
		t.Fatalf("unexpected Clear-Site-Data %q", got)
	}
	ck := findCookie(rec, middleware.AccessCookie)
	if ck == nil || ck.MaxAge >= 0 {
		t.Fatalf("expected expired access cookie, got %+v", ck)
	}
	if len(stub.loggedOut) != 1 || stub.loggedOut[0] != "client-1|tok-1" {
		t.Fatalf("unexpected logout calls: %v", stub.loggedOut)
	}
}

func TestAuthHandler_RequestPasswordReset(t *testing.T) {
	e := newTestEcho()
	var gotRedirect string
	stub := &stubAuthService{
		resetFn: func(_ context.Context, email, redirectTo string) error {
			gotRedirect = redirectTo
			return nil
		},
	}
	h := NewAuthHandler(stub, middleware.CookieConfig{}, time.Hour)

	c, rec := jsonContext(e, http.MethodPost, "/api/auth/password-reset", `{"email":"a@b.pt","redirect_to":"/account"}`)
	if err := h.RequestPasswordReset(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted || gotRedirect != "/account" {
		t.Fatalf("unexpected result: %d %q", rec.Code, gotRedirect)
	}
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		passwordFn: func(_ context.Context, token, password string) error {
			if token == "expired" {
				return domain.ErrInvalidResetToken
			}
			return nil
		},
	}
	h := NewAuthHandler(stub, middleware.CookieConfig{}, time.Hour)

	c, rec := jsonContext(e, http.MethodPost, "/api/auth/password", `{"token":"tk","password":"newpass1"}`)
	if err := h.UpdatePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c, _ = jsonContext(e, http.MethodPost, "/api/auth/password", `{"token":"expired","password":"newpass1"}`)
	if err := h.UpdatePassword(c); err != domain.ErrInvalidResetToken {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}

func TestAuthHandler_UpdateAccount(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		accountFn: func(_ context.Context, accessToken string, in ports.AccountUpdateInput) (*domain.Profile, error) {
			if accessToken != "tok-1" || in.City != "Braga" {
				t.Fatalf("unexpected args: %s %+v", accessToken, in)
			}
			return &domain.Profile{ID: "u-dealer", Email: "stand@autos.pt", Role: domain.RoleDealer, City: "Braga"}, nil
		},
	}
	h := NewAuthHandler(stub, middleware.CookieConfig{}, time.Hour)

	c, rec := jsonContext(e, http.MethodPut, "/api/account", `{"city":"Braga"}`)
	c.Set("access_token", "tok-1")
	if err := h.UpdateAccount(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.City != "Braga" || resp.Email != "stand@autos.pt" {
		t.Fatalf("unexpected profile: %+v", resp)
	}
}
