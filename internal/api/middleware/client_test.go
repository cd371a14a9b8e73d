package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runClientKey(t *testing.T, cfg CookieConfig, cookie *http.Cookie) (string, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var key string
	handler := ClientKey(cfg)(func(c echo.Context) error {
		key = ClientKeyFrom(c)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return key, rec
}

func TestClientKey_IssuesCookie(t *testing.T) {
	key, rec := runClientKey(t, CookieConfig{Secure: true}, nil)
	if key == "" {
		t.Fatal("expected a client key")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != ClientCookie || ck.Value != key || !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie: %+v", ck)
	}
}

func TestClientKey_ReusesValidCookie(t *testing.T) {
	const existing = "5f0c8a52-9d2e-4c57-9a38-0b4f3f1b6a11"
	key, rec := runClientKey(t, CookieConfig{}, &http.Cookie{Name: ClientCookie, Value: existing})
	if key != existing {
		t.Fatalf("expected %s, got %s", existing, key)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("a valid cookie must not be reissued")
	}
}

func TestClientKey_ReplacesMalformedCookie(t *testing.T) {
	key, rec := runClientKey(t, CookieConfig{}, &http.Cookie{Name: ClientCookie, Value: "../../etc"})
	if key == "../../etc" || key == "" {
		t.Fatalf("malformed key kept: %q", key)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatal("expected a replacement cookie")
	}
}
