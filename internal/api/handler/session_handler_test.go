package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/standmarket/marketplace/internal/core/service"
)

func TestSessionHandler_Current_Anonymous(t *testing.T) {
	e := newTestEcho()
	h := NewSessionHandler(service.NewRouteAuthorizer(service.DefaultRoutes()))

	c, rec := jsonContext(e, http.MethodGet, "/api/session", "")
	if err := h.Current(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Role != "visitor" || resp.IsLoggedIn {
		t.Fatalf("unexpected session: %+v", resp)
	}
}

func TestSessionHandler_Authorize(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		dealer   bool
		allowed  bool
		redirect string
	}{
		{name: "visitor to dashboard", target: "/api/authorize?path=/dashboard", redirect: "/login"},
		{name: "visitor to admin", target: "/api/authorize?path=/admin", redirect: "/admin/login"},
		{name: "dealer to dashboard", target: "/api/authorize?path=/dashboard", dealer: true, allowed: true},
		{name: "dealer to admin", target: "/api/authorize?path=/admin", dealer: true, redirect: "/admin/login"},
		{name: "dealer creating a listing", target: "/api/authorize?path=/api/listings&method=post", dealer: true, allowed: true},
	}

	h := NewSessionHandler(service.NewRouteAuthorizer(service.DefaultRoutes()))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			c, rec := jsonContext(e, http.MethodGet, tt.target, "")
			if tt.dealer {
				c.Set("session_state", dealerState())
			}
			if err := h.Authorize(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			var resp authorizeResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Allowed != tt.allowed || resp.Redirect != tt.redirect {
				t.Fatalf("unexpected decision: %+v", resp)
			}
		})
	}
}

func TestSessionHandler_Authorize_RequiresAbsolutePath(t *testing.T) {
	e := newTestEcho()
	h := NewSessionHandler(service.NewRouteAuthorizer(service.DefaultRoutes()))

	c, _ := jsonContext(e, http.MethodGet, "/api/authorize?path=dashboard", "")
	if err := h.Authorize(c); err == nil {
		t.Fatal("expected an error for a relative path")
	}
}
