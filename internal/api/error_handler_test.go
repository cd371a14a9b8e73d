package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/standmarket/marketplace/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{name: "wrapped not found", err: fmt.Errorf("submit lead: %w", domain.ErrListingNotFound), code: http.StatusNotFound, msg: "listing not found"},
		{name: "profile not found", err: domain.ErrProfileNotFound, code: http.StatusNotFound, msg: "profile not found"},
		{name: "forbidden", err: domain.ErrForbidden, code: http.StatusForbidden, msg: "access forbidden"},
		{name: "dealer not approved", err: domain.ErrDealerNotApproved, code: http.StatusForbidden, msg: "dealer account is not approved"},
		{name: "transition keeps detail", err: fmt.Errorf("%w (from sold to active)", domain.ErrInvalidTransition), code: http.StatusUnprocessableEntity, msg: "invalid status transition (from sold to active)"},
		{name: "weak password", err: domain.ErrWeakPassword, code: http.StatusUnprocessableEntity, msg: "password must be at least 6 characters"},
		{name: "bad credentials", err: domain.ErrInvalidCredentials, code: http.StatusUnauthorized, msg: "invalid credentials"},
		{name: "anonymous", err: domain.ErrNotAuthenticated, code: http.StatusUnauthorized, msg: "not authenticated"},
		{name: "reset token", err: domain.ErrInvalidResetToken, code: http.StatusBadRequest, msg: "invalid or expired reset token"},
		{name: "conflict", err: domain.ErrUserExists, code: http.StatusConflict, msg: "user already exists"},
		{name: "echo error", err: echo.NewHTTPError(http.StatusUnprocessableEntity, "email is required"), code: http.StatusUnprocessableEntity, msg: "email is required"},
		{name: "unexpected", err: errors.New("mongo: connection reset"), code: http.StatusInternalServerError, msg: "internal server error"},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handler(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tt.msg {
				t.Fatalf("expected %q, got %q", tt.msg, body.Error)
			}
		})
	}
}
