package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	ClientCookie = "sv_client"
	AccessCookie = "sv_access"

	ctxClientKey   = "client_key"
	ctxAccessToken = "access_token"
	ctxSession     = "session_state"

	clientCookieTTL = 365 * 24 * time.Hour
)

// CookieConfig controls the attributes of the cookies set by the API.
type CookieConfig struct {
	Secure bool
}

// ClientKey identifies the browser. A missing or malformed sv_client cookie
// is replaced by a fresh random key.
func ClientKey(cfg CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := ""
			if ck, err := c.Cookie(ClientCookie); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					key = ck.Value
				}
			}
			if key == "" {
				key = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     ClientCookie,
					Value:    key,
					Path:     "/",
					MaxAge:   int(clientCookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(ctxClientKey, key)
			return next(c)
		}
	}
}

// ClientKeyFrom returns the client key set by ClientKey.
func ClientKeyFrom(c echo.Context) string {
	key, _ := c.Get(ctxClientKey).(string)
	return key
}
