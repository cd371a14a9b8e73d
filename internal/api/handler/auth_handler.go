package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/standmarket/marketplace/internal/api/metrics"
	"github.com/standmarket/marketplace/internal/api/middleware"
	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

// clearSiteData tells the browser to drop everything it stored for us.
const clearSiteData = `"cache", "cookies", "storage"`

type AuthHandler struct {
	authService ports.AuthService
	cookies     middleware.CookieConfig
	tokenTTL    time.Duration
}

func NewAuthHandler(authService ports.AuthService, cookies middleware.CookieConfig, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, tokenTTL: tokenTTL}
}

// Login authenticates the browser's client and opens its session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), middleware.ClientKeyFrom(c), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("password", "failure").Inc()
		return err
	}

	method := "password"
	if res.AccessToken == "" {
		method = "bypass"
	}
	metrics.LoginsTotal.WithLabelValues(method, "success").Inc()
	return h.signedIn(c, http.StatusOK, res)
}

// Register creates an account and signs it in.
//
// @Summary      Register a visitor or dealer
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), middleware.ClientKeyFrom(c), ports.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		DealerName:  req.DealerName,
		Phone:       req.Phone,
		City:        req.City,
	})
	if err != nil {
		return err
	}
	return h.signedIn(c, http.StatusCreated, res)
}

// Logout signs the client out everywhere it has state and sends it home.
//
// @Summary      Logout
// @Tags         auth
// @Success      303
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.authService.Logout(c.Request().Context(), middleware.ClientKeyFrom(c), middleware.AccessTokenFrom(c))

	h.setAccessCookie(c, "", -1)
	c.Response().Header().Set("Clear-Site-Data", clearSiteData)
	return c.Redirect(http.StatusSeeOther, domain.PublicRootPath)
}

// RequestPasswordReset mails a reset link. Unknown addresses get the same answer.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetRequest  true  "Account email"
// @Success      202   {object}  acceptedResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req passwordResetRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email, req.RedirectTo); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "if the address is registered, a reset link is on its way"})
}

// UpdatePassword sets a new password from a reset token.
//
// @Summary      Set a new password
// @Tags         auth
// @Accept       json
// @Param        body  body      updatePasswordRequest  true  "Reset token and new password"
// @Success      204
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/auth/password [post]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req updatePasswordRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if err := h.authService.UpdatePassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateAccount edits the signed-in user's own account.
//
// @Summary      Update own account
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      accountUpdateRequest  true  "Fields to change"
// @Success      200   {object}  profileResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/account [put]
func (h *AuthHandler) UpdateAccount(c echo.Context) error {
	var req accountUpdateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	p, err := h.authService.UpdateAccount(c.Request().Context(), middleware.AccessTokenFrom(c), ports.AccountUpdateInput{
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		City:        req.City,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(p, true))
}

func (h *AuthHandler) signedIn(c echo.Context, status int, res *ports.LoginResult) error {
	if res.AccessToken != "" {
		h.setAccessCookie(c, res.AccessToken, int(h.tokenTTL.Seconds()))
	}
	middleware.SetState(c, res.State)
	return c.JSON(status, authResponse{
		AccessToken: res.AccessToken,
		Session:     toSessionResponse(res.State),
		Redirect:    landingFor(res.State.Role),
	})
}

func (h *AuthHandler) setAccessCookie(c echo.Context, value string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
