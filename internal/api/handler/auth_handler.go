package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/famlink/family-api/internal/api/metrics"
	"github.com/famlink/family-api/internal/core/domain"
	"github.com/famlink/family-api/internal/core/ports"
)

// refreshHeader is the dedicated header carrying the refresh token; a raw
// token in the request body is accepted as a fallback.
const refreshHeader = "X-Refresh-Token"

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a family and its founding child account.
//
// @Summary      Register a child account and create its family
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		FamilyName: req.FamilyName,
		ClientIP:   c.RealIP(),
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	setSessionCookies(c, session.AccessToken, session.RefreshToken)
	return c.JSON(http.StatusOK, sessionResponse{
		User:        session.Account,
		Family:      session.Family,
		AccessToken: session.AccessToken,
	})
}

// Login authenticates an email or phone handle.
//
// @Summary      Log in with email or phone
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.authService.Login(c.Request().Context(), req.Account, req.Password, c.RealIP())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	setSessionCookies(c, session.AccessToken, session.RefreshToken)
	return c.JSON(http.StatusOK, sessionResponse{
		User:        session.Account,
		Family:      session.Family,
		AccessToken: session.AccessToken,
	})
}

// Refresh mints a new access token from a refresh token.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Refresh-Token  header    string  false  "Refresh token"
// @Success      200  {object}  refreshResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := c.Request().Header.Get(refreshHeader)
	if raw == "" {
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, 4096))
		if err == nil {
			raw = strings.TrimSpace(string(body))
		}
	}
	if raw == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
	}

	accessToken, err := h.authService.Refresh(c.Request().Context(), raw)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("invalid").Inc()
		return err
	}
	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()

	setAccessCookie(c, accessToken)
	return c.JSON(http.StatusOK, refreshResponse{AccessToken: accessToken})
}

// Logout clears the session cookies. Tokens already issued stay valid until
// natural expiry; there is no server-side revocation.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  logoutResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	clearSessionCookies(c)
	return c.JSON(http.StatusOK, logoutResponse{Success: true})
}

// Me returns the authenticated account and its family.
//
// @Summary      Current account snapshot
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}

	user, family, err := h.authService.Me(c.Request().Context(), account.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{User: user, Family: family})
}

func registerResult(err error) string {
	if errors.Is(err, domain.ErrDuplicateHandle) {
		return "duplicate_handle"
	}
	return "error"
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrBadCredential):
		return "bad_credential"
	default:
		return "error"
	}
}
