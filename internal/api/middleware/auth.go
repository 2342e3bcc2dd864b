package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/famlink/family-api/internal/core/domain"
	"github.com/famlink/family-api/internal/core/ports"
	"github.com/famlink/family-api/internal/pkg/token"
)

// Context keys under which the guards attach the resolved principal.
const (
	AccountKey = "account"
	ClaimsKey  = "claims"
)

// AccessCookie is the cookie fallback consulted when no Authorization
// header is present.
const AccessCookie = "access_token"

// Auth verifies the access token and loads the account it names. Requests
// without a valid token, or whose account no longer exists, are rejected
// with 401 before reaching the handler.
func Auth(codec *token.Codec, accounts ports.AccountRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			claims, err := codec.Verify(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			// A deleted account holding a still-valid token is
			// unauthenticated, not a server error. Any other store
			// failure propagates to the central handler as a 500.
			account, err := accounts.FindByID(c.Request().Context(), claims.AccountID)
			if err != nil {
				if errors.Is(err, domain.ErrAccountNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists")
				}
				return err
			}

			c.Set(AccountKey, account)
			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// OptionalAuth performs the same extraction and verification as Auth but
// never rejects: on any failure the request proceeds without a principal,
// and downstream handlers must treat "no principal" as a valid state.
func OptionalAuth(codec *token.Codec, accounts ports.AccountRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c)
			if raw == "" {
				return next(c)
			}

			claims, err := codec.Verify(raw)
			if err != nil {
				return next(c)
			}

			account, err := accounts.FindByID(c.Request().Context(), claims.AccountID)
			if err != nil {
				return next(c)
			}

			c.Set(AccountKey, account)
			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// extractToken prefers the Authorization bearer header, falling back to the
// access-token cookie set at login.
func extractToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Cookie(AccessCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
