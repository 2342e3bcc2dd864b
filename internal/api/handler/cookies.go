package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/famlink/family-api/internal/pkg/token"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// sessionCookie builds one http-only, secure, same-site-lax session cookie
// scoped to the whole site. maxAge <= 0 deletes the cookie.
func sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// setSessionCookies attaches both token cookies to the response.
func setSessionCookies(c echo.Context, accessToken, refreshToken string) {
	c.SetCookie(sessionCookie(accessCookieName, accessToken, int(token.AccessTTL.Seconds())))
	c.SetCookie(sessionCookie(refreshCookieName, refreshToken, int(token.RefreshTTL.Seconds())))
}

// setAccessCookie refreshes only the access-token cookie.
func setAccessCookie(c echo.Context, accessToken string) {
	c.SetCookie(sessionCookie(accessCookieName, accessToken, int(token.AccessTTL.Seconds())))
}

// clearSessionCookies expires both token cookies. The tokens themselves stay
// valid until their natural expiry; logout only clears client state.
func clearSessionCookies(c echo.Context) {
	c.SetCookie(sessionCookie(accessCookieName, "", -1))
	c.SetCookie(sessionCookie(refreshCookieName, "", -1))
}
