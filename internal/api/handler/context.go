package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/famlink/family-api/internal/api/middleware"
	"github.com/famlink/family-api/internal/core/domain"
)

// ctxAccount extracts the principal attached by the Auth middleware. Its
// presence proves the guard ran; handlers behind the required guard treat
// absence as unauthenticated rather than panicking on a nil principal.
func ctxAccount(c echo.Context) (*domain.Account, error) {
	account, _ := c.Get(middleware.AccountKey).(*domain.Account)
	if account == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return account, nil
}
