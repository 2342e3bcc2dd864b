package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/famlink/family-api/internal/api/metrics"
	"github.com/famlink/family-api/internal/core/domain"
	"github.com/famlink/family-api/internal/core/ports"
)

type FamilyHandler struct {
	familyService ports.FamilyService
}

func NewFamilyHandler(familyService ports.FamilyService) *FamilyHandler {
	return &FamilyHandler{familyService: familyService}
}

// Get returns the caller's family and its members.
//
// @Summary      Family snapshot with members
// @Tags         family
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  familyResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /family [get]
func (h *FamilyHandler) Get(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}

	family, members, err := h.familyService.Snapshot(c.Request().Context(), account.FamilyID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, familyResponse{Family: family, Members: members})
}

// Invite returns the shareable invite, regenerating an expired code.
//
// @Summary      Fetch or refresh the family invite
// @Tags         family
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  inviteResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /family/invite [get]
func (h *FamilyHandler) Invite(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}

	invite, err := h.familyService.Invite(c.Request().Context(), account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inviteResponse{
		InviteCode: invite.Code,
		InviteURL:  invite.URL,
		ExpiresAt:  invite.ExpiresAt,
	})
}

// ValidateInvite previews an invite code for the join UI. Unlike the other
// endpoints it keeps its error shape inline so the client always receives a
// {valid, …} envelope.
//
// @Summary      Preview an invite code
// @Tags         family
// @Produce      json
// @Param        code  path      string  true  "Invite code"
// @Success      200   {object}  validateInviteResponse
// @Failure      400   {object}  validateInviteResponse
// @Failure      429   {object}  errorResponse
// @Router       /family/invite/{code} [get]
func (h *FamilyHandler) ValidateInvite(c echo.Context) error {
	preview, err := h.familyService.ValidateInvite(c.Request().Context(), c.Param("code"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInviteCode):
			return c.JSON(http.StatusBadRequest, validateInviteResponse{Valid: false, Error: "invalid invite code"})
		case errors.Is(err, domain.ErrInviteExpired):
			return c.JSON(http.StatusBadRequest, validateInviteResponse{Valid: false, Error: "invite code expired"})
		}
		return err
	}
	return c.JSON(http.StatusOK, validateInviteResponse{Valid: true, FamilyName: preview.FamilyName})
}

// Join creates a parent account in the family owning the invite code.
//
// @Summary      Join a family via invite code
// @Tags         family
// @Accept       json
// @Produce      json
// @Param        body  body      joinRequest  true  "Join details"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /family/join [post]
func (h *FamilyHandler) Join(c echo.Context) error {
	var req joinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.familyService.Join(c.Request().Context(), ports.JoinInput{
		InviteCode: req.InviteCode,
		Phone:      req.Phone,
		Password:   req.Password,
		Name:       req.Name,
		ClientIP:   c.RealIP(),
	})
	if err != nil {
		metrics.JoinsTotal.WithLabelValues(joinResult(err)).Inc()
		return err
	}
	metrics.JoinsTotal.WithLabelValues("success").Inc()

	setSessionCookies(c, session.AccessToken, session.RefreshToken)
	return c.JSON(http.StatusOK, sessionResponse{
		User:        session.Account,
		Family:      session.Family,
		AccessToken: session.AccessToken,
	})
}

func joinResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInviteCode):
		return "invalid_code"
	case errors.Is(err, domain.ErrInviteExpired):
		return "expired_code"
	case errors.Is(err, domain.ErrDuplicateHandle):
		return "duplicate_handle"
	case errors.Is(err, domain.ErrFamilyFull):
		return "family_full"
	default:
		return "error"
	}
}
