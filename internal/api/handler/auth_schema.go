package handler

import "github.com/famlink/family-api/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type registerRequest struct {
	Email      string `json:"email"      validate:"required,email"`
	Password   string `json:"password"   validate:"required,userpass"`
	Name       string `json:"name"       validate:"required"`
	FamilyName string `json:"familyName" validate:"required"`
}

type loginRequest struct {
	Account  string `json:"account"  validate:"required"`
	Password string `json:"password" validate:"required"`
}

// --- Response types ---

// sessionResponse is returned by every flow that signs an account in. The
// refresh token travels only in its cookie, never in the body.
type sessionResponse struct {
	User        *domain.Account `json:"user"`
	Family      *domain.Family  `json:"family"`
	AccessToken string          `json:"accessToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}

type meResponse struct {
	User   *domain.Account `json:"user"`
	Family *domain.Family  `json:"family"`
}
