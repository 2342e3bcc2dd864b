package handler

import (
	"time"

	"github.com/famlink/family-api/internal/core/domain"
)

type joinRequest struct {
	InviteCode string `json:"invite_code" validate:"required,len=8"`
	Phone      string `json:"phone"       validate:"required,min=10"`
	Password   string `json:"password"    validate:"required,userpass"`
	Name       string `json:"name"        validate:"required"`
}

type inviteResponse struct {
	InviteCode string    `json:"invite_code"`
	InviteURL  string    `json:"invite_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// validateInviteResponse is used for both outcomes of the public invite
// preview: {valid:true, family_name} or {valid:false, error}.
type validateInviteResponse struct {
	Valid      bool   `json:"valid"`
	FamilyName string `json:"family_name,omitempty"`
	Error      string `json:"error,omitempty"`
}

type familyResponse struct {
	Family  *domain.Family         `json:"family"`
	Members []domain.MemberSummary `json:"members"`
}
