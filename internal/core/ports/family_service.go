package ports

import (
	"context"
	"time"

	"github.com/famlink/family-api/internal/core/domain"
)

// JoinInput carries the fields required for a parent to join an existing
// family via invite code.
type JoinInput struct {
	InviteCode string
	Phone      string
	Password   string
	Name       string
	ClientIP   string
}

// Invite is the shareable invite handed to the family's child account.
type Invite struct {
	Code      string
	URL       string
	ExpiresAt time.Time
}

// InvitePreview is what an unauthenticated caller may learn about a family
// from a valid invite code. Nothing beyond the display name leaks.
type InvitePreview struct {
	FamilyName string
}

type FamilyService interface {
	Join(ctx context.Context, in JoinInput) (*Session, error)
	// Invite returns the family's current invite, lazily regenerating the
	// code when absent or expired. Child accounts only.
	Invite(ctx context.Context, account *domain.Account) (*Invite, error)
	ValidateInvite(ctx context.Context, code string) (*InvitePreview, error)
	// Snapshot returns the family and its member summaries.
	Snapshot(ctx context.Context, familyID string) (*domain.Family, []domain.MemberSummary, error)
}
