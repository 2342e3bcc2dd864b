package domain

import (
	"errors"
	"time"
)

// MaxFamilyMembers caps how many accounts may belong to one family.
const MaxFamilyMembers = 10

// InviteCodeTTL is how long a freshly generated invite code stays valid.
const InviteCodeTTL = 7 * 24 * time.Hour

// InviteCodeLength is the number of characters in an invite code.
const InviteCodeLength = 8

// InviteCodeAlphabet excludes visually ambiguous characters (0/O, 1/I).
const InviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var (
	ErrFamilyNotFound    = errors.New("family not found")
	ErrInvalidInviteCode = errors.New("invalid invite code")
	ErrInviteExpired     = errors.New("invite code expired")
	ErrFamilyFull        = errors.New("family member limit reached")
)

// Family is the aggregate every account belongs to. A family owns at most one
// active invite code; the code regenerates lazily once expired or absent.
type Family struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	InviteCode      string     `json:"invite_code,omitempty"`
	InviteExpiresAt *time.Time `json:"invite_expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// InviteValid reports whether the family currently holds an unexpired invite
// code. Codes are never un-expired: once past expiry this stays false until a
// new code is generated.
func (f *Family) InviteValid(now time.Time) bool {
	if f.InviteCode == "" || f.InviteExpiresAt == nil {
		return false
	}
	return f.InviteExpiresAt.After(now)
}
