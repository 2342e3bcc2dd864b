package domain

import (
	"errors"
	"time"
)

const (
	// RoleChild is the account that created the family and invites relatives.
	RoleChild = "child"
	// RoleParent is an account that joined an existing family via invite code.
	RoleParent = "parent"
)

var (
	ErrDuplicateHandle = errors.New("handle already registered")
	ErrAccountNotFound = errors.New("account not found")
	ErrBadCredential   = errors.New("wrong password")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrForbidden       = errors.New("access forbidden")
)

// Account models a family member. Exactly one of Email or Phone is the login
// handle: email for child accounts, phone for parent accounts.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	FamilyID     string    `json:"family_id"`
	Timezone     string    `json:"timezone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// MemberSummary is the reduced account view exposed in family listings.
// It intentionally carries no login handles.
type MemberSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary strips an account down to what other family members may see.
func (a *Account) Summary() MemberSummary {
	return MemberSummary{
		ID:        a.ID,
		Name:      a.Name,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}
