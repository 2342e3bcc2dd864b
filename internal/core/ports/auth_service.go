package ports

import (
	"context"

	"github.com/famlink/family-api/internal/core/domain"
)

// RegisterInput carries the fields required to create a family and its
// founding child account.
type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	FamilyName string
	ClientIP   string
}

// Session is the result of any flow that authenticates an account.
type Session struct {
	Account      *domain.Account
	Family       *domain.Family
	AccessToken  string
	RefreshToken string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, handle, password, clientIP string) (*Session, error)
	// Refresh mints a new access token from a valid refresh token. The
	// refresh token itself is not rotated.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Me returns the account and its family snapshot.
	Me(ctx context.Context, accountID string) (*domain.Account, *domain.Family, error)
}
