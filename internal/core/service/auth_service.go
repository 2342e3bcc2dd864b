package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/famlink/family-api/internal/core/domain"
	"github.com/famlink/family-api/internal/core/ports"
	"github.com/famlink/family-api/internal/pkg/token"
)

// Timezone defaults applied when a new account does not state one: children
// register from abroad, parents join from home.
const (
	defaultChildTimezone  = "America/Los_Angeles"
	defaultParentTimezone = "Asia/Shanghai"
)

// AuthService implements registration, login, token refresh, and the current
// principal snapshot.
type AuthService struct {
	accounts ports.AccountRepository
	families ports.FamilyRepository
	codec    *token.Codec
	activity ports.ActivitySink
}

// NewAuthService wires the auth flows. activity may be nil; audit recording
// is then skipped entirely.
func NewAuthService(accounts ports.AccountRepository, families ports.FamilyRepository, codec *token.Codec, activity ports.ActivitySink) *AuthService {
	return &AuthService{accounts: accounts, families: families, codec: codec, activity: activity}
}

// Register creates a family and its founding child account, then signs the
// account in. The family and account inserts are two independent writes; a
// crash between them can orphan a family with zero members.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.Session, error) {
	existing, err := s.accounts.FindByHandle(ctx, in.Email)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateHandle
	}

	code, err := newInviteCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(domain.InviteCodeTTL)
	family, err := s.families.Insert(ctx, &domain.Family{
		Name:            in.FamilyName,
		InviteCode:      code,
		InviteExpiresAt: &expiresAt,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.Insert(ctx, &domain.Account{
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         domain.RoleChild,
		FamilyID:     family.ID,
		Timezone:     defaultChildTimezone,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	session, err := s.openSession(account, family)
	if err != nil {
		return nil, err
	}

	s.record(domain.AuthActivity{
		Kind:      domain.ActivityRegister,
		AccountID: account.ID,
		FamilyID:  family.ID,
		Handle:    in.Email,
		ClientIP:  in.ClientIP,
		Timestamp: now,
	})
	return session, nil
}

// Login authenticates a handle (email or phone) against its stored hash.
func (s *AuthService) Login(ctx context.Context, handle, password, clientIP string) (*ports.Session, error) {
	account, err := s.accounts.FindByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		s.record(domain.AuthActivity{
			Kind:      domain.ActivityLoginFailed,
			AccountID: account.ID,
			FamilyID:  account.FamilyID,
			Handle:    handle,
			ClientIP:  clientIP,
			Timestamp: time.Now().UTC(),
		})
		return nil, domain.ErrBadCredential
	}

	family, err := s.families.FindByID(ctx, account.FamilyID)
	if err != nil {
		return nil, err
	}

	session, err := s.openSession(account, family)
	if err != nil {
		return nil, err
	}

	s.record(domain.AuthActivity{
		Kind:      domain.ActivityLogin,
		AccountID: account.ID,
		FamilyID:  account.FamilyID,
		Handle:    handle,
		ClientIP:  clientIP,
		Timestamp: time.Now().UTC(),
	})
	return session, nil
}

// Refresh verifies a refresh token and mints a new access token. The refresh
// token is not rotated; it stays valid until its natural expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	// The account may have been deleted since the token was issued.
	account, err := s.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		return "", err
	}

	access, err := s.codec.IssueAccess(account.ID, account.FamilyID, account.Role)
	if err != nil {
		return "", err
	}

	s.record(domain.AuthActivity{
		Kind:      domain.ActivityRefresh,
		AccountID: account.ID,
		FamilyID:  account.FamilyID,
		Timestamp: time.Now().UTC(),
	})
	return access, nil
}

// Me returns the account and family snapshot for an authenticated principal.
func (s *AuthService) Me(ctx context.Context, accountID string) (*domain.Account, *domain.Family, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	family, err := s.families.FindByID(ctx, account.FamilyID)
	if err != nil {
		return nil, nil, err
	}
	return account, family, nil
}

func (s *AuthService) openSession(account *domain.Account, family *domain.Family) (*ports.Session, error) {
	access, err := s.codec.IssueAccess(account.ID, account.FamilyID, account.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.IssueRefresh(account.ID, account.FamilyID, account.Role)
	if err != nil {
		return nil, err
	}
	return &ports.Session{
		Account:      account,
		Family:       family,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *AuthService) record(activity domain.AuthActivity) {
	if s.activity != nil {
		s.activity.Enqueue(activity)
	}
}
