package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/famlink/family-api/internal/core/domain"
	"github.com/famlink/family-api/internal/core/ports"
	"github.com/famlink/family-api/internal/pkg/token"
)

// FamilyService implements invite management and the join flow.
type FamilyService struct {
	accounts ports.AccountRepository
	families ports.FamilyRepository
	codec    *token.Codec
	appURL   string
	activity ports.ActivitySink
}

func NewFamilyService(accounts ports.AccountRepository, families ports.FamilyRepository, codec *token.Codec, appURL string, activity ports.ActivitySink) *FamilyService {
	return &FamilyService{accounts: accounts, families: families, codec: codec, appURL: appURL, activity: activity}
}

// Join creates a parent account in the family owning the invite code and
// signs it in. Expiry is re-checked here even if the caller previewed the
// code earlier: codes are never un-expired.
func (s *FamilyService) Join(ctx context.Context, in ports.JoinInput) (*ports.Session, error) {
	family, err := s.families.FindByInviteCode(ctx, in.InviteCode)
	if err != nil {
		if errors.Is(err, domain.ErrFamilyNotFound) {
			return nil, domain.ErrInvalidInviteCode
		}
		return nil, err
	}
	if !family.InviteValid(time.Now()) {
		return nil, domain.ErrInviteExpired
	}

	existing, err := s.accounts.FindByHandle(ctx, in.Phone)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateHandle
	}

	count, err := s.accounts.CountByFamily(ctx, family.ID)
	if err != nil {
		return nil, err
	}
	if count >= domain.MaxFamilyMembers {
		return nil, domain.ErrFamilyFull
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account, err := s.accounts.Insert(ctx, &domain.Account{
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         domain.RoleParent,
		FamilyID:     family.ID,
		Timezone:     defaultParentTimezone,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	access, err := s.codec.IssueAccess(account.ID, account.FamilyID, account.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.IssueRefresh(account.ID, account.FamilyID, account.Role)
	if err != nil {
		return nil, err
	}

	if s.activity != nil {
		s.activity.Enqueue(domain.AuthActivity{
			Kind:      domain.ActivityJoin,
			AccountID: account.ID,
			FamilyID:  family.ID,
			Handle:    in.Phone,
			ClientIP:  in.ClientIP,
			Timestamp: now,
		})
	}

	return &ports.Session{
		Account:      account,
		Family:       family,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Invite returns the family's shareable invite, generating a fresh code and
// 7-day expiry when none is set or the current one has expired. Only the
// child account may invite relatives.
func (s *FamilyService) Invite(ctx context.Context, account *domain.Account) (*ports.Invite, error) {
	if account.Role != domain.RoleChild {
		return nil, domain.ErrForbidden
	}

	family, err := s.families.FindByID(ctx, account.FamilyID)
	if err != nil {
		return nil, err
	}

	if !family.InviteValid(time.Now()) {
		code, err := newInviteCode()
		if err != nil {
			return nil, err
		}
		expiresAt := time.Now().UTC().Add(domain.InviteCodeTTL)
		if err := s.families.UpdateInvite(ctx, family.ID, code, expiresAt); err != nil {
			return nil, err
		}
		family.InviteCode = code
		family.InviteExpiresAt = &expiresAt
	}

	return &ports.Invite{
		Code:      family.InviteCode,
		URL:       fmt.Sprintf("%s/join/%s", s.appURL, family.InviteCode),
		ExpiresAt: *family.InviteExpiresAt,
	}, nil
}

// ValidateInvite previews an invite code for the join UI. It exposes only
// the family display name, never account data.
func (s *FamilyService) ValidateInvite(ctx context.Context, code string) (*ports.InvitePreview, error) {
	family, err := s.families.FindByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrFamilyNotFound) {
			return nil, domain.ErrInvalidInviteCode
		}
		return nil, err
	}
	if !family.InviteValid(time.Now()) {
		return nil, domain.ErrInviteExpired
	}
	return &ports.InvitePreview{FamilyName: family.Name}, nil
}

// Snapshot returns the family and its member summaries.
func (s *FamilyService) Snapshot(ctx context.Context, familyID string) (*domain.Family, []domain.MemberSummary, error) {
	family, err := s.families.FindByID(ctx, familyID)
	if err != nil {
		return nil, nil, err
	}
	members, err := s.families.ListMembers(ctx, familyID)
	if err != nil {
		return nil, nil, err
	}
	return family, members, nil
}
