package ports

import (
	"context"
	"time"

	"github.com/famlink/family-api/internal/core/domain"
)

// FamilyRepository defines the persistence contract for families.
type FamilyRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Family, error)
	FindByInviteCode(ctx context.Context, code string) (*domain.Family, error)
	Insert(ctx context.Context, family *domain.Family) (*domain.Family, error)
	UpdateInvite(ctx context.Context, familyID, code string, expiresAt time.Time) error
	ListMembers(ctx context.Context, familyID string) ([]domain.MemberSummary, error)
}
