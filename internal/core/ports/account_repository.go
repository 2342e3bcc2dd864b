package ports

import (
	"context"

	"github.com/famlink/family-api/internal/core/domain"
)

// AccountRepository defines the persistence contract for accounts.
// Each operation is individually atomic; there is no cross-record
// transaction support.
type AccountRepository interface {
	// FindByHandle matches the handle against email OR phone.
	FindByHandle(ctx context.Context, handle string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	Insert(ctx context.Context, account *domain.Account) (*domain.Account, error)
	CountByFamily(ctx context.Context, familyID string) (int, error)
}
