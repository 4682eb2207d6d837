package repository

import (
	"context"

	"wallet-core-backend/internal/features/wallet/models"
)

// AccountStore persists the single active account's key material through
// the opaque secure storage capability. Implementations must be safe for
// concurrent use; the engine issues one mutation at a time.
type AccountStore interface {
	// Load returns the stored account, or nil when none is stored.
	Load(ctx context.Context) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context) error
}
