package repositories

import (
	"context"

	"github.com/google/uuid"
	"mintworks.backend/internal/domain/entities"
)

// PurchaseRepository defines purchase record operations
type PurchaseRepository interface {
	// CreateIfAbsent inserts the record unless one already exists for the
	// same external tx hash. A duplicate insert is silently ignored and
	// reported via the inserted return value.
	CreateIfAbsent(ctx context.Context, purchase *entities.Purchase) (inserted bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Purchase, error)
	GetByTxHash(ctx context.Context, txHash string) (*entities.Purchase, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Purchase, int, error)
	GetByStatus(ctx context.Context, status entities.PurchaseStatus, limit int) ([]*entities.Purchase, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.PurchaseStatus) error
}

// CollectibleRepository defines collectible registration operations
type CollectibleRepository interface {
	// RegisterIfAbsent records a registration once per external ID; replays
	// return the existing row.
	RegisterIfAbsent(ctx context.Context, collectible *entities.Collectible) (*entities.Collectible, error)
	GetByExternalID(ctx context.Context, externalID int64) (*entities.Collectible, error)
	MarkExists(ctx context.Context, externalID int64) error
}

// WalletRepository defines wallet data operations
type WalletRepository interface {
	Create(ctx context.Context, wallet *entities.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
}
