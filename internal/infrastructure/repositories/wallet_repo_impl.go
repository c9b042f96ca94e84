package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
	"mintworks.backend/internal/infrastructure/models"
)

// WalletRepository implements wallet data operations
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create creates a new wallet
func (r *WalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	m := &models.Wallet{
		ID:                  wallet.ID,
		UserID:              wallet.UserID,
		Address:             wallet.Address,
		Kind:                string(wallet.Kind),
		EncryptedControlKey: wallet.EncryptedControlKey,
		CreatedAt:           time.Now(),
	}
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	wallet.ID = m.ID
	return nil
}

// GetByUserID returns the user's wallet, preferring an external address
// over a custodial one when both are registered.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	var ms []models.Wallet
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, domainerrors.ErrWalletNotFound
	}

	for i := range ms {
		if ms[i].Kind == string(entities.WalletKindExternal) {
			return r.toEntity(&ms[i]), nil
		}
	}
	return r.toEntity(&ms[0]), nil
}

// ListByUserID lists all wallets for a user
func (r *WalletRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	var ms []models.Wallet
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	wallets := make([]*entities.Wallet, 0, len(ms))
	for i := range ms {
		wallets = append(wallets, r.toEntity(&ms[i]))
	}
	return wallets, nil
}

func (r *WalletRepository) toEntity(m *models.Wallet) *entities.Wallet {
	return &entities.Wallet{
		ID:                  m.ID,
		UserID:              m.UserID,
		Address:             m.Address,
		Kind:                entities.WalletKind(m.Kind),
		EncryptedControlKey: m.EncryptedControlKey,
		CreatedAt:           m.CreatedAt,
	}
}
