package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
	"mintworks.backend/internal/infrastructure/models"
)

// PurchaseRepository implements purchase record operations
type PurchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// CreateIfAbsent inserts the purchase unless a record with the same external
// tx hash already exists. The tx hash is the settlement idempotency key, so
// a duplicate insert is not an error.
func (r *PurchaseRepository) CreateIfAbsent(ctx context.Context, purchase *entities.Purchase) (bool, error) {
	db := GetDB(ctx, r.db)

	var count int64
	if err := db.WithContext(ctx).Model(&models.Purchase{}).
		Where("external_tx_hash = ?", purchase.ExternalTxHash).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	m := toModel(purchase)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	purchase.ID = m.ID
	return true, nil
}

// GetByID gets a purchase by ID
func (r *PurchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Purchase, error) {
	var m models.Purchase
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// GetByTxHash gets a purchase by its settlement identifier
func (r *PurchaseRepository) GetByTxHash(ctx context.Context, txHash string) (*entities.Purchase, error) {
	var m models.Purchase
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("external_tx_hash = ?", txHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// GetByUserID gets purchases for a buyer with pagination
func (r *PurchaseRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Purchase, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("buyer_user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Purchase
	if err := r.db.WithContext(ctx).
		Where("buyer_user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	purchases := make([]*entities.Purchase, 0, len(ms))
	for i := range ms {
		purchases = append(purchases, toEntity(&ms[i]))
	}
	return purchases, int(total), nil
}

// GetByStatus lists purchases in a given settlement state, oldest first
func (r *PurchaseRepository) GetByStatus(ctx context.Context, status entities.PurchaseStatus, limit int) ([]*entities.Purchase, error) {
	var ms []models.Purchase
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	purchases := make([]*entities.Purchase, 0, len(ms))
	for i := range ms {
		purchases = append(purchases, toEntity(&ms[i]))
	}
	return purchases, nil
}

// UpdateStatus transitions a purchase's settlement state
func (r *PurchaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.PurchaseStatus) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Purchase{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toModel(p *entities.Purchase) *models.Purchase {
	m := &models.Purchase{
		ID:             p.ID,
		CollectibleID:  p.CollectibleID,
		BuyerUserID:    p.BuyerUserID,
		UnitPrice:      p.UnitPrice,
		CreatorFee:     p.CreatorFee,
		PlatformFee:    p.PlatformFee,
		TotalPaid:      p.TotalPaid,
		ExternalTxHash: p.ExternalTxHash,
		Status:         string(p.Status),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.FailureReason.Valid {
		reason := p.FailureReason.String
		m.FailureReason = &reason
	}
	return m
}

func toEntity(m *models.Purchase) *entities.Purchase {
	return &entities.Purchase{
		ID:             m.ID,
		CollectibleID:  m.CollectibleID,
		BuyerUserID:    m.BuyerUserID,
		UnitPrice:      m.UnitPrice,
		CreatorFee:     m.CreatorFee,
		PlatformFee:    m.PlatformFee,
		TotalPaid:      m.TotalPaid,
		ExternalTxHash: m.ExternalTxHash,
		Status:         entities.PurchaseStatus(m.Status),
		FailureReason:  null.StringFromPtr(m.FailureReason),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
