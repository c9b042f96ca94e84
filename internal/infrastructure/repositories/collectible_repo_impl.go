package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
	"mintworks.backend/internal/infrastructure/models"
)

// CollectibleRepository implements collectible registration records
type CollectibleRepository struct {
	db *gorm.DB
}

// NewCollectibleRepository creates a new collectible repository
func NewCollectibleRepository(db *gorm.DB) *CollectibleRepository {
	return &CollectibleRepository{db: db}
}

// RegisterIfAbsent records a registration once per external ID. A replay
// returns the row written by the first registration.
func (r *CollectibleRepository) RegisterIfAbsent(ctx context.Context, collectible *entities.Collectible) (*entities.Collectible, error) {
	db := GetDB(ctx, r.db)

	existing, err := r.GetByExternalID(ctx, collectible.ExternalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	m := &models.Collectible{
		ID:               collectible.ID,
		ExternalID:       collectible.ExternalID,
		CreatorUserID:    collectible.CreatorUserID,
		CreatorAddress:   collectible.CreatorAddress,
		BasePrice:        collectible.BasePrice,
		CurveCoefficient: collectible.CurveCoefficient,
		Exists:           collectible.Exists,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.GetByExternalID(ctx, collectible.ExternalID)
		}
		return nil, err
	}
	return r.toEntity(m), nil
}

// GetByExternalID gets a collectible by its registry ID
func (r *CollectibleRepository) GetByExternalID(ctx context.Context, externalID int64) (*entities.Collectible, error) {
	var m models.Collectible
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("external_id = ?", externalID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// MarkExists flags the registry entry as created on the external ledger
func (r *CollectibleRepository) MarkExists(ctx context.Context, externalID int64) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Collectible{}).
		Where("external_id = ?", externalID).
		Updates(map[string]interface{}{
			"registered": true,
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

func (r *CollectibleRepository) toEntity(m *models.Collectible) *entities.Collectible {
	return &entities.Collectible{
		ID:               m.ID,
		ExternalID:       m.ExternalID,
		CreatorUserID:    m.CreatorUserID,
		CreatorAddress:   m.CreatorAddress,
		BasePrice:        m.BasePrice,
		CurveCoefficient: m.CurveCoefficient,
		Exists:           m.Exists,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
