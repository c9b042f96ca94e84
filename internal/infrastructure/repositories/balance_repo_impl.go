package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
	"mintworks.backend/internal/infrastructure/models"
	"mintworks.backend/pkg/utils"
)

// BalanceRepository implements the internal balance ledger
type BalanceRepository struct {
	db *gorm.DB
}

// NewBalanceRepository creates a new balance repository
func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// Get returns the user's balance. A user without a row has a zero balance.
func (r *BalanceRepository) Get(ctx context.Context, userID uuid.UUID) (*entities.Balance, error) {
	var m models.Balance
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entities.Balance{UserID: userID}, nil
		}
		return nil, err
	}
	return &entities.Balance{UserID: m.UserID, Amount: m.Amount, UpdatedAt: m.UpdatedAt}, nil
}

// Reserve debits amount and appends the matching ledger entry in one
// transaction. The debit is a conditional UPDATE, so two concurrent
// reservations cannot both succeed past the available balance.
func (r *BalanceRepository) Reserve(ctx context.Context, userID uuid.UUID, amount int64, referenceID string) error {
	if amount <= 0 {
		return domainerrors.ErrBadRequest
	}

	db := GetDB(ctx, r.db)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Balance{}).
			Where("user_id = ? AND amount >= ?", userID, amount).
			Updates(map[string]interface{}{
				"amount":     gorm.Expr("amount - ?", amount),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrInsufficientBalance
		}

		entry := &models.LedgerEntry{
			ID:          utils.NewID(),
			UserID:      userID,
			Amount:      -amount,
			Kind:        string(entities.LedgerEntryKindDebit),
			ReferenceID: referenceID,
			CreatedAt:   time.Now(),
		}
		return tx.Create(entry).Error
	})
}

// Compensate credits amount back as a refund. Replaying the same
// referenceID is a no-op.
func (r *BalanceRepository) Compensate(ctx context.Context, userID uuid.UUID, amount int64, referenceID string) error {
	return r.credit(ctx, userID, amount, entities.LedgerEntryKindRefund, referenceID)
}

// Bonus credits a loyalty bonus. Same idempotence contract as Compensate.
func (r *BalanceRepository) Bonus(ctx context.Context, userID uuid.UUID, amount int64, referenceID string) error {
	return r.credit(ctx, userID, amount, entities.LedgerEntryKindBonus, referenceID)
}

func (r *BalanceRepository) credit(ctx context.Context, userID uuid.UUID, amount int64, kind entities.LedgerEntryKind, referenceID string) error {
	if amount <= 0 {
		return domainerrors.ErrBadRequest
	}

	db := GetDB(ctx, r.db)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Idempotence: the (kind, reference_id) pair is unique; a replay
		// finds the earlier entry and leaves the balance untouched.
		var count int64
		if err := tx.Model(&models.LedgerEntry{}).
			Where("kind = ? AND reference_id = ?", string(kind), referenceID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		result := tx.Model(&models.Balance{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"amount":     gorm.Expr("amount + ?", amount),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if err := tx.Create(&models.Balance{UserID: userID, Amount: amount, UpdatedAt: time.Now()}).Error; err != nil {
				return err
			}
		}

		entry := &models.LedgerEntry{
			ID:          utils.NewID(),
			UserID:      userID,
			Amount:      amount,
			Kind:        string(kind),
			ReferenceID: referenceID,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost the race against a concurrent replay; the credit
				// already happened.
				return nil
			}
			return err
		}
		return nil
	})
}

// GetEntries lists ledger entries for a user, newest first
func (r *BalanceRepository) GetEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.LedgerEntry, int, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.LedgerEntry
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]*entities.LedgerEntry, 0, len(ms))
	for _, m := range ms {
		entries = append(entries, &entities.LedgerEntry{
			ID:          m.ID,
			UserID:      m.UserID,
			Amount:      m.Amount,
			Kind:        entities.LedgerEntryKind(m.Kind),
			ReferenceID: m.ReferenceID,
			CreatedAt:   m.CreatedAt,
		})
	}
	return entries, int(total), nil
}
