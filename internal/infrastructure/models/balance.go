package models

import (
	"time"

	"github.com/google/uuid"
)

type Balance struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Amount    int64     `gorm:"not null;default:0;check:amount >= 0"`
	UpdatedAt time.Time
}

func (Balance) TableName() string {
	return "balances"
}

type LedgerEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount      int64     `gorm:"not null"`
	Kind        string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_ledger_kind_ref,priority:1"`
	ReferenceID string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_ledger_kind_ref,priority:2"`
	CreatedAt   time.Time
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
