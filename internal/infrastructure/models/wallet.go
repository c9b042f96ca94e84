package models

import (
	"time"

	"github.com/google/uuid"
)

type Wallet struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;index"`
	Address             string    `gorm:"type:varchar(64);not null"`
	Kind                string    `gorm:"type:varchar(20);not null"`
	EncryptedControlKey string    `gorm:"type:text"`
	CreatedAt           time.Time
}

func (Wallet) TableName() string {
	return "wallets"
}
