package models

import (
	"time"

	"github.com/google/uuid"
)

type Purchase struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CollectibleID  uuid.UUID `gorm:"type:uuid;not null;index"`
	BuyerUserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	UnitPrice      int64     `gorm:"not null"`
	CreatorFee     int64     `gorm:"not null"`
	PlatformFee    int64     `gorm:"not null"`
	TotalPaid      int64     `gorm:"not null"`
	ExternalTxHash string    `gorm:"type:varchar(66);not null;uniqueIndex"`
	Status         string    `gorm:"type:varchar(20);not null;index"`
	FailureReason  *string   `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Purchase) TableName() string {
	return "purchases"
}
