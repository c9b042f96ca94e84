package models

import (
	"time"

	"github.com/google/uuid"
)

type Collectible struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ExternalID       int64     `gorm:"uniqueIndex;not null"`
	CreatorUserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatorAddress   string    `gorm:"type:varchar(64);not null"`
	BasePrice        int64     `gorm:"not null"`
	CurveCoefficient int64     `gorm:"not null"`
	Exists           bool      `gorm:"column:registered;not null;default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Collectible) TableName() string {
	return "collectibles"
}
