package entities

import (
	"time"

	"github.com/google/uuid"
)

// Collectible is the local record of a registry entry. It is created lazily,
// at most once per ExternalID, on the first successful purchase. Exists
// mirrors whether the entry has been created on the external registry.
type Collectible struct {
	ID               uuid.UUID `json:"id"`
	ExternalID       int64     `json:"externalId"`
	CreatorUserID    uuid.UUID `json:"creatorUserId"`
	CreatorAddress   string    `json:"creatorAddress"`
	BasePrice        int64     `json:"basePrice"`
	CurveCoefficient int64     `json:"curveCoefficient"`
	Exists           bool      `json:"exists"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// PriceQuote is the registry's cost decomposition for buying one unit.
// All amounts are payment token base units.
type PriceQuote struct {
	CollectibleID int64 `json:"collectibleId"`
	Reserve       int64 `json:"reserve"`
	CreatorFee    int64 `json:"creatorFee"`
	PlatformFee   int64 `json:"platformFee"`
	Total         int64 `json:"total"`
	Exists        bool  `json:"exists"`
}
