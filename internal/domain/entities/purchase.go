package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PurchaseStatus tracks the settlement state of a purchase record
type PurchaseStatus string

const (
	PurchaseStatusConfirmed PurchaseStatus = "confirmed"
	PurchaseStatusTimedOut  PurchaseStatus = "timed_out"
	// PurchaseStatusConfirmedLate marks a timed-out purchase whose receipt
	// later showed success. The buyer was already refunded, so these rows
	// are flagged for manual follow-up rather than counted as committed.
	PurchaseStatusConfirmedLate PurchaseStatus = "confirmed_late"
	PurchaseStatusFailed        PurchaseStatus = "failed"
)

// Purchase is the persisted record of a settled (or timed-out) purchase.
// ExternalTxHash is the idempotency key: replaying settlement with the same
// hash must not duplicate the record.
type Purchase struct {
	ID             uuid.UUID      `json:"id"`
	CollectibleID  uuid.UUID      `json:"collectibleId"`
	BuyerUserID    uuid.UUID      `json:"buyerUserId"`
	UnitPrice      int64          `json:"unitPrice"`
	CreatorFee     int64          `json:"creatorFee"`
	PlatformFee    int64          `json:"platformFee"`
	TotalPaid      int64          `json:"totalPaid"`
	ExternalTxHash string         `json:"externalTxHash"`
	Status         PurchaseStatus `json:"status"`
	FailureReason  null.String    `json:"failureReason,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// PurchaseInput is the request body for creating a purchase
type PurchaseInput struct {
	CollectibleID     int64 `json:"collectible_id" binding:"required"`
	SidePaymentAmount int64 `json:"side_payment_amount"`
}

// PurchaseResponse is the success payload returned to the buyer
type PurchaseResponse struct {
	Success       bool   `json:"success"`
	TxHash        string `json:"tx_hash"`
	TotalDeducted int64  `json:"total_deducted"`
	NewBalance    int64  `json:"new_balance"`
}
