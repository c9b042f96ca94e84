package entities

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEntryKind classifies a balance mutation
type LedgerEntryKind string

const (
	LedgerEntryKindDebit  LedgerEntryKind = "debit"
	LedgerEntryKindRefund LedgerEntryKind = "refund"
	LedgerEntryKindBonus  LedgerEntryKind = "bonus"
)

// Balance is a user's spendable internal balance, denominated in base units
// of the payment token (6 decimals). It never goes below zero; every change
// is paired with an append-only LedgerEntry.
type Balance struct {
	UserID    uuid.UUID `json:"userId"`
	Amount    int64     `json:"amount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LedgerEntry is an immutable record of a single balance mutation.
// Amount is signed: debits are negative, refunds and bonuses positive.
type LedgerEntry struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Amount      int64           `json:"amount"`
	Kind        LedgerEntryKind `json:"kind"`
	ReferenceID string          `json:"referenceId"`
	CreatedAt   time.Time       `json:"createdAt"`
}
