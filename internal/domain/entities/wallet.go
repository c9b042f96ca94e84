package entities

import (
	"time"

	"github.com/google/uuid"
)

// WalletKind distinguishes how a user's address is controlled
type WalletKind string

const (
	WalletKindExternal  WalletKind = "external"
	WalletKindCustodial WalletKind = "custodial"
)

// Wallet maps a user to an external ledger address. Custodial wallets carry
// the user's encrypted control key; the derived address is a pure function
// of that key plus a fixed salt and is never stored as a secret.
type Wallet struct {
	ID                  uuid.UUID  `json:"id"`
	UserID              uuid.UUID  `json:"userId"`
	Address             string     `json:"address"`
	Kind                WalletKind `json:"kind"`
	EncryptedControlKey string     `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
}
