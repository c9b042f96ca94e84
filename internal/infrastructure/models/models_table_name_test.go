package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "balances", Balance{}.TableName())
	assert.Equal(t, "ledger_entries", LedgerEntry{}.TableName())
	assert.Equal(t, "collectibles", Collectible{}.TableName())
	assert.Equal(t, "purchases", Purchase{}.TableName())
	assert.Equal(t, "wallets", Wallet{}.TableName())
}
