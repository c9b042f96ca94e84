package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createBalanceTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE balances (
		user_id TEXT PRIMARY KEY,
		amount INTEGER NOT NULL DEFAULT 0 CHECK(amount >= 0),
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE ledger_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		kind TEXT NOT NULL,
		reference_id TEXT NOT NULL,
		created_at DATETIME,
		UNIQUE(kind, reference_id)
	);`)
}

func createCollectibleTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE collectibles (
		id TEXT PRIMARY KEY,
		external_id INTEGER UNIQUE NOT NULL,
		creator_user_id TEXT NOT NULL,
		creator_address TEXT NOT NULL,
		base_price INTEGER NOT NULL,
		curve_coefficient INTEGER NOT NULL,
		registered BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createPurchaseTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE purchases (
		id TEXT PRIMARY KEY,
		collectible_id TEXT NOT NULL,
		buyer_user_id TEXT NOT NULL,
		unit_price INTEGER NOT NULL,
		creator_fee INTEGER NOT NULL,
		platform_fee INTEGER NOT NULL,
		total_paid INTEGER NOT NULL,
		external_tx_hash TEXT UNIQUE NOT NULL,
		status TEXT NOT NULL,
		failure_reason TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createWalletTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		address TEXT NOT NULL,
		kind TEXT NOT NULL,
		encrypted_control_key TEXT,
		created_at DATETIME
	);`)
}
