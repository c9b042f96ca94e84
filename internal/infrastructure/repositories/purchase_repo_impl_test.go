package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
)

func samplePurchase(txHash string) *entities.Purchase {
	return &entities.Purchase{
		ID:             uuid.New(),
		CollectibleID:  uuid.New(),
		BuyerUserID:    uuid.New(),
		UnitPrice:      7_500_000,
		CreatorFee:     375_000,
		PlatformFee:    375_000,
		TotalPaid:      8_250_000,
		ExternalTxHash: txHash,
		Status:         entities.PurchaseStatusConfirmed,
	}
}

func TestPurchaseRepository_CreateIfAbsentIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	createPurchaseTable(t, db)
	repo := NewPurchaseRepository(db)
	ctx := context.Background()

	p := samplePurchase("0x" + "11")
	inserted, err := repo.CreateIfAbsent(ctx, p)
	require.NoError(t, err)
	require.True(t, inserted)

	// A replay with the same settlement hash is silently absorbed.
	replay := samplePurchase(p.ExternalTxHash)
	inserted, err = repo.CreateIfAbsent(ctx, replay)
	require.NoError(t, err)
	require.False(t, inserted)

	var count int64
	require.NoError(t, db.Table("purchases").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestPurchaseRepository_CreateIfAbsentLosesInsertRace(t *testing.T) {
	db := newTestDB(t)
	createPurchaseTable(t, db)
	repo := NewPurchaseRepository(db)
	ctx := context.Background()

	p := samplePurchase("0xraced")

	// A rival settlement of the same hash lands between the existence check
	// and the insert, so the insert itself hits the unique constraint.
	raced := false
	err := db.Callback().Create().Before("gorm:create").Register("rival_settlement", func(tx *gorm.DB) {
		if raced {
			return
		}
		raced = true
		rival := samplePurchase(p.ExternalTxHash)
		mustExec(t, db, `INSERT INTO purchases
			(id, collectible_id, buyer_user_id, unit_price, creator_fee, platform_fee, total_paid, external_tx_hash, status, created_at, updated_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			rival.ID.String(), rival.CollectibleID.String(), rival.BuyerUserID.String(),
			rival.UnitPrice, rival.CreatorFee, rival.PlatformFee, rival.TotalPaid,
			rival.ExternalTxHash, string(rival.Status), time.Now(), time.Now())
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Callback().Create().Remove("rival_settlement") })

	inserted, err := repo.CreateIfAbsent(ctx, p)
	require.NoError(t, err)
	require.False(t, inserted)
	require.True(t, raced)

	var count int64
	require.NoError(t, db.Table("purchases").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestPurchaseRepository_GetByTxHash(t *testing.T) {
	db := newTestDB(t)
	createPurchaseTable(t, db)
	repo := NewPurchaseRepository(db)
	ctx := context.Background()

	p := samplePurchase("0xfeed")
	p.FailureReason = null.StringFrom("no receipt")
	p.Status = entities.PurchaseStatusTimedOut
	_, err := repo.CreateIfAbsent(ctx, p)
	require.NoError(t, err)

	got, err := repo.GetByTxHash(ctx, "0xfeed")
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)
	require.Equal(t, entities.PurchaseStatusTimedOut, got.Status)
	require.Equal(t, "no receipt", got.FailureReason.String)

	_, err = repo.GetByTxHash(ctx, "0xmissing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPurchaseRepository_GetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	createPurchaseTable(t, db)
	repo := NewPurchaseRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPurchaseRepository_GetByUserIDPagination(t *testing.T) {
	db := newTestDB(t)
	createPurchaseTable(t, db)
	repo := NewPurchaseRepository(db)
	ctx := context.Background()

	buyer := uuid.New()
	for i := 0; i < 4; i++ {
		p := samplePurchase(uuid.NewString())
		p.BuyerUserID = buyer
		_, err := repo.CreateIfAbsent(ctx, p)
		require.NoError(t, err)
	}
	other := samplePurchase(uuid.NewString())
	_, err := repo.CreateIfAbsent(ctx, other)
	require.NoError(t, err)

	page, total, err := repo.GetByUserID(ctx, buyer, 3, 0)
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Len(t, page, 3)
}

func TestPurchaseRepository_StatusTransitions(t *testing.T) {
	db := newTestDB(t)
	createPurchaseTable(t, db)
	repo := NewPurchaseRepository(db)
	ctx := context.Background()

	p := samplePurchase("0xaaa")
	p.Status = entities.PurchaseStatusTimedOut
	_, err := repo.CreateIfAbsent(ctx, p)
	require.NoError(t, err)

	pending, err := repo.GetByStatus(ctx, entities.PurchaseStatusTimedOut, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, repo.UpdateStatus(ctx, p.ID, entities.PurchaseStatusConfirmedLate))

	pending, err = repo.GetByStatus(ctx, entities.PurchaseStatusTimedOut, 10)
	require.NoError(t, err)
	require.Empty(t, pending)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PurchaseStatusConfirmedLate, got.Status)

	require.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), entities.PurchaseStatusFailed), domainerrors.ErrNotFound)
}

func TestPurchaseRepository_GetByStatusOldestFirst(t *testing.T) {
	db := newTestDB(t)
	createPurchaseTable(t, db)
	repo := NewPurchaseRepository(db)
	ctx := context.Background()

	first := samplePurchase("0x01")
	first.Status = entities.PurchaseStatusTimedOut
	_, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	second := samplePurchase("0x02")
	second.Status = entities.PurchaseStatusTimedOut
	_, err = repo.CreateIfAbsent(ctx, second)
	require.NoError(t, err)

	pending, err := repo.GetByStatus(ctx, entities.PurchaseStatusTimedOut, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, first.ID, pending[0].ID)
}
