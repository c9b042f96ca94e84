package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
)

func TestWalletRepository_GetByUserIDPrefersExternal(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	custodial := &entities.Wallet{
		ID:                  uuid.New(),
		UserID:              userID,
		Kind:                entities.WalletKindCustodial,
		EncryptedControlKey: "sealed",
	}
	require.NoError(t, repo.Create(ctx, custodial))
	time.Sleep(2 * time.Millisecond)

	external := &entities.Wallet{
		ID:      uuid.New(),
		UserID:  userID,
		Address: "0x1111111111111111111111111111111111111111",
		Kind:    entities.WalletKindExternal,
	}
	require.NoError(t, repo.Create(ctx, external))

	got, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, entities.WalletKindExternal, got.Kind)
	require.Equal(t, external.Address, got.Address)
}

func TestWalletRepository_GetByUserIDCustodialFallback(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	custodial := &entities.Wallet{
		ID:                  uuid.New(),
		UserID:              userID,
		Kind:                entities.WalletKindCustodial,
		EncryptedControlKey: "sealed",
	}
	require.NoError(t, repo.Create(ctx, custodial))

	got, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, entities.WalletKindCustodial, got.Kind)
	require.Equal(t, "sealed", got.EncryptedControlKey)
}

func TestWalletRepository_GetByUserIDNone(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)

	_, err := repo.GetByUserID(context.Background(), uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrWalletNotFound)
}

func TestWalletRepository_ListByUserID(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Create(ctx, &entities.Wallet{
			ID:     uuid.New(),
			UserID: userID,
			Kind:   entities.WalletKindExternal,
		}))
	}
	require.NoError(t, repo.Create(ctx, &entities.Wallet{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Kind:   entities.WalletKindExternal,
	}))

	wallets, err := repo.ListByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
}
