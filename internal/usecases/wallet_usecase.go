package usecases

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
	"mintworks.backend/internal/domain/repositories"
	"mintworks.backend/pkg/keycrypt"
	"mintworks.backend/pkg/utils"
)

// derivationSalt fixes the custodial address derivation. Changing it would
// change every derived address, so it is a constant, not configuration.
var derivationSalt = []byte("mintworks.wallet.derivation.v1")

// WalletUsecase resolves the external ledger address controlling funds for a
// user: an explicitly registered external address wins, otherwise the address
// is derived on demand from the user's encrypted control key.
type WalletUsecase struct {
	walletRepo repositories.WalletRepository
	cipher     *keycrypt.Cipher
}

// NewWalletUsecase creates a new wallet usecase
func NewWalletUsecase(walletRepo repositories.WalletRepository, cipher *keycrypt.Cipher) *WalletUsecase {
	return &WalletUsecase{
		walletRepo: walletRepo,
		cipher:     cipher,
	}
}

// ResolveAddress returns the address for a user, preferring an external
// wallet over a custodial one. Resolution happens before any balance
// reservation, so a failure here needs no compensation.
func (u *WalletUsecase) ResolveAddress(ctx context.Context, userID uuid.UUID) (string, error) {
	wallet, err := u.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}

	if wallet.Kind == entities.WalletKindExternal {
		return wallet.Address, nil
	}
	return u.deriveAddress(wallet.EncryptedControlKey)
}

// ConnectExternal registers an externally controlled address for a user
func (u *WalletUsecase) ConnectExternal(ctx context.Context, userID uuid.UUID, address string) (*entities.Wallet, error) {
	if !common.IsHexAddress(address) {
		return nil, domainerrors.BadRequest("invalid wallet address")
	}

	wallet := &entities.Wallet{
		ID:      utils.NewID(),
		UserID:  userID,
		Address: common.HexToAddress(address).Hex(),
		Kind:    entities.WalletKindExternal,
	}
	if err := u.walletRepo.Create(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// CreateCustodial provisions a custodial wallet: a fresh random control key
// is sealed with the server key and stored; the address is derived, returned
// to the caller, and never persisted alongside the key.
func (u *WalletUsecase) CreateCustodial(ctx context.Context, userID uuid.UUID) (*entities.Wallet, string, error) {
	controlKey := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, controlKey); err != nil {
		return nil, "", fmt.Errorf("failed to generate control key: %w", err)
	}
	defer keycrypt.Zero(controlKey)

	sealed, err := u.cipher.Seal(controlKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to seal control key: %w", err)
	}

	address, err := u.deriveFromPlaintext(controlKey)
	if err != nil {
		return nil, "", err
	}

	wallet := &entities.Wallet{
		ID:                  utils.NewID(),
		UserID:              userID,
		Kind:                entities.WalletKindCustodial,
		EncryptedControlKey: sealed,
	}
	if err := u.walletRepo.Create(ctx, wallet); err != nil {
		return nil, "", err
	}
	return wallet, address, nil
}

// ListWallets lists a user's wallets
func (u *WalletUsecase) ListWallets(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	return u.walletRepo.ListByUserID(ctx, userID)
}

// deriveAddress decrypts the control key, derives the address, and zeroes
// the plaintext before returning on every path.
func (u *WalletUsecase) deriveAddress(encryptedControlKey string) (string, error) {
	controlKey, err := u.cipher.Open(encryptedControlKey)
	if err != nil {
		return "", fmt.Errorf("failed to open control key: %w", err)
	}
	defer keycrypt.Zero(controlKey)

	return u.deriveFromPlaintext(controlKey)
}

// deriveFromPlaintext is the fixed derivation function: HKDF over the control
// key with the fixed salt yields the secp256k1 scalar, whose public key gives
// the address. Reads continue down the HKDF stream until a valid scalar
// appears, so the mapping stays total and deterministic.
func (u *WalletUsecase) deriveFromPlaintext(controlKey []byte) (string, error) {
	reader := hkdf.New(sha256.New, controlKey, derivationSalt, nil)

	seed := make([]byte, 32)
	defer keycrypt.Zero(seed)
	for attempt := 0; attempt < 8; attempt++ {
		if _, err := io.ReadFull(reader, seed); err != nil {
			return "", fmt.Errorf("derivation read failed: %w", err)
		}
		priv, err := ethcrypto.ToECDSA(seed)
		if err != nil {
			continue
		}
		return ethcrypto.PubkeyToAddress(priv.PublicKey).Hex(), nil
	}
	return "", fmt.Errorf("derivation produced no valid key")
}
