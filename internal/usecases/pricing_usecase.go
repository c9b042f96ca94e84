package usecases

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"mintworks.backend/internal/config"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
)

// RegistryCaller is the read-only slice of the registry client the pricing
// resolver needs.
type RegistryCaller interface {
	CallView(ctx context.Context, to string, data []byte) ([]byte, error)
}

// PricingUsecase resolves the current unit cost of a collectible from the
// external registry. It is read-only; the only tolerated registry anomaly is
// "entry does not exist", which yields the bootstrap default schedule.
type PricingUsecase struct {
	registry        RegistryCaller
	registryAddress string
	cfg             config.PipelineConfig
}

// NewPricingUsecase creates a new pricing usecase
func NewPricingUsecase(registry RegistryCaller, registryAddress string, cfg config.PipelineConfig) *PricingUsecase {
	return &PricingUsecase{
		registry:        registry,
		registryAddress: registryAddress,
		cfg:             cfg,
	}
}

// Quote returns the registry's cost decomposition for one unit. A collectible
// the registry does not know yet gets the deterministic default schedule so
// the first-ever purchase can bootstrap the entry.
func (u *PricingUsecase) Quote(ctx context.Context, collectibleID int64) (*entities.PriceQuote, error) {
	exists, err := u.entryExists(ctx, collectibleID)
	if err != nil {
		return nil, fmt.Errorf("%w: exists check: %v", domainerrors.ErrPricing, err)
	}

	if !exists {
		return u.defaultSchedule(collectibleID), nil
	}

	data := append(append([]byte{}, CalculateCostSelector...), common.LeftPadBytes(big.NewInt(collectibleID).Bytes(), EVMWordSize)...)
	data = append(data, common.LeftPadBytes(big.NewInt(1).Bytes(), EVMWordSize)...)

	result, err := u.registry.CallView(ctx, u.registryAddress, data)
	if err != nil {
		return nil, fmt.Errorf("%w: calculateCost: %v", domainerrors.ErrPricing, err)
	}
	if len(result) < 4*EVMWordSize {
		return nil, fmt.Errorf("%w: short calculateCost result (%d bytes)", domainerrors.ErrPricing, len(result))
	}

	reserve, okR := bigToInt64(word(result, 0))
	creatorFee, okC := bigToInt64(word(result, 1))
	platformFee, okP := bigToInt64(word(result, 2))
	total, okT := bigToInt64(word(result, 3))
	if !okR || !okC || !okP || !okT {
		return nil, fmt.Errorf("%w: calculateCost result out of range", domainerrors.ErrPricing)
	}

	return &entities.PriceQuote{
		CollectibleID: collectibleID,
		Reserve:       reserve,
		CreatorFee:    creatorFee,
		PlatformFee:   platformFee,
		Total:         total,
		Exists:        true,
	}, nil
}

// defaultSchedule is the fixed bootstrap price for the first-ever purchase
// of a collectible.
func (u *PricingUsecase) defaultSchedule(collectibleID int64) *entities.PriceQuote {
	base := big.NewInt(u.cfg.DefaultBasePrice)
	creatorFee := applyBps(base, u.cfg.CreatorFeeBps).Int64()
	platformFee := applyBps(base, u.cfg.PlatformFeeBps).Int64()

	return &entities.PriceQuote{
		CollectibleID: collectibleID,
		Reserve:       u.cfg.DefaultBasePrice,
		CreatorFee:    creatorFee,
		PlatformFee:   platformFee,
		Total:         u.cfg.DefaultBasePrice + creatorFee + platformFee,
		Exists:        false,
	}
}

func (u *PricingUsecase) entryExists(ctx context.Context, collectibleID int64) (bool, error) {
	data := append(append([]byte{}, EntryExistsSelector...), common.LeftPadBytes(big.NewInt(collectibleID).Bytes(), EVMWordSize)...)

	result, err := u.registry.CallView(ctx, u.registryAddress, data)
	if err != nil {
		return false, err
	}
	return word(result, 0).Sign() != 0, nil
}
