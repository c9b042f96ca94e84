package usecases

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"mintworks.backend/internal/config"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
	"mintworks.backend/internal/domain/repositories"
	"mintworks.backend/pkg/logger"
	"mintworks.backend/pkg/utils"
)

// PriceQuoter resolves the current cost of a collectible
type PriceQuoter interface {
	Quote(ctx context.Context, collectibleID int64) (*entities.PriceQuote, error)
}

// AddressResolver resolves the external ledger address for a user
type AddressResolver interface {
	ResolveAddress(ctx context.Context, userID uuid.UUID) (string, error)
}

// OperationSubmitter drives an external operation to a terminal state
type OperationSubmitter interface {
	Submit(ctx context.Context, to common.Address, data []byte) (string, error)
	Operator() common.Address
}

// RegistryReader is the read-only registry access the reconciler needs
type RegistryReader interface {
	CallView(ctx context.Context, to string, data []byte) ([]byte, error)
	GetTokenBalance(ctx context.Context, tokenAddress, ownerAddress string) (*big.Int, error)
	GetTokenAllowance(ctx context.Context, tokenAddress, ownerAddress, spenderAddress string) (*big.Int, error)
}

// PurchaseUsecase runs the purchase settlement saga: reserve internal
// balance, assemble and submit the external operation, then commit the
// purchase record or compensate the reservation. One request is strictly
// sequential; concurrency is only contended at the balance reservation.
type PurchaseUsecase struct {
	balanceRepo     repositories.BalanceRepository
	purchaseRepo    repositories.PurchaseRepository
	collectibleRepo repositories.CollectibleRepository
	uow             repositories.UnitOfWork
	pricing         PriceQuoter
	wallets         AddressResolver
	builder         *TxBuilder
	submitter       OperationSubmitter
	registry        RegistryReader
	cfg             config.PipelineConfig
	chain           config.ChainConfig
}

// NewPurchaseUsecase creates a new purchase usecase
func NewPurchaseUsecase(
	balanceRepo repositories.BalanceRepository,
	purchaseRepo repositories.PurchaseRepository,
	collectibleRepo repositories.CollectibleRepository,
	uow repositories.UnitOfWork,
	pricing PriceQuoter,
	wallets AddressResolver,
	builder *TxBuilder,
	submitter OperationSubmitter,
	registry RegistryReader,
	cfg config.PipelineConfig,
	chain config.ChainConfig,
) *PurchaseUsecase {
	return &PurchaseUsecase{
		balanceRepo:     balanceRepo,
		purchaseRepo:    purchaseRepo,
		collectibleRepo: collectibleRepo,
		uow:             uow,
		pricing:         pricing,
		wallets:         wallets,
		builder:         builder,
		submitter:       submitter,
		registry:        registry,
		cfg:             cfg,
		chain:           chain,
	}
}

// Purchase executes the full settlement saga for one unit of a collectible.
// Failures before the reservation surface without cleanup; failures after it
// compensate the reservation before surfacing, so "purchase failed" always
// implies "balance unchanged".
func (u *PurchaseUsecase) Purchase(ctx context.Context, userID uuid.UUID, input *entities.PurchaseInput) (*entities.PurchaseResponse, error) {
	if input == nil || input.CollectibleID <= 0 {
		return nil, domainerrors.BadRequest("collectible_id is required")
	}
	if input.SidePaymentAmount < 0 {
		return nil, domainerrors.BadRequest("side_payment_amount cannot be negative")
	}

	quote, err := u.pricing.Quote(ctx, input.CollectibleID)
	if err != nil {
		return nil, err
	}

	buyerAddress, err := u.wallets.ResolveAddress(ctx, userID)
	if err != nil {
		return nil, err
	}

	creatorUserID, creatorAddress, err := u.resolveCreator(ctx, input.CollectibleID, userID, buyerAddress)
	if err != nil {
		return nil, err
	}

	total := quote.Total + input.SidePaymentAmount
	referenceID := utils.NewID().String()

	if err := u.balanceRepo.Reserve(ctx, userID, total, referenceID); err != nil {
		purchasesTotal.WithLabelValues("insufficient_balance").Inc()
		return nil, err
	}

	// From here on every failure must compensate before surfacing.

	buyer := common.HexToAddress(buyerAddress)
	creator := common.HexToAddress(creatorAddress)

	snapshot, err := u.holdingsOf(ctx, buyer, input.CollectibleID)
	if err != nil {
		return nil, u.compensateAndFail(ctx, userID, total, referenceID,
			fmt.Errorf("pre-purchase snapshot failed: %w", err))
	}

	maxCost := u.builder.MaxCost(total)

	if err := u.checkOperatingCapital(ctx, maxCost); err != nil {
		return nil, u.compensateAndFail(ctx, userID, total, referenceID, err)
	}

	allowance, err := u.registry.GetTokenAllowance(ctx, u.chain.PaymentToken, u.submitter.Operator().Hex(), u.chain.RegistryAddress)
	if err != nil {
		return nil, u.compensateAndFail(ctx, userID, total, referenceID,
			fmt.Errorf("allowance check failed: %w", err))
	}

	calls := u.builder.BuildPurchaseCalls(quote, buyer, creator, allowance, maxCost)
	to, data, err := u.builder.Batch(calls)
	if err != nil {
		return nil, u.compensateAndFail(ctx, userID, total, referenceID, err)
	}

	txHash, err := u.submitter.Submit(ctx, to, data)
	if err != nil {
		compErr := u.compensateAndFail(ctx, userID, total, referenceID, err)
		if errors.Is(err, domainerrors.ErrTimedOut) && txHash != "" {
			// The true outcome is unknown; keep a record for the sweep job
			// and manual reconciliation.
			u.recordTimedOut(ctx, input.CollectibleID, creatorUserID, creatorAddress, userID, quote, total, txHash, err)
		}
		return nil, compErr
	}

	return u.settle(ctx, userID, creatorUserID, creatorAddress, buyer, input.CollectibleID, quote, total, referenceID, snapshot, txHash)
}

// settle is the reconciliation step after a confirmed submission. The
// external transfer is authoritative at this point, so nothing here rolls
// the purchase back.
func (u *PurchaseUsecase) settle(
	ctx context.Context,
	userID uuid.UUID,
	creatorUserID uuid.UUID,
	creatorAddress string,
	buyer common.Address,
	collectibleID int64,
	quote *entities.PriceQuote,
	total int64,
	referenceID string,
	snapshot *big.Int,
	txHash string,
) (*entities.PurchaseResponse, error) {
	if holdings, err := u.holdingsOf(ctx, buyer, collectibleID); err != nil {
		logger.Warn(ctx, "reconciliation read failed", zap.String("tx_hash", txHash), zap.Error(err))
	} else {
		delta := new(big.Int).Sub(holdings, snapshot)
		if delta.Cmp(big.NewInt(1)) != 0 {
			logger.Warn(ctx, "reconciliation mismatch",
				zap.String("tx_hash", txHash),
				zap.Int64("collectible_id", collectibleID),
				zap.String("delta", delta.String()))
		}
	}

	var collectible *entities.Collectible
	var inserted bool
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		collectible, err = u.collectibleRepo.RegisterIfAbsent(txCtx, &entities.Collectible{
			ID:               utils.NewID(),
			ExternalID:       collectibleID,
			CreatorUserID:    creatorUserID,
			CreatorAddress:   creatorAddress,
			BasePrice:        u.cfg.DefaultBasePrice,
			CurveCoefficient: u.cfg.CurveCoefficient,
			Exists:           true,
		})
		if err != nil {
			return err
		}
		if !collectible.Exists {
			if err := u.collectibleRepo.MarkExists(txCtx, collectibleID); err != nil {
				return err
			}
		}

		inserted, err = u.purchaseRepo.CreateIfAbsent(txCtx, &entities.Purchase{
			ID:             utils.NewID(),
			CollectibleID:  collectible.ID,
			BuyerUserID:    userID,
			UnitPrice:      quote.Reserve,
			CreatorFee:     quote.CreatorFee,
			PlatformFee:    quote.PlatformFee,
			TotalPaid:      total,
			ExternalTxHash: txHash,
			Status:         entities.PurchaseStatusConfirmed,
		})
		return err
	})
	if err != nil {
		// The external transfer is final; persistence failure is surfaced
		// for retry but must not trigger compensation.
		purchasesTotal.WithLabelValues("persist_failed").Inc()
		return nil, fmt.Errorf("settlement persisted externally but not locally (tx %s): %w", txHash, err)
	}

	deducted := total
	if !inserted {
		// Another saga already recorded this settlement, so this run's
		// reservation is redundant and goes back to the buyer.
		logger.Info(ctx, "settlement replayed, record already present", zap.String("tx_hash", txHash))
		if err := u.balanceRepo.Compensate(ctx, userID, total, referenceID); err != nil {
			logger.Error(ctx, "redundant reservation refund failed",
				zap.String("reference_id", referenceID),
				zap.Int64("amount", total),
				zap.Error(err))
		} else {
			deducted = 0
		}
	}

	if bonus := applyBps(big.NewInt(total), u.cfg.BonusBps).Int64(); bonus > 0 {
		if err := u.balanceRepo.Bonus(ctx, userID, bonus, txHash); err != nil {
			logger.Warn(ctx, "bonus grant failed", zap.String("tx_hash", txHash), zap.Error(err))
		}
	}

	balance, err := u.balanceRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	purchasesTotal.WithLabelValues("confirmed").Inc()
	logger.Info(ctx, "purchase settled",
		zap.String("tx_hash", txHash),
		zap.Int64("collectible_id", collectibleID),
		zap.Int64("total_paid", total))

	return &entities.PurchaseResponse{
		Success:       true,
		TxHash:        txHash,
		TotalDeducted: deducted,
		NewBalance:    balance.Amount,
	}, nil
}

// GetPurchase gets a purchase record by ID
func (u *PurchaseUsecase) GetPurchase(ctx context.Context, id uuid.UUID) (*entities.Purchase, error) {
	return u.purchaseRepo.GetByID(ctx, id)
}

// GetPurchasesByUser lists a buyer's purchases
func (u *PurchaseUsecase) GetPurchasesByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.Purchase, int, error) {
	offset := (page - 1) * limit
	return u.purchaseRepo.GetByUserID(ctx, userID, limit, offset)
}

// resolveCreator determines the creator payout side of the transfer. The
// first-ever purchase bootstraps the entry with the buyer as creator.
func (u *PurchaseUsecase) resolveCreator(ctx context.Context, collectibleID int64, buyerUserID uuid.UUID, buyerAddress string) (uuid.UUID, string, error) {
	collectible, err := u.collectibleRepo.GetByExternalID(ctx, collectibleID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return buyerUserID, buyerAddress, nil
		}
		return uuid.Nil, "", err
	}

	if collectible.CreatorAddress != "" {
		return collectible.CreatorUserID, collectible.CreatorAddress, nil
	}

	address, err := u.wallets.ResolveAddress(ctx, collectible.CreatorUserID)
	if err != nil {
		return uuid.Nil, "", err
	}
	return collectible.CreatorUserID, address, nil
}

// checkOperatingCapital verifies the operating account can front the
// purchase before it is attempted.
func (u *PurchaseUsecase) checkOperatingCapital(ctx context.Context, maxCost *big.Int) error {
	balance, err := u.registry.GetTokenBalance(ctx, u.chain.PaymentToken, u.submitter.Operator().Hex())
	if err != nil {
		return fmt.Errorf("operating balance check failed: %w", err)
	}
	if balance.Cmp(maxCost) < 0 {
		return fmt.Errorf("%w: have %s, need %s", domainerrors.ErrOperatingCapital, balance, maxCost)
	}
	return nil
}

func (u *PurchaseUsecase) holdingsOf(ctx context.Context, owner common.Address, collectibleID int64) (*big.Int, error) {
	data := append([]byte{}, HoldingsOfSelector...)
	data = append(data, common.LeftPadBytes(owner.Bytes(), EVMWordSize)...)
	data = append(data, common.LeftPadBytes(big.NewInt(collectibleID).Bytes(), EVMWordSize)...)

	result, err := u.registry.CallView(ctx, u.chain.RegistryAddress, data)
	if err != nil {
		return nil, err
	}
	return word(result, 0), nil
}

// compensateAndFail restores the reserved amount and returns the causal
// error. Compensation is idempotent per reference, so a retried failure
// path cannot double-credit.
func (u *PurchaseUsecase) compensateAndFail(ctx context.Context, userID uuid.UUID, amount int64, referenceID string, cause error) error {
	if err := u.balanceRepo.Compensate(ctx, userID, amount, referenceID); err != nil {
		// The debit stands with no matching refund; this needs operator
		// attention, so it outranks the original cause in the response.
		logger.Error(ctx, "compensation failed",
			zap.String("reference_id", referenceID),
			zap.Int64("amount", amount),
			zap.Error(err))
		return fmt.Errorf("compensation failed after %v: %w", cause, err)
	}
	compensationsTotal.Inc()
	purchasesTotal.WithLabelValues("compensated").Inc()
	logger.Info(ctx, "reservation compensated",
		zap.String("reference_id", referenceID),
		zap.Int64("amount", amount),
		zap.NamedError("cause", cause))
	return cause
}

// recordTimedOut persists a timed-out purchase so the sweep job and manual
// reconciliation can find it. Best effort: the compensation already ran.
func (u *PurchaseUsecase) recordTimedOut(
	ctx context.Context,
	collectibleID int64,
	creatorUserID uuid.UUID,
	creatorAddress string,
	userID uuid.UUID,
	quote *entities.PriceQuote,
	total int64,
	txHash string,
	cause error,
) {
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		collectible, err := u.collectibleRepo.RegisterIfAbsent(txCtx, &entities.Collectible{
			ID:               utils.NewID(),
			ExternalID:       collectibleID,
			CreatorUserID:    creatorUserID,
			CreatorAddress:   creatorAddress,
			BasePrice:        u.cfg.DefaultBasePrice,
			CurveCoefficient: u.cfg.CurveCoefficient,
			Exists:           false,
		})
		if err != nil {
			return err
		}
		_, err = u.purchaseRepo.CreateIfAbsent(txCtx, &entities.Purchase{
			ID:             utils.NewID(),
			CollectibleID:  collectible.ID,
			BuyerUserID:    userID,
			UnitPrice:      quote.Reserve,
			CreatorFee:     quote.CreatorFee,
			PlatformFee:    quote.PlatformFee,
			TotalPaid:      total,
			ExternalTxHash: txHash,
			Status:         entities.PurchaseStatusTimedOut,
			FailureReason:  null.StringFrom(cause.Error()),
		})
		return err
	})
	if err != nil {
		logger.Error(ctx, "failed to record timed-out purchase",
			zap.String("tx_hash", txHash), zap.Error(err))
	}
}
