package usecases

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
	"mintworks.backend/internal/config"
	domainerrors "mintworks.backend/internal/domain/errors"
	"mintworks.backend/internal/infrastructure/blockchain"
	"mintworks.backend/pkg/logger"
)

// SubmissionState is one step of the submission lifecycle
type SubmissionState string

const (
	StateBuilt         SubmissionState = "built"
	StateFeesEstimated SubmissionState = "fees_estimated"
	StateSigned        SubmissionState = "signed"
	StateSubmitted     SubmissionState = "submitted"
	StateConfirmed     SubmissionState = "confirmed"
	StateReverted      SubmissionState = "reverted"
	StateTimedOut      SubmissionState = "timed_out"
)

// ChainBackend is the slice of the registry client the submitter needs
type ChainBackend interface {
	ChainID() *big.Int
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestFees(ctx context.Context) (tipCap, feeCap *big.Int, err error)
	PendingNonceAt(ctx context.Context, address string) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	GetTransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error)
	GetBlockNumber(ctx context.Context) (uint64, error)
}

// FeeSponsor requests fee relay sponsorship for a submission
type FeeSponsor interface {
	RequestSponsorship(ctx context.Context, req *blockchain.SponsorshipRequest) (*blockchain.SponsorshipResponse, error)
}

// SubmitLimiter throttles external writes from the shared operating account
type SubmitLimiter interface {
	Allow(ctx context.Context) (bool, error)
}

// Submission tracks one operation through the state machine. It is not
// reused; every Submit call builds a fresh one.
type Submission struct {
	State    SubmissionState
	To       common.Address
	Data     []byte
	GasLimit uint64
	TipCap   *big.Int
	FeeCap   *big.Int
	Nonce    uint64
	TxHash   string
	// FeeBumped records the one permitted underpriced retry.
	FeeBumped bool
}

// Submitter signs, sponsors, submits, and awaits finality of external
// operations with a bounded fee-bump retry.
type Submitter struct {
	chain       ChainBackend
	relay       FeeSponsor
	limiter     SubmitLimiter
	cfg         config.PipelineConfig
	operatorKey *ecdsa.PrivateKey
	operator    common.Address

	// sleep is swapped out by unit tests to avoid real polling delays.
	sleep func(ctx context.Context) error
}

// NewSubmitter creates a new submitter. operatorKeyHex is the operating
// account's control key.
func NewSubmitter(chain ChainBackend, relay FeeSponsor, limiter SubmitLimiter, cfg config.PipelineConfig, operatorKeyHex string) (*Submitter, error) {
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(operatorKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid operator private key: %w", err)
	}

	s := &Submitter{
		chain:       chain,
		relay:       relay,
		limiter:     limiter,
		cfg:         cfg,
		operatorKey: key,
		operator:    ethcrypto.PubkeyToAddress(key.PublicKey),
	}
	s.sleep = s.pollSleep
	return s, nil
}

// Operator returns the operating account address
func (s *Submitter) Operator() common.Address {
	return s.operator
}

// Submit drives one operation to a terminal state and returns the settlement
// identifier. The hash is returned for TimedOut failures too, since the true
// outcome is unknown and the hash is needed for follow-up.
func (s *Submitter) Submit(ctx context.Context, to common.Address, data []byte) (string, error) {
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx)
		if err != nil {
			return "", fmt.Errorf("rate limiter unavailable: %w", err)
		}
		if !allowed {
			return "", domainerrors.ErrRateLimited
		}
	}

	sub := &Submission{State: StateBuilt, To: to, Data: data}

	if err := s.estimateFees(ctx, sub); err != nil {
		return "", err
	}
	if err := s.sponsor(ctx, sub); err != nil {
		return "", err
	}

	tx, err := s.sign(ctx, sub)
	if err != nil {
		return "", err
	}

	if err := s.send(ctx, sub, tx); err != nil {
		if !sub.FeeBumped && isUnderpriced(err) {
			// Exactly one internal retry: bump both fee fields above the
			// reported floor and resubmit.
			logger.Warn(ctx, "submission underpriced, bumping fees",
				zap.String("tx_hash", sub.TxHash), zap.Error(err))
			feeBumpsTotal.Inc()
			if bumpErr := s.bumpFees(ctx, sub, err); bumpErr != nil {
				return "", bumpErr
			}
			tx, err = s.sign(ctx, sub)
			if err != nil {
				return "", err
			}
			err = s.send(ctx, sub, tx)
		}
		if err != nil {
			submissionsTotal.WithLabelValues("rejected").Inc()
			return "", fmt.Errorf("submission rejected: %w", err)
		}
	}

	return s.await(ctx, sub)
}

// estimateFees moves Built -> FeesEstimated: gas estimation plus a floor and
// a fixed multiplier above the node's suggestion.
func (s *Submitter) estimateFees(ctx context.Context, sub *Submission) error {
	msg := ethereum.CallMsg{
		From: s.operator,
		To:   &sub.To,
		Data: sub.Data,
	}
	gasLimit, err := s.chain.EstimateGas(ctx, msg)
	if err != nil {
		return fmt.Errorf("gas estimation failed: %w", err)
	}
	// Headroom over the estimate; the relay may revise this again.
	sub.GasLimit = gasLimit + gasLimit/5

	tipCap, feeCap, err := s.chain.SuggestFees(ctx)
	if err != nil {
		return fmt.Errorf("fee suggestion failed: %w", err)
	}

	sub.TipCap = applyBps(tipCap, s.cfg.FeeMultiplierBps)
	sub.FeeCap = applyBps(feeCap, s.cfg.FeeMultiplierBps)

	floor := big.NewInt(s.cfg.FeeFloorWei)
	if sub.FeeCap.Cmp(floor) < 0 {
		sub.FeeCap = floor
	}
	if sub.FeeCap.Cmp(sub.TipCap) < 0 {
		sub.FeeCap = new(big.Int).Set(sub.TipCap)
	}

	sub.State = StateFeesEstimated
	return nil
}

// sponsor requests fee relay sponsorship and merges any revised gas limit.
func (s *Submitter) sponsor(ctx context.Context, sub *Submission) error {
	resp, err := s.relay.RequestSponsorship(ctx, &blockchain.SponsorshipRequest{
		From:                 s.operator.Hex(),
		To:                   sub.To.Hex(),
		Data:                 "0x" + hex.EncodeToString(sub.Data),
		GasLimit:             sub.GasLimit,
		MaxFeePerGas:         sub.FeeCap.String(),
		MaxPriorityFeePerGas: sub.TipCap.String(),
	})
	if err != nil {
		return fmt.Errorf("fee sponsorship failed: %w", err)
	}
	if !resp.Approved {
		return fmt.Errorf("fee sponsorship declined: %s", resp.Reason)
	}
	if resp.RevisedGasLimit > 0 {
		sub.GasLimit = resp.RevisedGasLimit
	}
	return nil
}

// sign moves the submission to Signed with a fresh nonce
func (s *Submitter) sign(ctx context.Context, sub *Submission) (*types.Transaction, error) {
	nonce, err := s.chain.PendingNonceAt(ctx, s.operator.Hex())
	if err != nil {
		return nil, fmt.Errorf("nonce lookup failed: %w", err)
	}
	sub.Nonce = nonce

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chain.ChainID(),
		Nonce:     sub.Nonce,
		GasTipCap: sub.TipCap,
		GasFeeCap: sub.FeeCap,
		Gas:       sub.GasLimit,
		To:        &sub.To,
		Data:      sub.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chain.ChainID()), s.operatorKey)
	if err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}
	sub.State = StateSigned
	sub.TxHash = signed.Hash().Hex()
	return signed, nil
}

func (s *Submitter) send(ctx context.Context, sub *Submission, tx *types.Transaction) error {
	if err := s.chain.SendTransaction(ctx, tx); err != nil {
		return err
	}
	sub.State = StateSubmitted
	logger.Info(ctx, "operation submitted",
		zap.String("tx_hash", sub.TxHash),
		zap.Uint64("nonce", sub.Nonce),
		zap.Uint64("gas_limit", sub.GasLimit))
	return nil
}

// bumpFees raises both fee fields above the service-reported price floor
func (s *Submitter) bumpFees(ctx context.Context, sub *Submission, cause error) error {
	floor := parseReportedFloor(cause)
	if floor == nil {
		_, suggested, err := s.chain.SuggestFees(ctx)
		if err != nil {
			return fmt.Errorf("fee re-suggestion failed: %w", err)
		}
		floor = suggested
	}
	if floor.Cmp(sub.FeeCap) < 0 {
		floor = sub.FeeCap
	}

	bumped := applyBps(floor, s.cfg.FeeMultiplierBps)
	if bumped.Cmp(floor) <= 0 {
		bumped = new(big.Int).Add(floor, big.NewInt(1))
	}
	sub.FeeCap = bumped
	sub.TipCap = new(big.Int).Set(bumped)
	sub.FeeBumped = true
	return nil
}

// await polls for the receipt at a fixed interval up to a fixed number of
// attempts, then optionally waits for the confirmation depth.
func (s *Submitter) await(ctx context.Context, sub *Submission) (string, error) {
	var receipt *types.Receipt
	attempts := s.cfg.PollAttempts

	for i := 0; i < attempts; i++ {
		r, err := s.chain.GetTransactionReceipt(ctx, sub.TxHash)
		if err == nil && r != nil {
			receipt = r
			break
		}
		// Not mined yet, or a transient RPC failure; both consume one
		// attempt from the fixed budget.
		if err := s.sleep(ctx); err != nil {
			return sub.TxHash, err
		}
	}

	if receipt == nil {
		sub.State = StateTimedOut
		submissionsTotal.WithLabelValues(string(StateTimedOut)).Inc()
		return sub.TxHash, fmt.Errorf("%w: no receipt for %s after %d attempts", domainerrors.ErrTimedOut, sub.TxHash, attempts)
	}

	if receipt.Status == types.ReceiptStatusFailed {
		sub.State = StateReverted
		submissionsTotal.WithLabelValues(string(StateReverted)).Inc()
		return sub.TxHash, fmt.Errorf("%w: %s", domainerrors.ErrReverted, sub.TxHash)
	}

	if s.cfg.ConfirmationDepth > 0 && receipt.BlockNumber != nil {
		target := receipt.BlockNumber.Uint64() + s.cfg.ConfirmationDepth
		for i := 0; i < attempts; i++ {
			head, err := s.chain.GetBlockNumber(ctx)
			if err == nil && head >= target {
				break
			}
			if err := s.sleep(ctx); err != nil {
				return sub.TxHash, err
			}
		}
	}

	sub.State = StateConfirmed
	submissionsTotal.WithLabelValues(string(StateConfirmed)).Inc()
	return sub.TxHash, nil
}

func (s *Submitter) pollSleep(ctx context.Context) error {
	t := time.NewTimer(s.cfg.PollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isUnderpriced reports whether a submission was rejected for being priced
// under a pending replacement.
func isUnderpriced(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "underpriced")
}

// parseReportedFloor extracts the node-reported minimum price from an
// underpriced rejection, when present. Returns nil if the message carries
// no usable number.
func parseReportedFloor(err error) *big.Int {
	var floor *big.Int
	for _, field := range strings.Fields(err.Error()) {
		field = strings.Trim(field, ",.;:")
		v, ok := new(big.Int).SetString(field, 10)
		if !ok {
			continue
		}
		if floor == nil || v.Cmp(floor) > 0 {
			floor = v
		}
	}
	return floor
}
