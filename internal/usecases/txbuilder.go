package usecases

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"mintworks.backend/internal/config"
	"mintworks.backend/internal/domain/entities"
)

// Call is one (destination, payload) pair of the external operation
type Call struct {
	To   common.Address
	Data []byte
}

// TxBuilder assembles the external ledger operations for one purchase:
// spending pre-authorization, lazy registry creation, and the transfer
// itself. When more than one call is needed they are combined into a single
// atomic batch so partial application cannot occur past this point.
type TxBuilder struct {
	cfg      config.PipelineConfig
	registry common.Address
	token    common.Address
	executor common.Address
}

// NewTxBuilder creates a new transaction builder
func NewTxBuilder(cfg config.PipelineConfig, registryAddress, tokenAddress, executorAddress string) *TxBuilder {
	return &TxBuilder{
		cfg:      cfg,
		registry: common.HexToAddress(registryAddress),
		token:    common.HexToAddress(tokenAddress),
		executor: common.HexToAddress(executorAddress),
	}
}

// MaxCost returns the quoted total plus the slippage tolerance, absorbing
// bonding curve drift between quote and execution.
func (b *TxBuilder) MaxCost(total int64) *big.Int {
	quoted := big.NewInt(total)
	tolerance := applyBps(quoted, b.cfg.SlippageBps)
	return new(big.Int).Add(quoted, tolerance)
}

// BuildPurchaseCalls lists the calls required for this purchase, in order.
// currentAllowance is the operating account's live authorization toward the
// registry; it is shared across concurrent purchases, so it is re-checked
// for every batch rather than assumed sufficient.
func (b *TxBuilder) BuildPurchaseCalls(
	quote *entities.PriceQuote,
	buyer common.Address,
	creator common.Address,
	currentAllowance *big.Int,
	maxCost *big.Int,
) []Call {
	var calls []Call

	if currentAllowance == nil || currentAllowance.Cmp(maxCost) < 0 {
		calls = append(calls, Call{
			To:   b.token,
			Data: b.encodeApprove(maxCost),
		})
	}

	if !quote.Exists {
		calls = append(calls, Call{
			To:   b.registry,
			Data: b.encodeCreateEntry(quote.CollectibleID, creator),
		})
	}

	calls = append(calls, Call{
		To:   b.registry,
		Data: b.encodeTransferFor(quote.CollectibleID, buyer, maxCost),
	})

	return calls
}

// Batch collapses the call list into one (destination, payload) pair. A
// single call goes straight to its target; multiple calls go through the
// batch executor, which applies them all or reverts them all.
func (b *TxBuilder) Batch(calls []Call) (common.Address, []byte, error) {
	if len(calls) == 0 {
		return common.Address{}, nil, fmt.Errorf("no calls to batch")
	}
	if len(calls) == 1 {
		return calls[0].To, calls[0].Data, nil
	}

	tupleType, err := abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "target", Type: "address"},
		{Name: "callData", Type: "bytes"},
	})
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("failed to build batch tuple type: %w", err)
	}
	args := abi.Arguments{{Type: tupleType}}

	type batchCall struct {
		Target   common.Address
		CallData []byte
	}
	encoded := make([]batchCall, 0, len(calls))
	for _, c := range calls {
		encoded = append(encoded, batchCall{Target: c.To, CallData: c.Data})
	}

	packed, err := args.Pack(encoded)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("failed to pack batch calls: %w", err)
	}

	data := append(computeSelector("executeBatch((address,bytes)[])"), packed...)
	return b.executor, data, nil
}

func (b *TxBuilder) encodeApprove(amount *big.Int) []byte {
	data := append([]byte{}, ApproveSelector...)
	data = append(data, common.LeftPadBytes(b.registry.Bytes(), EVMWordSize)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), EVMWordSize)...)
	return data
}

func (b *TxBuilder) encodeCreateEntry(collectibleID int64, creator common.Address) []byte {
	data := append([]byte{}, CreateEntrySelector...)
	data = append(data, common.LeftPadBytes(big.NewInt(collectibleID).Bytes(), EVMWordSize)...)
	data = append(data, common.LeftPadBytes(creator.Bytes(), EVMWordSize)...)
	data = append(data, common.LeftPadBytes(big.NewInt(b.cfg.DefaultBasePrice).Bytes(), EVMWordSize)...)
	data = append(data, common.LeftPadBytes(big.NewInt(b.cfg.CurveCoefficient).Bytes(), EVMWordSize)...)
	return data
}

func (b *TxBuilder) encodeTransferFor(collectibleID int64, buyer common.Address, maxCost *big.Int) []byte {
	data := append([]byte{}, TransferForSelector...)
	data = append(data, common.LeftPadBytes(big.NewInt(collectibleID).Bytes(), EVMWordSize)...)
	data = append(data, common.LeftPadBytes(buyer.Bytes(), EVMWordSize)...)
	data = append(data, common.LeftPadBytes(big.NewInt(1).Bytes(), EVMWordSize)...)
	data = append(data, common.LeftPadBytes(maxCost.Bytes(), EVMWordSize)...)
	return data
}
