package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// nodeBackend is the slice of the RPC client the pipeline needs. It is
// satisfied by *ethclient.Client and by test fakes.
type nodeBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

var dialRPC = func(rpcURL string) (nodeBackend, error) {
	return ethclient.Dial(rpcURL)
}

// RegistryClient provides access to the external collectible registry chain
type RegistryClient struct {
	backend nodeBackend
	chainID *big.Int
	rpcURL  string
}

// NewRegistryClient dials the RPC endpoint and caches the chain ID
func NewRegistryClient(rpcURL string) (*RegistryClient, error) {
	backend, err := dialRPC(rpcURL)
	if err != nil {
		return nil, err
	}

	chainID, err := backend.ChainID(context.Background())
	if err != nil {
		return nil, err
	}

	return &RegistryClient{
		backend: backend,
		chainID: chainID,
		rpcURL:  rpcURL,
	}, nil
}

// NewRegistryClientWithBackend creates a client over an injected backend.
// This is intended for unit tests where RPC sockets are unavailable.
func NewRegistryClientWithBackend(chainID *big.Int, backend nodeBackend) *RegistryClient {
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	return &RegistryClient{
		backend: backend,
		chainID: chainID,
	}
}

// ChainID returns the chain ID
func (c *RegistryClient) ChainID() *big.Int {
	return c.chainID
}

// CallView executes a read-only contract call
func (c *RegistryClient) CallView(ctx context.Context, to string, data []byte) ([]byte, error) {
	addr := common.HexToAddress(to)
	msg := ethereum.CallMsg{
		To:   &addr,
		Data: data,
	}
	return c.backend.CallContract(ctx, msg, nil)
}

// EstimateGas estimates gas for a transaction
func (c *RegistryClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return c.backend.EstimateGas(ctx, msg)
}

// SuggestFees returns the node's current tip and fee cap suggestions
func (c *RegistryClient) SuggestFees(ctx context.Context) (tipCap, feeCap *big.Int, err error) {
	tipCap, err = c.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, err
	}
	feeCap, err = c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, nil, err
	}
	return tipCap, feeCap, nil
}

// PendingNonceAt returns the next nonce for an account
func (c *RegistryClient) PendingNonceAt(ctx context.Context, address string) (uint64, error) {
	return c.backend.PendingNonceAt(ctx, common.HexToAddress(address))
}

// SendTransaction submits a signed transaction
func (c *RegistryClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return c.backend.SendTransaction(ctx, tx)
}

// GetTransactionReceipt gets transaction receipt
func (c *RegistryClient) GetTransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	return c.backend.TransactionReceipt(ctx, common.HexToHash(txHash))
}

// GetBlockNumber gets the latest block number
func (c *RegistryClient) GetBlockNumber(ctx context.Context) (uint64, error) {
	return c.backend.BlockNumber(ctx)
}

// GetTokenBalance gets the ERC20 payment token balance of an address
func (c *RegistryClient) GetTokenBalance(ctx context.Context, tokenAddress, ownerAddress string) (*big.Int, error) {
	owner := common.HexToAddress(ownerAddress)

	// balanceOf(address) selector: 0x70a08231
	data := append(common.Hex2Bytes("70a08231"), common.LeftPadBytes(owner.Bytes(), 32)...)

	result, err := c.CallView(ctx, tokenAddress, data)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(result), nil
}

// GetTokenAllowance gets the ERC20 allowance granted by owner to spender
func (c *RegistryClient) GetTokenAllowance(ctx context.Context, tokenAddress, ownerAddress, spenderAddress string) (*big.Int, error) {
	owner := common.HexToAddress(ownerAddress)
	spender := common.HexToAddress(spenderAddress)

	// allowance(address,address) selector: 0xdd62ed3e
	data := append(common.Hex2Bytes("dd62ed3e"), common.LeftPadBytes(owner.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(spender.Bytes(), 32)...)

	result, err := c.CallView(ctx, tokenAddress, data)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(result), nil
}
