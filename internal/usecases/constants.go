package usecases

import (
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// computeSelector computes the 4-byte EVM function selector from a canonical
// function signature.
func computeSelector(sig string) []byte {
	return crypto.Keccak256([]byte(sig))[:4]
}

// computeSelectorHex returns the selector as a "0x"-prefixed hex string.
func computeSelectorHex(sig string) string {
	return "0x" + hex.EncodeToString(computeSelector(sig))
}

// Registry function selectors, computed at init from canonical signatures.
var (
	// entryExists(uint256): whether a collectible has been registered
	EntryExistsSelector = computeSelector("entryExists(uint256)")

	// calculateCost(uint256,uint256) -> (reserve, creatorFee, platformFee, total)
	CalculateCostSelector = computeSelector("calculateCost(uint256,uint256)")

	// createEntry(uint256,address,uint256,uint256)
	CreateEntrySelector = computeSelector("createEntry(uint256,address,uint256,uint256)")

	// transferFor(uint256,address,uint256,uint256): transfer qty to recipient
	// with a maximum acceptable total cost
	TransferForSelector = computeSelector("transferFor(uint256,address,uint256,uint256)")

	// balanceOf(address,uint256): registry holdings of an address
	HoldingsOfSelector = computeSelector("balanceOf(address,uint256)")

	// approve(address,uint256): ERC20 spending pre-authorization
	ApproveSelector = computeSelector("approve(address,uint256)")
)

// BpsDenominator is the basis point scale used for every fee knob
const BpsDenominator = 10000

// EVM technical constants
const EVMWordSize = 32

// applyBps scales amount by bps/10000, rounding down.
func applyBps(amount *big.Int, bps int64) *big.Int {
	out := new(big.Int).Mul(amount, big.NewInt(bps))
	return out.Div(out, big.NewInt(BpsDenominator))
}

// bigToInt64 converts an on-chain uint256 into internal base units. Values
// beyond int64 range indicate a unit mismatch and are reported as overflow.
func bigToInt64(v *big.Int) (int64, bool) {
	if v == nil || !v.IsInt64() {
		return 0, false
	}
	return v.Int64(), true
}

// word reads the i-th 32-byte word from ABI-encoded return data.
func word(data []byte, i int) *big.Int {
	start := i * EVMWordSize
	end := start + EVMWordSize
	if end > len(data) {
		return new(big.Int)
	}
	return new(big.Int).SetBytes(data[start:end])
}
