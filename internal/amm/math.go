package amm

import (
	"fmt"
	"math/big"
)

// BpsDenominator is 100% in basis points
const BpsDenominator = 10_000

var (
	bigOne    = big.NewInt(1)
	bigBps    = big.NewInt(BpsDenominator)
	bigMaxU64 = new(big.Int).SetUint64(^uint64(0))
)

// CeilDiv returns ceil(a / b) for non-negative a and b
func CeilDiv(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrDivisionByZero
	}

	// (a + b - 1) / b
	n := new(big.Int).Add(a, b)
	n.Sub(n, bigOne)
	return n.Quo(n, b), nil
}

// Fee computes a basis-point fee on amount, rounded up in favor of the pool
func Fee(amount, bps uint64) (uint64, error) {
	f, err := feeBig(u64(amount), bps)
	if err != nil {
		return 0, err
	}
	return toU64(f)
}

func feeBig(amount *big.Int, bps uint64) (*big.Int, error) {
	n := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return CeilDiv(n, bigBps)
}

func u64(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// toU64 narrows an intermediate result back to the on-chain u64 width
func toU64(v *big.Int) (uint64, error) {
	if v.Sign() < 0 || !v.IsUint64() {
		return 0, fmt.Errorf("%w: %s", ErrAmountOverflow, v)
	}
	return v.Uint64(), nil
}
