package amm

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// slippagePrecision is the fixed-point scale used while applying a tolerance
var slippagePrecision = big.NewInt(1_000_000_000)

// MaxSlippageBps caps the absolute tolerance NormalizeSlippage accepts
const MaxSlippageBps = 10_000_000

// NormalizeSlippage converts a tolerance into signed basis points.
//
// Floats and decimal.Decimal are fractional rates (0.05 = 5%) truncated toward
// zero at 4-decimal precision. Integers and integer strings are already bps.
// A nil tolerance is 0. Tolerances beyond ±MaxSlippageBps are rejected.
func NormalizeSlippage(v any) (int64, error) {
	bps, err := slippageBps(v)
	if err != nil {
		return 0, err
	}
	if bps > MaxSlippageBps || bps < -MaxSlippageBps {
		return 0, fmt.Errorf("%w: %d bps out of range", ErrInvalidSlippage, bps)
	}
	return bps, nil
}

func slippageBps(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return slippageFromRate(x)
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidSlippage, x)
		}
		return rateToBps(decimal.NewFromFloat32(x))
	case decimal.Decimal:
		return rateToBps(x)
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d bps", ErrInvalidSlippage, x)
		}
		return int64(x), nil
	case string:
		bps, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSlippage, x)
		}
		return bps, nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidSlippage, v)
	}
}

func slippageFromRate(x float64) (int64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSlippage, x)
	}
	return rateToBps(decimal.NewFromFloat(x))
}

func rateToBps(rate decimal.Decimal) (int64, error) {
	bps := rate.Shift(4).Truncate(0)
	if !bps.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidSlippage, rate)
	}
	return bps.IntPart(), nil
}

// ApplySlippage shifts value by a signed tolerance in bps:
// value * ((10000 + bps) * 1e9 / 10000) / 1e9, truncating at each step.
// Positive bps gives a "max to pay" bound, negative a "min to receive" one.
func ApplySlippage(value uint64, bps int64) uint64 {
	if bps == 0 {
		return value
	}

	factor := big.NewInt(BpsDenominator)
	factor.Add(factor, big.NewInt(bps))
	factor.Mul(factor, slippagePrecision)
	factor.Quo(factor, bigBps)
	if factor.Sign() <= 0 {
		return 0
	}

	out := new(big.Int).Mul(u64(value), factor)
	out.Quo(out, slippagePrecision)
	if out.Cmp(bigMaxU64) > 0 {
		return math.MaxUint64
	}
	return out.Uint64()
}

// ParseSlippage reads a textual tolerance into bps. Integers are bps, values
// with a decimal point are rates (0.01 = 1%). Empty is 0.
func ParseSlippage(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if !strings.ContainsAny(s, ".eE") {
		return NormalizeSlippage(s)
	}
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlippage, s)
	}
	return NormalizeSlippage(rate)
}
