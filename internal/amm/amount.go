package amm

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeBaseAmount converts v into base token smallest units (6 decimals).
//
// Floats and decimal.Decimal are human units ("1.5" tokens) and are rounded
// half away from zero to the nearest unit. Integers, *big.Int and strings are
// already exact units. The result may be negative; callers decide what a
// non-positive amount means.
func NormalizeBaseAmount(v any) (*big.Int, error) {
	return normalizeAmount(v, BaseDecimals)
}

// NormalizeQuoteAmount converts v into lamports (9 decimals). Same input
// rules as NormalizeBaseAmount.
func NormalizeQuoteAmount(v any) (*big.Int, error) {
	return normalizeAmount(v, QuoteDecimals)
}

func normalizeAmount(v any, decimals int32) (*big.Int, error) {
	switch x := v.(type) {
	case float64:
		if err := finiteAmount(x); err != nil {
			return nil, err
		}
		return fromHuman(decimal.NewFromFloat(x), decimals), nil
	case float32:
		if err := finiteAmount(float64(x)); err != nil {
			return nil, err
		}
		return fromHuman(decimal.NewFromFloat32(x), decimals), nil
	case decimal.Decimal:
		return x.Shift(decimals).Round(0).BigInt(), nil
	case int:
		return big.NewInt(int64(x)), nil
	case int32:
		return big.NewInt(int64(x)), nil
	case int64:
		return big.NewInt(x), nil
	case uint:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint64:
		return new(big.Int).SetUint64(x), nil
	case *big.Int:
		if x == nil {
			return nil, fmt.Errorf("%w: nil *big.Int", ErrInvalidAmount)
		}
		return new(big.Int).Set(x), nil
	case string:
		n, ok := new(big.Int).SetString(strings.TrimSpace(x), 10)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an integer amount", ErrInvalidAmount, x)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, v)
	}
}

func finiteAmount(x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, x)
	}
	return nil
}

// fromHuman scales a human amount built with NewFromFloat or NewFromFloat32.
// Both keep the shortest decimal representation of the float, so 0.001 SOL
// scales to exactly 1_000_000 lamports.
func fromHuman(d decimal.Decimal, decimals int32) *big.Int {
	return d.Shift(decimals).Round(0).BigInt()
}

// ToUIAmount renders smallest units as a human amount with the given decimals
func ToUIAmount(units uint64, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(u64(units), -decimals)
}

// ParseAmount reads a textual amount for NormalizeBaseAmount or
// NormalizeQuoteAmount. Plain integers stay smallest units; anything with a
// decimal point or exponent is a human amount.
func ParseAmount(s string) (any, error) {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, ".eE") {
		return s, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}
