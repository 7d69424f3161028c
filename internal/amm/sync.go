package amm

import (
	"fmt"
	"math"
)

// Sync applies an executed swap to r. Buys take base out and credit the
// quote side with the LP fee included; sells do the reverse without the LP
// fee. r is only written once every check has passed.
func Sync(s Swap, r *Reserves) error {
	return apply(s, r, false)
}

// Unsync reverts a swap previously applied with Sync
func Unsync(s Swap, r *Reserves) error {
	return apply(s, r, true)
}

func apply(s Swap, r *Reserves, revert bool) error {
	if r == nil {
		return fmt.Errorf("%w: nil reserves", ErrInvalidReserves)
	}

	var baseDelta, quoteDelta uint64
	var addBase bool

	switch v := s.(type) {
	case BuyQuote:
		baseDelta, quoteDelta, addBase = v.BaseAmountOut, v.QuoteAmountInWithLpFee, false
	case *BuyQuote:
		if v == nil {
			return ErrAmbiguousSwap
		}
		baseDelta, quoteDelta, addBase = v.BaseAmountOut, v.QuoteAmountInWithLpFee, false
	case SellQuote:
		baseDelta, quoteDelta, addBase = v.BaseAmountIn, v.QuoteAmountOutWithoutLpFee, true
	case *SellQuote:
		if v == nil {
			return ErrAmbiguousSwap
		}
		baseDelta, quoteDelta, addBase = v.BaseAmountIn, v.QuoteAmountOutWithoutLpFee, true
	default:
		return ErrAmbiguousSwap
	}
	if baseDelta == 0 {
		return fmt.Errorf("%w: swap moves no base tokens", ErrAmbiguousSwap)
	}
	if revert {
		addBase = !addBase
	}

	// base and quote always move in opposite directions
	base, err := shift(r.BaseReserve, baseDelta, addBase)
	if err != nil {
		return fmt.Errorf("base reserve: %w", err)
	}
	quote, err := shift(r.QuoteReserve, quoteDelta, !addBase)
	if err != nil {
		return fmt.Errorf("quote reserve: %w", err)
	}

	r.BaseReserve, r.QuoteReserve = base, quote
	return nil
}

func shift(v, delta uint64, add bool) (uint64, error) {
	if add {
		if v > math.MaxUint64-delta {
			return 0, ErrReserveOverflow
		}
		return v + delta, nil
	}
	if delta > v {
		return 0, fmt.Errorf("%w: need %d, have %d", ErrInsufficientReserves, delta, v)
	}
	return v - delta, nil
}
