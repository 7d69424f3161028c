package amm

import "errors"

var (
	ErrDivisionByZero       = errors.New("division by zero")
	ErrPoolDepleted         = errors.New("pool would be depleted, denominator is zero")
	ErrInsufficientReserves = errors.New("cannot buy more base tokens than the pool reserves")
	ErrInvalidReserves      = errors.New("reserves cannot be zero")
	ErrAmbiguousSwap        = errors.New("swap must carry exactly one of base amount out or base amount in")
	ErrConfigNotReady       = errors.New("global config is not loaded")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidSlippage      = errors.New("invalid slippage")
	ErrAmountOverflow       = errors.New("amount does not fit in u64")
	ErrInsufficientOutput   = errors.New("fees exceed swap output")
	ErrReserveOverflow      = errors.New("reserve update out of u64 range")
)
