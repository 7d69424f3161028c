package amm

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// DefaultTokenSupply is the fixed supply of a pump token in base units
const DefaultTokenSupply uint64 = 1_000_000_000_000_000

var priceScale = big.NewInt(1_000_000_000)

// Price is lamports per base unit scaled by 1e9. Zero for an empty pool.
func Price(r Reserves) *big.Int {
	if r.BaseReserve == 0 {
		return new(big.Int)
	}
	p := new(big.Int).Mul(u64(r.QuoteReserve), priceScale)
	return p.Quo(p, u64(r.BaseReserve))
}

// MarketCap values totalSupply base units at the pool price, in lamports.
// A zero supply means DefaultTokenSupply.
func MarketCap(r Reserves, totalSupply uint64) *big.Int {
	if r.BaseReserve == 0 {
		return new(big.Int)
	}
	if totalSupply == 0 {
		totalSupply = DefaultTokenSupply
	}
	mc := new(big.Int).Mul(u64(totalSupply), u64(r.QuoteReserve))
	return mc.Quo(mc, u64(r.BaseReserve))
}

// UIPrice is the SOL price of one whole token
func UIPrice(r Reserves) decimal.Decimal {
	if r.BaseReserve == 0 {
		return decimal.Zero
	}
	quote := decimal.NewFromBigInt(u64(r.QuoteReserve), -QuoteDecimals)
	base := decimal.NewFromBigInt(u64(r.BaseReserve), -BaseDecimals)
	return quote.DivRound(base, QuoteDecimals)
}
