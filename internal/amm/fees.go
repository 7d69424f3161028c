package amm

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// Fees holds the three stacked fee rates applying to one pool, in bps
type Fees struct {
	LpFeeBps          uint64 `json:"lp_fee_bps"`
	ProtocolFeeBps    uint64 `json:"protocol_fee_bps"`
	CoinCreatorFeeBps uint64 `json:"coin_creator_fee_bps"`
}

// FeeAmounts are fees on one amount, each rounded up on its own
type FeeAmounts struct {
	Lp          uint64 `json:"lp_fee"`
	Protocol    uint64 `json:"protocol_fee"`
	CoinCreator uint64 `json:"coin_creator_fee"`
}

// FeesFor returns the rates for a pool owned by creator.
// A zero creator key means the pool pays no creator fee.
func (c *GlobalConfig) FeesFor(creator solana.PublicKey) Fees {
	f := Fees{
		LpFeeBps:          c.LpFeeBps,
		ProtocolFeeBps:    c.ProtocolFeeBps,
		CoinCreatorFeeBps: c.CoinCreatorFeeBps,
	}
	if creator.IsZero() {
		f.CoinCreatorFeeBps = 0
	}
	return f
}

// Total is the plain sum of the rates
func (f Fees) Total() uint64 {
	return f.LpFeeBps + f.ProtocolFeeBps + f.CoinCreatorFeeBps
}

// Amounts computes every fee on base independently
func (f Fees) Amounts(base uint64) (FeeAmounts, error) {
	var (
		out FeeAmounts
		err error
	)
	if out.Lp, err = Fee(base, f.LpFeeBps); err != nil {
		return FeeAmounts{}, err
	}
	if out.Protocol, err = Fee(base, f.ProtocolFeeBps); err != nil {
		return FeeAmounts{}, err
	}
	if out.CoinCreator, err = Fee(base, f.CoinCreatorFeeBps); err != nil {
		return FeeAmounts{}, err
	}
	return out, nil
}

// Sum adds the individual amounts
func (a FeeAmounts) Sum() *big.Int {
	s := u64(a.Lp)
	s.Add(s, u64(a.Protocol))
	return s.Add(s, u64(a.CoinCreator))
}
