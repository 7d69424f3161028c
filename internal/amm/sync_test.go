package amm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncUnsync_RoundTrip(t *testing.T) {
	q := NewQuoter(DefaultGlobalConfig())
	r := &Reserves{BaseReserve: 206_900_000_000_000, QuoteReserve: 84_990_359_094, Creator: testCreator}
	before := *r

	buy, err := q.QuoteToBase(0.001, r, 500)
	require.NoError(t, err)
	sell, err := q.BaseToQuote(1_000_000_000, r, 500)
	require.NoError(t, err)
	exactOut, err := q.BaseToQuoteIn(25_000_000, r, 0)
	require.NoError(t, err)

	for _, s := range []Swap{buy, sell, &exactOut} {
		require.NoError(t, Sync(s, r))
		assert.NotEqual(t, before, *r)
		require.NoError(t, Unsync(s, r))
		assert.Equal(t, before, *r, "%s", s.Direction())
	}
}

func TestSync_BuyThenSellRestoresReserves(t *testing.T) {
	q := zeroFeeQuoter()
	r := &Reserves{BaseReserve: 1_000_000, QuoteReserve: 1_000_000}

	buy, err := q.QuoteToBase(1_000_000, r, 0, WithSync())
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000), buy.BaseAmountOut)
	assert.Equal(t, Reserves{BaseReserve: 500_000, QuoteReserve: 2_000_000}, *r)

	sell, err := q.BaseToQuote(buy.BaseAmountOut, r, 0, WithSync())
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), sell.QuoteAmountOutWithoutLpFee)
	assert.Equal(t, Reserves{BaseReserve: 1_000_000, QuoteReserve: 1_000_000}, *r)
}

func TestSync_Direction(t *testing.T) {
	r := &Reserves{BaseReserve: 100, QuoteReserve: 100}

	require.NoError(t, Sync(BuyQuote{BaseAmountOut: 10, QuoteAmountInWithLpFee: 12, UserQuoteAmountIn: 13}, r))
	assert.Equal(t, Reserves{BaseReserve: 90, QuoteReserve: 112}, *r)

	require.NoError(t, Sync(SellQuote{BaseAmountIn: 10, QuoteAmountOutWithoutLpFee: 11, UserQuoteAmountOut: 10}, r))
	assert.Equal(t, Reserves{BaseReserve: 100, QuoteReserve: 101}, *r)
}

func TestSync_Ambiguous(t *testing.T) {
	r := &Reserves{BaseReserve: 100, QuoteReserve: 100}

	var nilBuy *BuyQuote
	var nilSell *SellQuote
	for _, s := range []Swap{nil, nilBuy, nilSell, BuyQuote{}, SellQuote{QuoteAmountOut: 5}} {
		assert.ErrorIs(t, Sync(s, r), ErrAmbiguousSwap)
		assert.ErrorIs(t, Unsync(s, r), ErrAmbiguousSwap)
	}
	assert.Equal(t, Reserves{BaseReserve: 100, QuoteReserve: 100}, *r)
}

func TestSync_NoPartialMutation(t *testing.T) {
	r := &Reserves{BaseReserve: 100, QuoteReserve: math.MaxUint64}

	err := Sync(BuyQuote{BaseAmountOut: 1, QuoteAmountInWithLpFee: 1}, r)
	assert.ErrorIs(t, err, ErrReserveOverflow)
	assert.Equal(t, uint64(100), r.BaseReserve)

	err = Sync(BuyQuote{BaseAmountOut: 101}, r)
	assert.ErrorIs(t, err, ErrInsufficientReserves)

	r = &Reserves{BaseReserve: 100, QuoteReserve: 5}
	err = Sync(SellQuote{BaseAmountIn: 1, QuoteAmountOutWithoutLpFee: 6}, r)
	assert.ErrorIs(t, err, ErrInsufficientReserves)
	assert.Equal(t, Reserves{BaseReserve: 100, QuoteReserve: 5}, *r)

	assert.ErrorIs(t, Sync(BuyQuote{BaseAmountOut: 1}, nil), ErrInvalidReserves)
}
