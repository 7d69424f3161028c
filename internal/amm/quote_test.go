package amm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreator = solana.MustPublicKeyFromBase58("7VtfL8fvgNfhz17qKRMjzQEXgbdpnHHHQRh54R9jP2RJ")

func testConfig() *GlobalConfig {
	return &GlobalConfig{LpFeeBps: 20, ProtocolFeeBps: 5, CoinCreatorFeeBps: 5}
}

func zeroFeeQuoter() *Quoter {
	return NewQuoter(&GlobalConfig{})
}

func TestQuoteToBase_OneSolBuy(t *testing.T) {
	q := NewQuoter(testConfig())
	r := &Reserves{BaseReserve: 1_000_000_000_000, QuoteReserve: 30_000_000_000}

	quote, err := q.QuoteToBase(1_000_000_000, r, 500)
	require.NoError(t, err)

	assert.Equal(t, BuyQuote{
		BaseAmountOut:          32_258_064_516,
		QuoteAmountIn:          1_000_000_000,
		QuoteAmountInWithLpFee: 1_002_000_000,
		UserQuoteAmountIn:      1_002_500_000,
		QuoteInMax:             1_052_625_000,
	}, quote)

	// quoting alone leaves the snapshot alone
	assert.Equal(t, uint64(1_000_000_000_000), r.BaseReserve)
	assert.Equal(t, uint64(30_000_000_000), r.QuoteReserve)
}

func TestQuoteToBase_HumanAmount(t *testing.T) {
	q := NewQuoter(testConfig())
	r := &Reserves{BaseReserve: 1_000_000_000_000, QuoteReserve: 30_000_000_000}

	byFloat, err := q.QuoteToBase(1.0, r, 0.05)
	require.NoError(t, err)
	byUnits, err := q.QuoteToBase("1000000000", r, "500")
	require.NoError(t, err)

	assert.Equal(t, byUnits, byFloat)
}

func TestQuoteToBase_CreatorFee(t *testing.T) {
	q := NewQuoter(testConfig())
	r := &Reserves{BaseReserve: 1_000_000_000_000, QuoteReserve: 30_000_000_000, Creator: testCreator}

	quote, err := q.QuoteToBase(1_000_000_000, r, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_003_000_000), quote.UserQuoteAmountIn)
	assert.Equal(t, uint64(1_002_000_000), quote.QuoteAmountInWithLpFee)
	assert.Equal(t, quote.UserQuoteAmountIn, quote.QuoteInMax)
}

func TestQuoteToBase_NeverDrainsPool(t *testing.T) {
	q := NewQuoter(testConfig())
	reserves := []Reserves{
		{BaseReserve: 1, QuoteReserve: 1},
		{BaseReserve: 1_000_000_000_000, QuoteReserve: 30_000_000_000},
		{BaseReserve: 206_900_000_000_000, QuoteReserve: 84_990_359_094},
		{BaseReserve: 5, QuoteReserve: 1 << 60},
	}

	for _, r := range reserves {
		for _, in := range []uint64{1, 1_000, 1_000_000_000, 1 << 40, 1 << 62} {
			quote, err := q.QuoteToBase(in, r.Clone(), 0)
			require.NoError(t, err)
			assert.Less(t, quote.BaseAmountOut, r.BaseReserve, "reserves %+v in %d", r, in)
		}
	}
}

func TestBaseToQuoteIn(t *testing.T) {
	q := NewQuoter(testConfig())
	r := &Reserves{BaseReserve: 1_000_000, QuoteReserve: 1_000_000, Creator: testCreator}

	quote, err := q.BaseToQuoteIn(500_000, r, 100)
	require.NoError(t, err)

	assert.Equal(t, BuyQuote{
		BaseAmountOut:          500_000,
		QuoteAmountIn:          1_000_000,
		QuoteAmountInWithLpFee: 1_002_000,
		UserQuoteAmountIn:      1_003_000,
		QuoteInMax:             1_013_030,
	}, quote)
}

func TestBaseToQuoteIn_RoundsInputUp(t *testing.T) {
	q := zeroFeeQuoter()
	r := &Reserves{BaseReserve: 1_000, QuoteReserve: 1_000}

	quote, err := q.BaseToQuoteIn(3, r, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), quote.QuoteAmountIn) // ceil(3000 / 997)
}

func TestBaseToQuoteIn_InsufficientReserves(t *testing.T) {
	q := NewQuoter(testConfig())
	r := &Reserves{BaseReserve: 1_000_000, QuoteReserve: 1_000_000}

	_, err := q.BaseToQuoteIn(1_000_000, r, 0)
	assert.ErrorIs(t, err, ErrInsufficientReserves)

	_, err = q.BaseToQuoteIn(1_000_001, r, 0)
	assert.ErrorIs(t, err, ErrInsufficientReserves)
}

func TestBaseToQuote(t *testing.T) {
	q := NewQuoter(testConfig())
	r := &Reserves{BaseReserve: 1_000_000_000, QuoteReserve: 1_000_000_000, Creator: testCreator}

	quote, err := q.BaseToQuote(1_000_000_000, r, 500)
	require.NoError(t, err)

	assert.Equal(t, SellQuote{
		BaseAmountIn:               1_000_000_000,
		QuoteAmountOut:             500_000_000,
		QuoteAmountOutWithoutLpFee: 499_000_000,
		UserQuoteAmountOut:         498_500_000,
		QuoteOutMin:                473_575_000,
	}, quote)
}

func TestBaseToQuote_PerFeeRounding(t *testing.T) {
	q := NewQuoter(testConfig())
	r := &Reserves{BaseReserve: 1_000_000, QuoteReserve: 20_002, Creator: testCreator}

	quote, err := q.BaseToQuote(1_000_000, r, 0)
	require.NoError(t, err)

	// 21 + 6 + 6, one combined fee would only be 31
	assert.Equal(t, uint64(10_001), quote.QuoteAmountOut)
	assert.Equal(t, uint64(9_968), quote.UserQuoteAmountOut)
	assert.Equal(t, uint64(9_980), quote.QuoteAmountOutWithoutLpFee)
}

func TestBaseToQuote_FeesExceedOutput(t *testing.T) {
	q := NewQuoter(testConfig())
	r := &Reserves{BaseReserve: 1_000_000, QuoteReserve: 2}

	_, err := q.BaseToQuote(1_000_000, r, 0)
	assert.ErrorIs(t, err, ErrInsufficientOutput)
}

func TestBaseToQuote_InvalidReserves(t *testing.T) {
	q := NewQuoter(testConfig())

	_, err := q.BaseToQuote(1, &Reserves{BaseReserve: 1}, 0)
	assert.ErrorIs(t, err, ErrInvalidReserves)

	_, err = q.BaseToQuote(1, &Reserves{QuoteReserve: 1}, 0)
	assert.ErrorIs(t, err, ErrInvalidReserves)
}

func TestQuotes_NonPositiveAmountIsZero(t *testing.T) {
	q := NewQuoter(testConfig())
	r := &Reserves{BaseReserve: 1_000_000, QuoteReserve: 1_000_000}

	for _, amount := range []any{0, -5, "0", "-1", -0.5, 0.0} {
		buy, err := q.QuoteToBase(amount, r, 500, WithSync())
		require.NoError(t, err)
		assert.Equal(t, BuyQuote{}, buy)

		buy, err = q.BaseToQuoteIn(amount, r, 500, WithSync())
		require.NoError(t, err)
		assert.Equal(t, BuyQuote{}, buy)

		sell, err := q.BaseToQuote(amount, r, 500, WithSync())
		require.NoError(t, err)
		assert.Equal(t, SellQuote{}, sell)
	}

	assert.Equal(t, Reserves{BaseReserve: 1_000_000, QuoteReserve: 1_000_000}, *r)
}

func TestQuotes_RejectMalformedInput(t *testing.T) {
	q := NewQuoter(testConfig())
	r := &Reserves{BaseReserve: 1_000_000, QuoteReserve: 1_000_000}

	_, err := q.QuoteToBase("1.5", r, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = q.BaseToQuote(1, r, "5%")
	assert.ErrorIs(t, err, ErrInvalidSlippage)

	_, err = q.BaseToQuoteIn("100000000000000000000", r, 0)
	assert.ErrorIs(t, err, ErrInsufficientReserves)

	_, err = q.QuoteToBase("100000000000000000000", r, 0)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	_, err = q.QuoteToBase(1, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidReserves)
}

func TestQuotes_ConfigNotReady(t *testing.T) {
	q := NewQuoter(nil)
	r := &Reserves{BaseReserve: 1_000_000, QuoteReserve: 1_000_000}

	_, err := q.QuoteToBase(1, r, 0)
	assert.ErrorIs(t, err, ErrConfigNotReady)
	_, err = q.BaseToQuoteIn(1, r, 0)
	assert.ErrorIs(t, err, ErrConfigNotReady)
	_, err = q.BaseToQuote(1, r, 0)
	assert.ErrorIs(t, err, ErrConfigNotReady)

	// bounds do not depend on fees
	maxIn, err := q.QuoteInMaxFor(1_000_000_000, 0.05)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_050_000_000), maxIn)
}

func TestQuoteBounds(t *testing.T) {
	q := zeroFeeQuoter()

	minOut, err := q.QuoteOutMinFor(1_000_000_000, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(950_000_000), minOut)

	maxIn, err := q.QuoteInMaxFor(0.001, "100")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_010_000), maxIn)

	maxIn, err = q.QuoteInMaxFor(-1, 100)
	require.NoError(t, err)
	assert.Zero(t, maxIn)

	_, err = q.QuoteOutMinFor("x", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestZeroFee_SellNeverReturnsMoreThanPaid(t *testing.T) {
	q := zeroFeeQuoter()

	for _, in := range []uint64{1, 7, 1_000, 123_456_789, 1_000_000_000} {
		r := &Reserves{BaseReserve: 1_000_000_000_000, QuoteReserve: 30_000_000_000}

		buy, err := q.QuoteToBase(in, r, 0, WithSync())
		require.NoError(t, err)
		if buy.BaseAmountOut == 0 {
			continue
		}

		sell, err := q.BaseToQuote(buy.BaseAmountOut, r, 0)
		require.NoError(t, err)
		assert.LessOrEqual(t, sell.UserQuoteAmountOut, in)
	}
}

type fakeSource struct {
	calls atomic.Int32
	cfg   *GlobalConfig
	err   error
}

func (f *fakeSource) FetchGlobalConfig(context.Context) (*GlobalConfig, error) {
	f.calls.Add(1)
	return f.cfg, f.err
}

func TestEnsureLoaded(t *testing.T) {
	src := &fakeSource{cfg: testConfig()}
	q := NewQuoter(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, q.EnsureLoaded(context.Background(), src))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	cfg, err := q.GlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(20), cfg.LpFeeBps)
}

func TestEnsureLoaded_Errors(t *testing.T) {
	boom := errors.New("rpc down")

	err := NewQuoter(nil).EnsureLoaded(context.Background(), &fakeSource{err: boom})
	assert.ErrorIs(t, err, boom)

	err = NewQuoter(nil).EnsureLoaded(context.Background(), &fakeSource{})
	assert.ErrorIs(t, err, ErrConfigNotReady)

	// already loaded, source untouched
	src := &fakeSource{err: boom}
	require.NoError(t, NewQuoter(DefaultGlobalConfig()).EnsureLoaded(context.Background(), src))
	assert.Zero(t, src.calls.Load())
}
