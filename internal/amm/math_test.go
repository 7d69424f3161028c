package amm

import (
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCeilDiv(t *testing.T) {
	tests := []struct {
		a, b int64
		want int64
	}{
		{0, 5, 0},
		{1, 5, 1},
		{10, 5, 2},
		{11, 5, 3},
		{9_999, 10_000, 1},
	}

	for _, tt := range tests {
		got, err := CeilDiv(big.NewInt(tt.a), big.NewInt(tt.b))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Int64(), "ceil(%d/%d)", tt.a, tt.b)
	}

	_, err := CeilDiv(big.NewInt(1), big.NewInt(0))
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestFee_RoundsUp(t *testing.T) {
	fee, err := Fee(1_000_000_000, 25)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_500_000), fee)

	// one lamport at any non-zero rate still costs one lamport
	fee, err = Fee(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), fee)

	fee, err = Fee(0, 20)
	require.NoError(t, err)
	assert.Zero(t, fee)

	fee, err = Fee(10_001, 20)
	require.NoError(t, err)
	assert.Equal(t, uint64(21), fee)
}

func TestFee_Overflow(t *testing.T) {
	_, err := Fee(math.MaxUint64, 20_000)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestNormalizeBaseAmount(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"human float", 1.5, 1_500_000},
		{"human float32", float32(1.1), 1_100_000},
		{"half unit rounds up", 0.0000005, 1},
		{"half unit rounds away from zero", -0.0000005, -1},
		{"below half unit", 0.0000004, 0},
		{"decimal", decimal.RequireFromString("2.0000015"), 2_000_002},
		{"int units", 1_500_000, 1_500_000},
		{"int64 units", int64(7), 7},
		{"uint64 units", uint64(9), 9},
		{"string units", " 42 ", 42},
		{"negative string", "-3", -3},
		{"big int", big.NewInt(123), 123},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBaseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestNormalizeQuoteAmount(t *testing.T) {
	got, err := NormalizeQuoteAmount(0.001)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), got.Int64())

	got, err = NormalizeQuoteAmount(float32(1.1))
	require.NoError(t, err)
	assert.Equal(t, int64(1_100_000_000), got.Int64())

	got, err = NormalizeQuoteAmount(1.0)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000_000), got.Int64())

	got, err = NormalizeQuoteAmount(uint64(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got.Uint64())
}

func TestNormalizeAmount_Invalid(t *testing.T) {
	for _, in := range []any{"1.5", "abc", "", math.NaN(), math.Inf(1), float32(math.Inf(-1)), struct{}{}, nil, (*big.Int)(nil)} {
		_, err := NormalizeBaseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %v", in)
	}
}

func TestNormalizeAmount_DoesNotAlias(t *testing.T) {
	in := big.NewInt(10)
	got, err := NormalizeQuoteAmount(in)
	require.NoError(t, err)

	got.SetInt64(99)
	assert.Equal(t, int64(10), in.Int64())
}

func TestToUIAmount(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1.5").Equal(ToUIAmount(1_500_000, BaseDecimals)))
	assert.True(t, decimal.RequireFromString("0.001").Equal(ToUIAmount(1_000_000, QuoteDecimals)))
}

func TestParseAmount(t *testing.T) {
	units, err := ParseAmount(" 1500000 ")
	require.NoError(t, err)
	n, err := NormalizeBaseAmount(units)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), n.Int64())

	human, err := ParseAmount("1.5")
	require.NoError(t, err)
	n, err = NormalizeBaseAmount(human)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), n.Int64())

	_, err = ParseAmount("1.5.2")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
