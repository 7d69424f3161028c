package amm

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSlippage(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"nil", nil, 0},
		{"fraction", 0.05, 500},
		{"float32 fraction", float32(0.0123), 123},
		{"fraction truncated", 0.00015, 1},
		{"negative fraction truncated toward zero", -0.00015, -1},
		{"decimal fraction", decimal.RequireFromString("0.12345"), 1234},
		{"int bps", 500, 500},
		{"int64 bps", int64(-250), -250},
		{"string bps", "500", 500},
		{"padded string bps", " 25 ", 25},
		{"largest accepted", -MaxSlippageBps, -MaxSlippageBps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSlippage(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeSlippage_Invalid(t *testing.T) {
	for _, in := range []any{"5%", "0.05", math.NaN(), math.Inf(-1), float32(math.NaN()), []int{1}, uint64(math.MaxUint64)} {
		_, err := NormalizeSlippage(in)
		assert.ErrorIs(t, err, ErrInvalidSlippage, "input %v", in)
	}
}

func TestNormalizeSlippage_OutOfRange(t *testing.T) {
	for _, in := range []any{int64(math.MinInt64), int64(math.MaxInt64), MaxSlippageBps + 1, "-10000001", 1500.0} {
		_, err := NormalizeSlippage(in)
		assert.ErrorIs(t, err, ErrInvalidSlippage, "input %v", in)
	}

	_, err := ParseSlippage("-9223372036854775808")
	assert.ErrorIs(t, err, ErrInvalidSlippage)
}

func TestQuoteOutMinFor_RejectsUnboundedTolerance(t *testing.T) {
	q := NewQuoter(nil)
	_, err := q.QuoteOutMinFor(1_000_000_000, int64(math.MinInt64))
	assert.ErrorIs(t, err, ErrInvalidSlippage)
}

func TestApplySlippage_ZeroIsIdentity(t *testing.T) {
	for _, v := range []uint64{0, 1, 999, 1_002_500_000, math.MaxUint64} {
		assert.Equal(t, v, ApplySlippage(v, 0))
	}
}

func TestApplySlippage(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		bps   int64
		want  uint64
	}{
		{"max in 5%", 1_002_500_000, 500, 1_052_625_000},
		{"min out 5%", 498_500_000, -500, 473_575_000},
		{"truncates", 999, 1, 999},
		{"truncates factor and product", 3, 3333, 3},
		{"full tolerance", 100, -10_000, 0},
		{"beyond full tolerance", 100, -20_000, 0},
		{"saturates", math.MaxUint64, 100, math.MaxUint64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplySlippage(tt.value, tt.bps))
		})
	}
}

func TestParseSlippage(t *testing.T) {
	for in, want := range map[string]int64{"": 0, "100": 100, "0.01": 100, " 0.05 ": 500, "0.00019": 1} {
		got, err := ParseSlippage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSlippage("1%")
	assert.ErrorIs(t, err, ErrInvalidSlippage)
	_, err = ParseSlippage("0.0.1")
	assert.ErrorIs(t, err, ErrInvalidSlippage)
}
