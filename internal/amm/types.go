package amm

import (
	"github.com/gagliardetto/solana-go"
)

// Token decimals on each side of a pump AMM pool
const (
	BaseDecimals  = 6 // pump tokens
	QuoteDecimals = 9 // SOL (lamports)
)

// Reserves is a caller-owned snapshot of a pool's vault balances.
// Mutate it only through Sync/Unsync (or a quote with WithSync).
type Reserves struct {
	BaseReserve  uint64           `json:"base_reserve"`
	QuoteReserve uint64           `json:"quote_reserve"`
	Creator      solana.PublicKey `json:"creator"` // zero key = no coin creator
}

// Clone returns an independent copy of the snapshot
func (r Reserves) Clone() *Reserves {
	return &r
}

// GlobalConfig mirrors the pump AMM global_config account.
// Loaded once per session and read-only afterwards.
type GlobalConfig struct {
	Admin                 solana.PublicKey   `json:"admin"`
	LpFeeBps              uint64             `json:"lp_fee_basis_points"`
	ProtocolFeeBps        uint64             `json:"protocol_fee_basis_points"`
	DisableFlags          uint8              `json:"disable_flags"`
	ProtocolFeeRecipients []solana.PublicKey `json:"protocol_fee_recipients"`
	CoinCreatorFeeBps     uint64             `json:"coin_creator_fee_basis_points"`
}

// DefaultGlobalConfig returns the mainnet global config as of the current
// program version. Used when fetching the account is not wanted.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Admin:          solana.MustPublicKeyFromBase58("FFWtrEQ4B4PKQoVuHYzZq8FabGkVatYzDpEVHsK5rrhF"),
		LpFeeBps:       20,
		ProtocolFeeBps: 5,
		DisableFlags:   0,
		ProtocolFeeRecipients: []solana.PublicKey{
			solana.MustPublicKeyFromBase58("62qc2CNXwrYqQScmEdiZFFAnJR262PxWEuNQtxfafNgV"),
			solana.MustPublicKeyFromBase58("7VtfL8fvgNfhz17qKRMjzQEXgbdpnHHHQRh54R9jP2RJ"),
			solana.MustPublicKeyFromBase58("7hTckgnGnLQR6sdH7YkqFTAA7VwTfYFaZ6EhEsU3saCX"),
			solana.MustPublicKeyFromBase58("9rPYyANsfQZw3DnDmKE3YCQF5E8oD89UXoHn9JFEhJUz"),
			solana.MustPublicKeyFromBase58("AVmoTthdrX6tKt4nDjco2D775W2YK3sDhxPcMmzUAmTY"),
			solana.MustPublicKeyFromBase58("FWsW1xNtWscwNmKv6wVsU1iTzRN6wmmk3MjxRP5tT7hz"),
			solana.MustPublicKeyFromBase58("G5UZAVbAf46s7cKWoyKu8kYTip9DGTpbLZ2qa9Aq69dP"),
			solana.MustPublicKeyFromBase58("JCRGumoE9Qi5BBgULTgdgTLjSgkCMSbF62ZZfGs84JeU"),
		},
		CoinCreatorFeeBps: 5,
	}
}

// Direction of a swap relative to the base token
type Direction int

const (
	DirectionBuy Direction = iota + 1
	DirectionSell
)

func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "buy"
	case DirectionSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Swap is a computed quote that can be applied to a reserve snapshot.
// Implemented only by BuyQuote and SellQuote.
type Swap interface {
	Direction() Direction
	isSwap()
}

// BuyQuote is the result of a quote-in / base-out swap (QuoteToBase or BaseToQuoteIn)
type BuyQuote struct {
	BaseAmountOut          uint64 `json:"base_amount_out"`
	QuoteAmountIn          uint64 `json:"quote_amount_in"`            // before fees
	QuoteAmountInWithLpFee uint64 `json:"quote_amount_in_with_lp_fee"` // credited to the pool
	UserQuoteAmountIn      uint64 `json:"user_quote_amount_in"`        // paid by the trader, all fees included
	QuoteInMax             uint64 `json:"quote_in_max"`
}

func (BuyQuote) Direction() Direction { return DirectionBuy }
func (BuyQuote) isSwap()              {}

// SellQuote is the result of a base-in / quote-out swap (BaseToQuote)
type SellQuote struct {
	BaseAmountIn               uint64 `json:"base_amount_in"`
	QuoteAmountOut             uint64 `json:"quote_amount_out"`               // before fees
	QuoteAmountOutWithoutLpFee uint64 `json:"quote_amount_out_without_lp_fee"` // removed from the pool
	UserQuoteAmountOut         uint64 `json:"user_quote_amount_out"`          // received by the trader
	QuoteOutMin                uint64 `json:"quote_out_min"`
}

func (SellQuote) Direction() Direction { return DirectionSell }
func (SellQuote) isSwap()              {}
