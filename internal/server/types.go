package server

import (
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/amm"
)

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK          bool `json:"ok"`
	ConfigReady bool `json:"config_ready"` // global config loaded, quotes can be served
}

// ReservesResponse is a pool snapshot with derived prices
type ReservesResponse struct {
	Mint         string       `json:"mint"`
	Pool         string       `json:"pool"`
	Reserves     amm.Reserves `json:"reserves"`
	Price        string       `json:"price"`      // lamports per base unit, scaled by 1e9
	UIPrice      string       `json:"ui_price"`   // SOL per whole token
	MarketCap    string       `json:"market_cap"` // lamports
	HasCreator   bool         `json:"has_creator"`
	TotalFeesBps uint64       `json:"total_fees_bps"`
}

// BuyQuoteResponse wraps a buy quote with the inputs it was computed from
type BuyQuoteResponse struct {
	Mint        string       `json:"mint"`
	SlippageBps int64        `json:"slippage_bps"`
	Quote       amm.BuyQuote `json:"quote"`
	Reserves    amm.Reserves `json:"reserves"`
}

// SellQuoteResponse wraps a sell quote with the inputs it was computed from
type SellQuoteResponse struct {
	Mint        string        `json:"mint"`
	SlippageBps int64         `json:"slippage_bps"`
	Quote       amm.SellQuote `json:"quote"`
	Reserves    amm.Reserves  `json:"reserves"`
}

// BoundResponse is a slippage-adjusted SOL amount
type BoundResponse struct {
	Amount      uint64 `json:"amount"`
	SlippageBps int64  `json:"slippage_bps"`
	Bound       uint64 `json:"bound"`
}
