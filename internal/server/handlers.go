package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/pumpswap-quoter/internal/amm"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/pumpswap"
)

// ReservesSource reads the current reserves of a mint's canonical pool
type ReservesSource interface {
	FetchReserves(ctx context.Context, baseMint, quoteMint solana.PublicKey) (*amm.Reserves, error)
}

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Quoter  *amm.Quoter    // Quoter with the session's global config
	Pools   ReservesSource // Chain reader, usually *pumpswap.Client
	Timeout time.Duration  // Per-request upstream timeout
	DevMode bool           // Enable detailed error responses in development
	Logger  *logrus.Logger // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// upstreamTimeout is the per-request RPC budget, 10s when unset
func upstreamTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, upstreamTimeout(d))
}

// Health reports liveness and whether the global config is loaded
func (h *Handlers) Health(c echo.Context) error {
	_, err := h.Quoter.GlobalConfig()
	return c.JSON(http.StatusOK, HealthResponse{OK: true, ConfigReady: err == nil})
}

// Reserves returns the reserves of a mint's canonical pool with price and market cap
func (h *Handlers) Reserves(c echo.Context) error {
	mint, err := parseMint(c.Param("mint"))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"mint": err.Error()})
	}
	pool, err := pumpswap.PoolAddress(mint)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"mint": err.Error()})
	}

	r, err := h.fetchReserves(c, mint)
	if err != nil {
		return h.fail(c, err)
	}

	resp := ReservesResponse{
		Mint:       mint.String(),
		Pool:       pool.String(),
		Reserves:   *r,
		Price:      amm.Price(*r).String(),
		UIPrice:    amm.UIPrice(*r).String(),
		MarketCap:  amm.MarketCap(*r, 0).String(),
		HasCreator: !r.Creator.IsZero(),
	}
	if global, err := h.Quoter.GlobalConfig(); err == nil {
		resp.TotalFeesBps = global.FeesFor(r.Creator).Total()
	}
	return c.JSON(http.StatusOK, resp)
}

// QuoteBuy quotes spending an exact SOL amount (quoteIn) on the mint
func (h *Handlers) QuoteBuy(c echo.Context) error {
	return h.buy(c, "quoteIn", h.Quoter.QuoteToBase)
}

// QuoteBuyExactOut quotes the SOL needed to receive an exact token amount (baseOut)
func (h *Handlers) QuoteBuyExactOut(c echo.Context) error {
	return h.buy(c, "baseOut", h.Quoter.BaseToQuoteIn)
}

type buyFunc func(amount any, r *amm.Reserves, slippage any, opts ...amm.QuoteOption) (amm.BuyQuote, error)

func (h *Handlers) buy(c echo.Context, amountParam string, quote buyFunc) error {
	mint, amount, bps, ok, err := h.quoteInputs(c, amountParam)
	if !ok {
		return err
	}

	r, err := h.fetchReserves(c, mint)
	if err != nil {
		return h.fail(c, err)
	}
	snapshot := *r

	out, err := quote(amount, r, bps)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, BuyQuoteResponse{Mint: mint.String(), SlippageBps: bps, Quote: out, Reserves: snapshot})
}

// QuoteSell quotes selling an exact token amount (baseIn) for SOL
func (h *Handlers) QuoteSell(c echo.Context) error {
	mint, amount, bps, ok, err := h.quoteInputs(c, "baseIn")
	if !ok {
		return err
	}

	r, err := h.fetchReserves(c, mint)
	if err != nil {
		return h.fail(c, err)
	}
	snapshot := *r

	out, err := h.Quoter.BaseToQuote(amount, r, bps)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, SellQuoteResponse{Mint: mint.String(), SlippageBps: bps, Quote: out, Reserves: snapshot})
}

// MaxIn bounds a known SOL input by +slippage
func (h *Handlers) MaxIn(c echo.Context) error {
	return h.bound(c, "quoteIn", h.Quoter.QuoteInMaxFor)
}

// MinOut bounds a known SOL output by -slippage
func (h *Handlers) MinOut(c echo.Context) error {
	return h.bound(c, "quoteOut", h.Quoter.QuoteOutMinFor)
}

func (h *Handlers) bound(c echo.Context, amountParam string, apply func(amount, slippage any) (uint64, error)) error {
	amount, err := requiredAmount(c, amountParam)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid "+amountParam, map[string]any{amountParam: err.Error()})
	}
	bps, err := amm.ParseSlippage(c.QueryParam("slippage"))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid slippage", map[string]any{"slippage": err.Error()})
	}

	out, err := apply(amount, bps)
	if err != nil {
		return h.fail(c, err)
	}
	lamports, err := amm.NormalizeQuoteAmount(amount)
	if err != nil || !lamports.IsUint64() {
		// non-positive amounts bound to zero
		return c.JSON(http.StatusOK, BoundResponse{SlippageBps: bps, Bound: out})
	}
	return c.JSON(http.StatusOK, BoundResponse{Amount: lamports.Uint64(), SlippageBps: bps, Bound: out})
}

// quoteInputs parses mint, amount and slippage. When ok is false the error
// response has already been written and err is its result.
func (h *Handlers) quoteInputs(c echo.Context, amountParam string) (solana.PublicKey, any, int64, bool, error) {
	mint, err := parseMint(c.QueryParam("mint"))
	if err != nil {
		return solana.PublicKey{}, nil, 0, false, h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"mint": err.Error()})
	}
	amount, err := requiredAmount(c, amountParam)
	if err != nil {
		return solana.PublicKey{}, nil, 0, false, h.err(c, http.StatusBadRequest, "invalid "+amountParam, map[string]any{amountParam: err.Error()})
	}
	bps, err := amm.ParseSlippage(c.QueryParam("slippage"))
	if err != nil {
		return solana.PublicKey{}, nil, 0, false, h.err(c, http.StatusBadRequest, "invalid slippage", map[string]any{"slippage": err.Error()})
	}
	return mint, amount, bps, true, nil
}

func (h *Handlers) fetchReserves(c echo.Context, mint solana.PublicKey) (*amm.Reserves, error) {
	ctx, cancel := h.withTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	r, err := h.Pools.FetchReserves(ctx, mint, solana.PublicKey{})
	if err != nil {
		h.Logger.WithError(err).WithField("mint", mint.String()).Warn("fetch reserves failed")
		return nil, err
	}
	return r, nil
}

func parseMint(s string) (solana.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return solana.PublicKey{}, errRequired
	}
	return solana.PublicKeyFromBase58(s)
}

func requiredAmount(c echo.Context, name string) (any, error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return nil, errRequired
	}
	return amm.ParseAmount(s)
}
