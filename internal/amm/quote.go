package amm

import (
	"context"
	"fmt"
	"math/big"
	"sync"
)

// ConfigSource supplies the pump AMM global config, usually from chain
type ConfigSource interface {
	FetchGlobalConfig(ctx context.Context) (*GlobalConfig, error)
}

// Quoter prices swaps against a reserve snapshot using the session's global
// config. Quoting is pure; the only state is the config pointer.
type Quoter struct {
	mu     sync.RWMutex
	loadMu sync.Mutex
	global *GlobalConfig
}

// NewQuoter returns a quoter using cfg. Pass nil and call EnsureLoaded to
// fetch the config later.
func NewQuoter(cfg *GlobalConfig) *Quoter {
	return &Quoter{global: cfg}
}

// EnsureLoaded fetches the global config from src unless one is already set.
// Concurrent callers share a single fetch.
func (q *Quoter) EnsureLoaded(ctx context.Context, src ConfigSource) error {
	if q.ready() {
		return nil
	}

	q.loadMu.Lock()
	defer q.loadMu.Unlock()
	if q.ready() {
		return nil
	}

	cfg, err := src.FetchGlobalConfig(ctx)
	if err != nil {
		return fmt.Errorf("load global config: %w", err)
	}
	if cfg == nil {
		return ErrConfigNotReady
	}

	q.SetGlobalConfig(cfg)
	return nil
}

// SetGlobalConfig replaces the config used by later quotes
func (q *Quoter) SetGlobalConfig(cfg *GlobalConfig) {
	q.mu.Lock()
	q.global = cfg
	q.mu.Unlock()
}

// GlobalConfig returns the loaded config or ErrConfigNotReady
func (q *Quoter) GlobalConfig() (*GlobalConfig, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.global == nil {
		return nil, ErrConfigNotReady
	}
	return q.global, nil
}

func (q *Quoter) ready() bool {
	_, err := q.GlobalConfig()
	return err == nil
}

type quoteOptions struct {
	sync bool
}

// QuoteOption tweaks a single quote call
type QuoteOption func(*quoteOptions)

// WithSync applies the returned quote to the reserves before returning it,
// so the next quote sees the post-swap pool.
func WithSync() QuoteOption {
	return func(o *quoteOptions) { o.sync = true }
}

// QuoteToBase quotes a buy with an exact SOL input: how many base tokens
// quoteIn buys and what the trader pays with fees and slippage.
func (q *Quoter) QuoteToBase(quoteIn any, r *Reserves, slippage any, opts ...QuoteOption) (BuyQuote, error) {
	global, in, bps, err := q.prepare(quoteIn, NormalizeQuoteAmount, slippage)
	if err != nil || in.Sign() <= 0 {
		return BuyQuote{}, err
	}
	if r == nil {
		return BuyQuote{}, fmt.Errorf("%w: nil reserves", ErrInvalidReserves)
	}

	amountIn, err := toU64(in)
	if err != nil {
		return BuyQuote{}, err
	}

	fees := global.FeesFor(r.Creator)
	totalFee, err := Fee(amountIn, fees.Total())
	if err != nil {
		return BuyQuote{}, err
	}
	lpFee, err := Fee(amountIn, fees.LpFeeBps)
	if err != nil {
		return BuyQuote{}, err
	}

	userIn, err := toU64(new(big.Int).Add(in, u64(totalFee)))
	if err != nil {
		return BuyQuote{}, err
	}
	inWithLp, err := toU64(new(big.Int).Add(in, u64(lpFee)))
	if err != nil {
		return BuyQuote{}, err
	}

	den := new(big.Int).Add(u64(r.QuoteReserve), in)
	if den.Sign() == 0 {
		return BuyQuote{}, ErrPoolDepleted
	}
	num := new(big.Int).Mul(u64(r.BaseReserve), in)
	baseOut := num.Quo(num, den)

	quote := BuyQuote{
		BaseAmountOut:          baseOut.Uint64(),
		QuoteAmountIn:          amountIn,
		QuoteAmountInWithLpFee: inWithLp,
		UserQuoteAmountIn:      userIn,
		QuoteInMax:             ApplySlippage(userIn, bps),
	}
	return settle(quote, r, opts)
}

// BaseToQuoteIn quotes a buy with an exact token output: the SOL needed to
// take baseOut out of the pool.
func (q *Quoter) BaseToQuoteIn(baseOut any, r *Reserves, slippage any, opts ...QuoteOption) (BuyQuote, error) {
	global, out, bps, err := q.prepare(baseOut, NormalizeBaseAmount, slippage)
	if err != nil || out.Sign() <= 0 {
		return BuyQuote{}, err
	}
	if r == nil {
		return BuyQuote{}, fmt.Errorf("%w: nil reserves", ErrInvalidReserves)
	}

	base := u64(r.BaseReserve)
	if out.Cmp(base) > 0 {
		return BuyQuote{}, fmt.Errorf("%w: want %s base, pool holds %d", ErrInsufficientReserves, out, r.BaseReserve)
	}
	den := new(big.Int).Sub(base, out)
	if den.Sign() == 0 {
		return BuyQuote{}, fmt.Errorf("%w: %w", ErrInsufficientReserves, ErrPoolDepleted)
	}

	num := new(big.Int).Mul(u64(r.QuoteReserve), out)
	in, err := CeilDiv(num, den)
	if err != nil {
		return BuyQuote{}, err
	}
	amountIn, err := toU64(in)
	if err != nil {
		return BuyQuote{}, err
	}

	fees, err := global.FeesFor(r.Creator).Amounts(amountIn)
	if err != nil {
		return BuyQuote{}, err
	}
	total := fees.Sum()
	userIn, err := toU64(total.Add(total, in))
	if err != nil {
		return BuyQuote{}, err
	}
	inWithLp, err := toU64(new(big.Int).Add(in, u64(fees.Lp)))
	if err != nil {
		return BuyQuote{}, err
	}

	quote := BuyQuote{
		BaseAmountOut:          out.Uint64(),
		QuoteAmountIn:          amountIn,
		QuoteAmountInWithLpFee: inWithLp,
		UserQuoteAmountIn:      userIn,
		QuoteInMax:             ApplySlippage(userIn, bps),
	}
	return settle(quote, r, opts)
}

// BaseToQuote quotes a sell with an exact token input: the SOL received
// after fees and the minimum accepted under slippage.
func (q *Quoter) BaseToQuote(baseIn any, r *Reserves, slippage any, opts ...QuoteOption) (SellQuote, error) {
	global, in, bps, err := q.prepare(baseIn, NormalizeBaseAmount, slippage)
	if err != nil || in.Sign() <= 0 {
		return SellQuote{}, err
	}
	if r == nil || r.BaseReserve == 0 || r.QuoteReserve == 0 {
		return SellQuote{}, fmt.Errorf("%w: reserves cannot be zero", ErrInvalidReserves)
	}

	amountIn, err := toU64(in)
	if err != nil {
		return SellQuote{}, err
	}

	num := new(big.Int).Mul(u64(r.QuoteReserve), in)
	den := new(big.Int).Add(u64(r.BaseReserve), in)
	quoteOut := num.Quo(num, den).Uint64()

	fees, err := global.FeesFor(r.Creator).Amounts(quoteOut)
	if err != nil {
		return SellQuote{}, err
	}

	// fees are subtracted one by one, each already rounded up
	userOut := new(big.Int).Sub(u64(quoteOut), fees.Sum())
	if userOut.Sign() < 0 {
		return SellQuote{}, fmt.Errorf("%w: fees exceed %d lamports out", ErrInsufficientOutput, quoteOut)
	}

	quote := SellQuote{
		BaseAmountIn:               amountIn,
		QuoteAmountOut:             quoteOut,
		QuoteAmountOutWithoutLpFee: quoteOut - fees.Lp,
		UserQuoteAmountOut:         userOut.Uint64(),
		QuoteOutMin:                ApplySlippage(userOut.Uint64(), -bps),
	}
	return settle(quote, r, opts)
}

// QuoteInMaxFor bounds an already known SOL input by +slippage
func (q *Quoter) QuoteInMaxFor(quoteIn any, slippage any) (uint64, error) {
	amount, bps, err := boundInputs(quoteIn, slippage)
	if err != nil {
		return 0, err
	}
	return ApplySlippage(amount, bps), nil
}

// QuoteOutMinFor bounds an already known SOL output by -slippage
func (q *Quoter) QuoteOutMinFor(quoteOut any, slippage any) (uint64, error) {
	amount, bps, err := boundInputs(quoteOut, slippage)
	if err != nil {
		return 0, err
	}
	return ApplySlippage(amount, -bps), nil
}

func boundInputs(amount any, slippage any) (uint64, int64, error) {
	v, err := NormalizeQuoteAmount(amount)
	if err != nil {
		return 0, 0, err
	}
	bps, err := NormalizeSlippage(slippage)
	if err != nil {
		return 0, 0, err
	}
	if v.Sign() <= 0 {
		return 0, bps, nil
	}
	out, err := toU64(v)
	if err != nil {
		return 0, 0, err
	}
	return out, bps, nil
}

// prepare validates everything a quote needs before any arithmetic runs
func (q *Quoter) prepare(amount any, normalize func(any) (*big.Int, error), slippage any) (*GlobalConfig, *big.Int, int64, error) {
	global, err := q.GlobalConfig()
	if err != nil {
		return nil, nil, 0, err
	}
	v, err := normalize(amount)
	if err != nil {
		return nil, nil, 0, err
	}
	bps, err := NormalizeSlippage(slippage)
	if err != nil {
		return nil, nil, 0, err
	}
	return global, v, bps, nil
}

func settle[T Swap](quote T, r *Reserves, opts []QuoteOption) (T, error) {
	var o quoteOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.sync {
		if err := Sync(quote, r); err != nil {
			var zero T
			return zero, err
		}
	}
	return quote, nil
}
