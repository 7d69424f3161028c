package pumpswap

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/pumpswap-quoter/internal/amm"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/cache"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/constants"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/rpc"
)

// PoolCache holds decoded pool accounts by address
type PoolCache = cache.PoolCache[solana.PublicKey, *Pool]

// Client reads pump AMM state over JSON-RPC
type Client struct {
	rpc    *rpc.Client
	pools  *PoolCache
	logger *logrus.Logger
}

// ClientConfig holds dependencies for the pump AMM client
type ClientConfig struct {
	RPC    *rpc.Client
	Pools  *PoolCache // nil creates a private cache of the default size
	Logger *logrus.Logger
}

// NewClient creates a pump AMM client on top of the project's RPC client
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Pools == nil {
		cfg.Pools = cache.NewPoolCache[solana.PublicKey, *Pool](constants.PoolCacheSize)
	}

	return &Client{
		rpc:    cfg.RPC,
		pools:  cfg.Pools,
		logger: cfg.Logger,
	}
}

var _ amm.ConfigSource = (*Client)(nil)

// FetchReserves reads the canonical pool of baseMint and both of its token
// accounts in a single getMultipleAccounts call. A zero quoteMint means wSOL.
// The pool account itself is served from the cache when possible and is
// evicted when its vaults no longer decode.
func (c *Client) FetchReserves(ctx context.Context, baseMint, quoteMint solana.PublicKey) (*amm.Reserves, error) {
	if quoteMint.IsZero() {
		quoteMint = constants.WrappedSOLMint
	}

	poolAddr, err := PoolAddress(baseMint)
	if err != nil {
		return nil, err
	}
	baseVault, err := AssociatedTokenAddress(poolAddr, baseMint, constants.TokenProgramID)
	if err != nil {
		return nil, err
	}
	quoteVault, err := AssociatedTokenAddress(poolAddr, quoteMint, constants.TokenProgramID)
	if err != nil {
		return nil, err
	}

	pool, cached := c.pools.Get(poolAddr)
	keys := []solana.PublicKey{baseVault, quoteVault}
	if !cached {
		keys = append(keys, poolAddr)
	}

	c.logger.WithFields(logrus.Fields{
		"pool":   poolAddr.String(),
		"mint":   baseMint.String(),
		"cached": cached,
	}).Debug("fetching pool reserves")

	infos, err := c.rpc.GetMultipleAccounts(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("fetch reserves for %s: %w", baseMint, err)
	}

	if !cached {
		data, err := accountData(infos[2], poolAddr)
		if err != nil {
			return nil, err
		}
		if pool, err = DecodePool(data); err != nil {
			return nil, err
		}
		c.pools.Put(poolAddr, pool)
	}

	base, err := decodeTokenAccount(infos[0], baseVault)
	if err != nil {
		c.pools.Remove(poolAddr)
		return nil, err
	}
	quote, err := decodeTokenAccount(infos[1], quoteVault)
	if err != nil {
		c.pools.Remove(poolAddr)
		return nil, err
	}

	return &amm.Reserves{
		BaseReserve:  base.Amount,
		QuoteReserve: quote.Amount,
		Creator:      pool.CoinCreator,
	}, nil
}

// FetchGlobalConfig reads the program's global_config account
func (c *Client) FetchGlobalConfig(ctx context.Context) (*amm.GlobalConfig, error) {
	addr, err := GlobalConfigAddress()
	if err != nil {
		return nil, err
	}

	info, err := c.rpc.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("fetch global config: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, addr)
	}

	data, err := info.Bytes()
	if err != nil {
		return nil, err
	}
	cfg, err := DecodeGlobalConfig(data)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"lp_fee_bps":           cfg.LpFeeBps,
		"protocol_fee_bps":     cfg.ProtocolFeeBps,
		"coin_creator_fee_bps": cfg.CoinCreatorFeeBps,
	}).Info("loaded pump AMM global config")

	return cfg, nil
}

// GetPool fetches and decodes a pool account, bypassing the cache
func (c *Client) GetPool(ctx context.Context, addr solana.PublicKey) (*Pool, error) {
	data, err := c.getAccountData(ctx, addr)
	if err != nil {
		return nil, err
	}
	return DecodePool(data)
}

// GetTokenAccount fetches and decodes an SPL token account
func (c *Client) GetTokenAccount(ctx context.Context, addr solana.PublicKey) (*token.Account, error) {
	data, err := c.getAccountData(ctx, addr)
	if err != nil {
		return nil, err
	}
	return DecodeTokenAccount(data)
}

// GetMint fetches and decodes an SPL mint
func (c *Client) GetMint(ctx context.Context, addr solana.PublicKey) (*token.Mint, error) {
	data, err := c.getAccountData(ctx, addr)
	if err != nil {
		return nil, err
	}
	return DecodeMint(data)
}

// CacheStats exposes pool cache counters
func (c *Client) CacheStats() cache.Stats {
	return c.pools.Stats()
}

func (c *Client) getAccountData(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	info, err := c.rpc.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("fetch account %s: %w", addr, err)
	}
	return accountData(info, addr)
}

func decodeTokenAccount(info *rpc.AccountInfo, addr solana.PublicKey) (*token.Account, error) {
	data, err := accountData(info, addr)
	if err != nil {
		return nil, err
	}
	return DecodeTokenAccount(data)
}

func accountData(info *rpc.AccountInfo, addr solana.PublicKey) ([]byte, error) {
	if info == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	data, err := info.Bytes()
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", addr, err)
	}
	return data, nil
}
