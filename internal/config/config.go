package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	// RPC settings
	RPCUrl       string
	RPCRateLimit float64 // requests/second, 0 = unlimited
	RPCRateBurst int
	RPCEncoding  string // account data encoding: base64 or base64+zstd

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// Quoter settings
	PoolCacheSize          int
	UseDefaultGlobalConfig bool // skip fetching global_config and use the built-in mainnet values

	// Wallet settings, only needed to send swaps
	WalletPrivateKey string
	WalletCommitment string
	ComputeUnitPrice uint64 // micro-lamports
	ComputeUnitLimit uint32

	// API settings
	APIAddr      string
	APIKey       string
	APIRateLimit float64
	APIRateBurst int
	DevMode      bool

	LogLevel logrus.Level
}

func Load() *Config {
	return &Config{
		// RPC
		RPCUrl:       getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		RPCRateLimit: getFloatEnv("RPC_RATE_LIMIT", 0),
		RPCRateBurst: getIntEnv("RPC_RATE_BURST", 1),
		RPCEncoding:  getEnv("RPC_ACCOUNT_ENCODING", "base64"),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 5),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 2*time.Second),

		// Quoter
		PoolCacheSize:          getIntEnv("POOL_CACHE_SIZE", 1000),
		UseDefaultGlobalConfig: getBoolEnv("USE_DEFAULT_GLOBAL_CONFIG", false),

		// Wallet
		WalletPrivateKey: getEnv("WALLET_PRIVATE_KEY", ""),
		WalletCommitment: getEnv("WALLET_COMMITMENT", "confirmed"),
		ComputeUnitPrice: uint64(max(getIntEnv("COMPUTE_UNIT_PRICE", 0), 0)),
		ComputeUnitLimit: uint32(max(getIntEnv("COMPUTE_UNIT_LIMIT", 0), 0)),

		// API
		APIAddr:      getEnv("API_ADDR", ":8090"),
		APIKey:       getEnv("API_KEY", ""),
		APIRateLimit: getFloatEnv("API_RATE_LIMIT", 5),
		APIRateBurst: getIntEnv("API_RATE_BURST", 10),
		DevMode:      getBoolEnv("DEV_MODE", false),

		LogLevel: getLevelEnv("LOG_LEVEL", logrus.InfoLevel),
	}
}

// Validate rejects settings the services cannot start with
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.RPCUrl); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("SOLANA_RPC_URL %q is not an absolute url", c.RPCUrl))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("MAX_RETRIES cannot be negative"))
	}
	if c.RPCRateLimit < 0 || c.APIRateLimit < 0 {
		errs = append(errs, errors.New("rate limits cannot be negative"))
	}
	if c.RPCRateLimit > 0 && c.RPCRateBurst < 1 {
		errs = append(errs, errors.New("RPC_RATE_BURST must be at least 1"))
	}
	if c.RPCEncoding != "base64" && c.RPCEncoding != "base64+zstd" {
		errs = append(errs, fmt.Errorf("RPC_ACCOUNT_ENCODING %q must be base64 or base64+zstd", c.RPCEncoding))
	}
	if c.PoolCacheSize < 1 {
		errs = append(errs, errors.New("POOL_CACHE_SIZE must be at least 1"))
	}
	switch c.WalletCommitment {
	case "processed", "confirmed", "finalized":
	default:
		errs = append(errs, fmt.Errorf("WALLET_COMMITMENT %q must be processed, confirmed or finalized", c.WalletCommitment))
	}
	if c.APIAddr == "" {
		errs = append(errs, errors.New("API_ADDR is required"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getLevelEnv(key string, defaultVal logrus.Level) logrus.Level {
	if val := os.Getenv(key); val != "" {
		if l, err := logrus.ParseLevel(val); err == nil {
			return l
		}
	}
	return defaultVal
}
