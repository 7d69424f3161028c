package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Client is an HTTP client with retry and timeout support for Solana RPC
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	limiter      *rate.Limiter
	encoding     string
	logger       *logrus.Logger
}

// ClientConfig holds configuration for the RPC client
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	RateLimit    float64 // requests per second, 0 = unlimited
	RateBurst    int
	Encoding     string // account data encoding, base64 (default) or base64+zstd
	Logger       *logrus.Logger
}

// NewClient creates a new RPC client with retry support
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = EncodingBase64
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:      cfg.BaseURL,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		limiter:      limiter,
		encoding:     encoding,
		logger:       cfg.Logger,
	}
}

// Call makes a JSON-RPC call with retry logic.
// Only transport failures are retried; a JSON-RPC error is returned in result.
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
				"method":  method,
			}).WithError(lastErr).Debug("retrying RPC call")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2 // exponential backoff
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := c.doRequest(ctx, data)
		if err != nil {
			lastErr = err
			continue
		}

		if err := json.Unmarshal(resp, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Handle rate limiting
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limited (429)")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// GetAccountInfo fetches one account. A missing account yields (nil, nil).
func (c *Client) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*AccountInfo, error) {
	params := []interface{}{
		account.String(),
		map[string]interface{}{"encoding": c.encoding},
	}

	var result AccountInfoResponse
	if err := c.Call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}

	if result.Error != nil {
		return nil, result.Error
	}
	if result.Result == nil {
		return nil, nil
	}

	return result.Result.Value, nil
}

// GetMultipleAccounts fetches accounts in one round trip, preserving order.
// Missing accounts are nil entries.
func (c *Client) GetMultipleAccounts(ctx context.Context, accounts ...solana.PublicKey) ([]*AccountInfo, error) {
	keys := make([]string, len(accounts))
	for i, a := range accounts {
		keys[i] = a.String()
	}
	params := []interface{}{
		keys,
		map[string]interface{}{"encoding": c.encoding},
	}

	var result MultipleAccountsResponse
	if err := c.Call(ctx, "getMultipleAccounts", params, &result); err != nil {
		return nil, err
	}

	if result.Error != nil {
		return nil, result.Error
	}
	if result.Result == nil || len(result.Result.Value) != len(accounts) {
		return nil, fmt.Errorf("getMultipleAccounts: expected %d accounts", len(accounts))
	}

	return result.Result.Value, nil
}
