package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/pumpswap-quoter/internal/rpc"
)

// WalletConfig holds the signing key and transaction defaults
type WalletConfig struct {
	RPC        *rpc.Client
	PrivateKey string // base58-encoded 64-byte key OR solana-keygen JSON array
	Commitment string // e.g. "confirmed"

	ComputeUnitPrice uint64 // micro-lamports per compute unit, 0 = no priority fee
	ComputeUnitLimit uint32 // 0 = runtime default

	Logger *logrus.Logger
}

// Wallet signs and submits swap transactions for one keypair
type Wallet struct {
	cfg  WalletConfig
	rpc  *rpc.Client
	priv solana.PrivateKey
	pub  solana.PublicKey
}

func NewWallet(cfg WalletConfig) (*Wallet, error) {
	if cfg.RPC == nil {
		return nil, errors.New("wallet: RPC client is required")
	}
	if strings.TrimSpace(cfg.PrivateKey) == "" {
		return nil, errors.New("wallet: PrivateKey is required")
	}
	if cfg.Commitment == "" {
		cfg.Commitment = "confirmed"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	priv, err := parsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		cfg:  cfg,
		rpc:  cfg.RPC,
		priv: priv,
		pub:  priv.PublicKey(),
	}, nil
}

func (w *Wallet) PublicKey() solana.PublicKey { return w.pub }

// Balance returns the wallet's SOL balance in lamports
func (w *Wallet) Balance(ctx context.Context) (uint64, error) {
	var resp struct {
		Result *struct {
			Value uint64 `json:"value"`
		} `json:"result"`
		Error *rpc.RPCError `json:"error"`
	}

	params := []any{
		w.pub.String(),
		map[string]any{"commitment": w.cfg.Commitment},
	}

	if err := w.rpc.Call(ctx, "getBalance", params, &resp); err != nil {
		return 0, fmt.Errorf("getBalance RPC failed: %w", err)
	}
	if resp.Error != nil {
		return 0, resp.Error
	}
	if resp.Result == nil {
		return 0, errors.New("getBalance: empty result")
	}
	return resp.Result.Value, nil
}

// SignTx signs tx with the wallet key; the wallet must be the only signer
func (w *Wallet) SignTx(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.pub) {
			return &w.priv
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

func parsePrivateKey(s string) (solana.PrivateKey, error) {
	s = strings.TrimSpace(s)
	var raw []byte
	if strings.HasPrefix(s, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(s), &ints); err != nil {
			return nil, fmt.Errorf("wallet: invalid JSON private key: %w", err)
		}
		raw = make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("wallet: invalid byte at %d: %d", i, v)
			}
			raw[i] = byte(v)
		}
	} else {
		b, err := base58.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("wallet: invalid base58 private key: %w", err)
		}
		raw = b
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wallet: expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	return solana.PrivateKey(raw), nil
}
