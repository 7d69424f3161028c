package pumpswap

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/aman-zulfiqar/pumpswap-quoter/internal/amm"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrConfigNotFound     = errors.New("global config not found")
	ErrInvalidAccountData = errors.New("invalid account data")
)

// Anchor discriminators
var (
	poolDiscriminator         = discriminator("account", "Pool")
	globalConfigDiscriminator = discriminator("account", "GlobalConfig")
	buyDiscriminator          = discriminator("global", "buy")
	sellDiscriminator         = discriminator("global", "sell")
)

// discriminator is the first 8 bytes of sha256("namespace:name")
func discriminator(namespace, name string) [8]byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// Account sizes up to the last field decoded here. Pools created before coin
// creators existed are shorter and decode with a zero CoinCreator.
const (
	poolAccountSize         = 8 + 1 + 2 + 32*6 + 8 + 32
	globalConfigAccountSize = 8 + 32 + 8 + 8 + 1 + 32*8 + 8
)

// Pool is the pump AMM pool account
type Pool struct {
	Discriminator         [8]byte
	PoolBump              uint8
	Index                 uint16
	Creator               solana.PublicKey
	BaseMint              solana.PublicKey
	QuoteMint             solana.PublicKey
	LpMint                solana.PublicKey
	PoolBaseTokenAccount  solana.PublicKey
	PoolQuoteTokenAccount solana.PublicKey
	LpSupply              uint64
	CoinCreator           solana.PublicKey
}

type globalConfigAccount struct {
	Discriminator             [8]byte
	Admin                     solana.PublicKey
	LpFeeBasisPoints          uint64
	ProtocolFeeBasisPoints    uint64
	DisableFlags              uint8
	ProtocolFeeRecipients     [8]solana.PublicKey
	CoinCreatorFeeBasisPoints uint64
}

// DecodePool decodes a borsh-encoded pool account
func DecodePool(data []byte) (*Pool, error) {
	var p Pool
	if err := decodeAnchor(data, poolDiscriminator, poolAccountSize, &p); err != nil {
		return nil, fmt.Errorf("decode pool: %w", err)
	}
	return &p, nil
}

// DecodeGlobalConfig decodes the global_config account into the quoter's model
func DecodeGlobalConfig(data []byte) (*amm.GlobalConfig, error) {
	var raw globalConfigAccount
	if err := decodeAnchor(data, globalConfigDiscriminator, globalConfigAccountSize, &raw); err != nil {
		return nil, fmt.Errorf("decode global config: %w", err)
	}

	recipients := make([]solana.PublicKey, 0, len(raw.ProtocolFeeRecipients))
	for _, r := range raw.ProtocolFeeRecipients {
		if !r.IsZero() {
			recipients = append(recipients, r)
		}
	}

	return &amm.GlobalConfig{
		Admin:                 raw.Admin,
		LpFeeBps:              raw.LpFeeBasisPoints,
		ProtocolFeeBps:        raw.ProtocolFeeBasisPoints,
		DisableFlags:          raw.DisableFlags,
		ProtocolFeeRecipients: recipients,
		CoinCreatorFeeBps:     raw.CoinCreatorFeeBasisPoints,
	}, nil
}

func decodeAnchor(data []byte, want [8]byte, size int, v interface{}) error {
	if len(data) < 8 || !bytes.Equal(data[:8], want[:]) {
		return fmt.Errorf("%w: discriminator mismatch", ErrInvalidAccountData)
	}
	if len(data) < size {
		padded := make([]byte, size)
		copy(padded, data)
		data = padded
	}
	if err := bin.NewBorshDecoder(data).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}
	return nil
}

// DecodeTokenAccount decodes an SPL token account (legacy or Token-2022 base layout)
func DecodeTokenAccount(data []byte) (*token.Account, error) {
	var acc token.Account
	if err := bin.NewBinDecoder(data).Decode(&acc); err != nil {
		return nil, fmt.Errorf("%w: token account: %v", ErrInvalidAccountData, err)
	}
	return &acc, nil
}

// DecodeMint decodes an SPL mint account
func DecodeMint(data []byte) (*token.Mint, error) {
	var mint token.Mint
	if err := bin.NewBinDecoder(data).Decode(&mint); err != nil {
		return nil, fmt.Errorf("%w: mint: %v", ErrInvalidAccountData, err)
	}
	return &mint, nil
}
