package constants

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Program addresses
var (
	PumpAMMProgramID         = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")
	PumpProgramID            = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	TokenProgramID           = solana.TokenProgramID
	Token2022ProgramID       = solana.Token2022ProgramID
	AssociatedTokenProgramID = solana.SPLAssociatedTokenAccountProgramID
	SystemProgramID          = solana.SystemProgramID
	WrappedSOLMint           = solana.WrappedSol
)

// PDA seeds used by the pump AMM program
const (
	SeedPool           = "pool"
	SeedPoolAuthority  = "pool-authority"
	SeedGlobalConfig   = "global_config"
	SeedCreatorVault   = "creator_vault"
	SeedEventAuthority = "__event_authority"
	CanonicalPoolIndex = 0
)

// Limits
const (
	PoolCacheSize = 1000
)

// Timeouts
const (
	DefaultRequestTimeout = 10 * time.Second
)

// Token mint addresses to symbols
var TokenSymbols = map[string]string{
	"So11111111111111111111111111111111111111112":  "SOL",
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": "USDC",
}

// Symbol returns a display symbol for mint, falling back to a shortened address
func Symbol(mint solana.PublicKey) string {
	s := mint.String()
	if sym, ok := TokenSymbols[s]; ok {
		return sym
	}
	return s[:4] + ".." + s[len(s)-4:]
}
