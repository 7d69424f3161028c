package pumpswap

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/pumpswap-quoter/internal/constants"
)

// PoolAuthority derives the pump program's pool-authority PDA for mint.
// It is the creator of every pool migrated from the bonding curve.
func PoolAuthority(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(constants.SeedPoolAuthority), mint.Bytes()},
		constants.PumpProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive pool authority: %w", err)
	}
	return addr, nil
}

// PoolPDA derives a pump AMM pool address from its index, creator and mints
func PoolPDA(index uint16, creator, baseMint, quoteMint solana.PublicKey) (solana.PublicKey, error) {
	idx := make([]byte, 2)
	binary.LittleEndian.PutUint16(idx, index)

	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte(constants.SeedPool),
			idx,
			creator.Bytes(),
			baseMint.Bytes(),
			quoteMint.Bytes(),
		},
		constants.PumpAMMProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive pool: %w", err)
	}
	return addr, nil
}

// PoolAddress returns the canonical token/SOL pool for a pump token:
// index 0, created by the token's pool authority, quoted in wSOL.
func PoolAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	authority, err := PoolAuthority(mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return PoolPDA(constants.CanonicalPoolIndex, authority, mint, constants.WrappedSOLMint)
}

// GlobalConfigAddress is the program-wide fee config account
func GlobalConfigAddress() (solana.PublicKey, error) {
	return findAMM([]byte(constants.SeedGlobalConfig))
}

// EventAuthority is the Anchor event CPI authority of the program
func EventAuthority() (solana.PublicKey, error) {
	return findAMM([]byte(constants.SeedEventAuthority))
}

// CreatorVaultAuthority derives the PDA that owns a coin creator's fee vault
func CreatorVaultAuthority(creator solana.PublicKey) (solana.PublicKey, error) {
	return findAMM([]byte(constants.SeedCreatorVault), creator.Bytes())
}

// CreatorVaultAccount is the quote token account collecting creator fees
func CreatorVaultAccount(vaultAuthority, quoteMint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	return AssociatedTokenAddress(vaultAuthority, quoteMint, tokenProgram)
}

// ProtocolFeeRecipientTokenAccount is the recipient's quote token account
func ProtocolFeeRecipientTokenAccount(recipient, quoteMint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	return AssociatedTokenAddress(recipient, quoteMint, tokenProgram)
}

// AssociatedTokenAddress derives the ATA of (owner, mint) for either token program.
// Off-curve owners such as pools and vault PDAs are allowed.
func AssociatedTokenAddress(owner, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{owner.Bytes(), tokenProgram.Bytes(), mint.Bytes()},
		constants.AssociatedTokenProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive associated token account: %w", err)
	}
	return addr, nil
}

func findAMM(seeds ...[]byte) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(seeds, constants.PumpAMMProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive %q: %w", seeds[0], err)
	}
	return addr, nil
}
