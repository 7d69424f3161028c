package pumpswap

import (
	"bytes"
	"fmt"
	"math/rand"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/aman-zulfiqar/pumpswap-quoter/internal/amm"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/constants"
)

// SwapKeys are the accounts a pump AMM buy or sell touches
type SwapKeys struct {
	Pool                             solana.PublicKey
	User                             solana.PublicKey
	GlobalConfig                     solana.PublicKey
	BaseMint                         solana.PublicKey
	QuoteMint                        solana.PublicKey
	UserBaseTokenAccount             solana.PublicKey
	UserQuoteTokenAccount            solana.PublicKey
	PoolBaseTokenAccount             solana.PublicKey
	PoolQuoteTokenAccount            solana.PublicKey
	ProtocolFeeRecipient             solana.PublicKey
	ProtocolFeeRecipientTokenAccount solana.PublicKey
	BaseTokenProgram                 solana.PublicKey
	QuoteTokenProgram                solana.PublicKey
	EventAuthority                   solana.PublicKey
	CoinCreatorVaultAccount          solana.PublicKey
	CoinCreatorVaultAuthority        solana.PublicKey
}

// AccountMetas returns the keys in the program's instruction order
func (k *SwapKeys) AccountMetas() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: k.Pool, IsWritable: false, IsSigner: false},
		{PublicKey: k.User, IsWritable: true, IsSigner: true},
		{PublicKey: k.GlobalConfig, IsWritable: false, IsSigner: false},
		{PublicKey: k.BaseMint, IsWritable: false, IsSigner: false},
		{PublicKey: k.QuoteMint, IsWritable: false, IsSigner: false},
		{PublicKey: k.UserBaseTokenAccount, IsWritable: true, IsSigner: false},
		{PublicKey: k.UserQuoteTokenAccount, IsWritable: true, IsSigner: false},
		{PublicKey: k.PoolBaseTokenAccount, IsWritable: true, IsSigner: false},
		{PublicKey: k.PoolQuoteTokenAccount, IsWritable: true, IsSigner: false},
		{PublicKey: k.ProtocolFeeRecipient, IsWritable: false, IsSigner: false},
		{PublicKey: k.ProtocolFeeRecipientTokenAccount, IsWritable: true, IsSigner: false},
		{PublicKey: k.BaseTokenProgram, IsWritable: false, IsSigner: false},
		{PublicKey: k.QuoteTokenProgram, IsWritable: false, IsSigner: false},
		{PublicKey: constants.SystemProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: constants.AssociatedTokenProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: k.EventAuthority, IsWritable: false, IsSigner: false},
		{PublicKey: constants.PumpAMMProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: k.CoinCreatorVaultAccount, IsWritable: true, IsSigner: false},
		{PublicKey: k.CoinCreatorVaultAuthority, IsWritable: false, IsSigner: false},
	}
}

// RecipientPicker chooses which protocol fee recipient a swap pays
type RecipientPicker func(recipients []solana.PublicKey) solana.PublicKey

// RandomRecipient spreads swaps over all recipients
func RandomRecipient(recipients []solana.PublicKey) solana.PublicKey {
	return recipients[rand.Intn(len(recipients))]
}

// InstructionBuilder assembles swap instructions for one global config
type InstructionBuilder struct {
	global *amm.GlobalConfig
	pick   RecipientPicker
}

// BuilderOption configures an InstructionBuilder
type BuilderOption func(*InstructionBuilder)

// WithRecipientPicker overrides the random protocol fee recipient choice
func WithRecipientPicker(pick RecipientPicker) BuilderOption {
	return func(b *InstructionBuilder) { b.pick = pick }
}

// NewInstructionBuilder creates a builder using global's fee recipients
func NewInstructionBuilder(global *amm.GlobalConfig, opts ...BuilderOption) *InstructionBuilder {
	b := &InstructionBuilder{global: global, pick: RandomRecipient}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Keys resolves every account of a swap on the canonical pool of baseMint
func (b *InstructionBuilder) Keys(baseMint, quoteMint, user, creator solana.PublicKey) (*SwapKeys, error) {
	if b.global == nil {
		return nil, amm.ErrConfigNotReady
	}
	if len(b.global.ProtocolFeeRecipients) == 0 {
		return nil, fmt.Errorf("global config has no protocol fee recipients")
	}
	if user.IsZero() {
		return nil, fmt.Errorf("user is zero")
	}

	tokenProgram := constants.TokenProgramID
	k := &SwapKeys{
		User:              user,
		BaseMint:          baseMint,
		QuoteMint:         quoteMint,
		BaseTokenProgram:  tokenProgram,
		QuoteTokenProgram: tokenProgram,
	}

	var err error
	if k.Pool, err = PoolAddress(baseMint); err != nil {
		return nil, err
	}
	if k.GlobalConfig, err = GlobalConfigAddress(); err != nil {
		return nil, err
	}
	if k.EventAuthority, err = EventAuthority(); err != nil {
		return nil, err
	}

	atas := []struct {
		dst         *solana.PublicKey
		owner, mint solana.PublicKey
	}{
		{&k.UserBaseTokenAccount, user, baseMint},
		{&k.UserQuoteTokenAccount, user, quoteMint},
		{&k.PoolBaseTokenAccount, k.Pool, baseMint},
		{&k.PoolQuoteTokenAccount, k.Pool, quoteMint},
	}
	for _, a := range atas {
		if *a.dst, err = AssociatedTokenAddress(a.owner, a.mint, tokenProgram); err != nil {
			return nil, err
		}
	}

	k.ProtocolFeeRecipient = b.pick(b.global.ProtocolFeeRecipients)
	if k.ProtocolFeeRecipientTokenAccount, err = ProtocolFeeRecipientTokenAccount(k.ProtocolFeeRecipient, quoteMint, tokenProgram); err != nil {
		return nil, err
	}
	if k.CoinCreatorVaultAuthority, err = CreatorVaultAuthority(creator); err != nil {
		return nil, err
	}
	if k.CoinCreatorVaultAccount, err = CreatorVaultAccount(k.CoinCreatorVaultAuthority, quoteMint, tokenProgram); err != nil {
		return nil, err
	}

	return k, nil
}

// BuildBuy buys exactly baseOut tokens paying at most quoteInMax.
// A wSOL quote side is wrapped before the swap and closed after it.
func (b *InstructionBuilder) BuildBuy(baseMint, quoteMint solana.PublicKey, baseOut, quoteInMax uint64, user solana.PublicKey, r *amm.Reserves) ([]solana.Instruction, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reserves", amm.ErrInvalidReserves)
	}
	k, err := b.Keys(baseMint, quoteMint, user, r.Creator)
	if err != nil {
		return nil, err
	}

	ix := []solana.Instruction{
		NewCreateATAIdempotentIx(user, k.UserBaseTokenAccount, user, baseMint, k.BaseTokenProgram),
	}
	wrapQuote := quoteMint.Equals(constants.WrappedSOLMint)
	if wrapQuote {
		ix = append(ix, wrapSOL(user, k.UserQuoteTokenAccount, quoteInMax, k.QuoteTokenProgram)...)
	}

	swap, err := newSwapIx(buyDiscriminator, baseOut, quoteInMax, k)
	if err != nil {
		return nil, err
	}
	ix = append(ix, swap)

	if baseMint.Equals(constants.WrappedSOLMint) {
		ix = append(ix, NewCloseAccountIx(k.UserBaseTokenAccount, user, user))
	}
	if wrapQuote {
		ix = append(ix, NewCloseAccountIx(k.UserQuoteTokenAccount, user, user))
	}
	return ix, nil
}

// BuildSell sells exactly baseIn tokens for at least quoteOutMin.
// wSOL received is unwrapped back to the user.
func (b *InstructionBuilder) BuildSell(baseMint, quoteMint solana.PublicKey, baseIn, quoteOutMin uint64, user solana.PublicKey, r *amm.Reserves) ([]solana.Instruction, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reserves", amm.ErrInvalidReserves)
	}
	k, err := b.Keys(baseMint, quoteMint, user, r.Creator)
	if err != nil {
		return nil, err
	}

	var ix []solana.Instruction
	wrapBase := baseMint.Equals(constants.WrappedSOLMint)
	if wrapBase {
		ix = append(ix, wrapSOL(user, k.UserBaseTokenAccount, baseIn, k.BaseTokenProgram)...)
	}
	ix = append(ix, NewCreateATAIdempotentIx(user, k.UserQuoteTokenAccount, user, quoteMint, k.QuoteTokenProgram))

	swap, err := newSwapIx(sellDiscriminator, baseIn, quoteOutMin, k)
	if err != nil {
		return nil, err
	}
	ix = append(ix, swap)

	if wrapBase {
		ix = append(ix, NewCloseAccountIx(k.UserBaseTokenAccount, user, user))
	}
	if quoteMint.Equals(constants.WrappedSOLMint) {
		ix = append(ix, NewCloseAccountIx(k.UserQuoteTokenAccount, user, user))
	}
	return ix, nil
}

// Buy is BuildBuy against SOL
func (b *InstructionBuilder) Buy(mint solana.PublicKey, baseOut, quoteInMax uint64, user solana.PublicKey, r *amm.Reserves) ([]solana.Instruction, error) {
	return b.BuildBuy(mint, constants.WrappedSOLMint, baseOut, quoteInMax, user, r)
}

// Sell is BuildSell against SOL
func (b *InstructionBuilder) Sell(mint solana.PublicKey, baseIn, quoteOutMin uint64, user solana.PublicKey, r *amm.Reserves) ([]solana.Instruction, error) {
	return b.BuildSell(mint, constants.WrappedSOLMint, baseIn, quoteOutMin, user, r)
}

type swapArgs struct {
	Discriminator [8]byte
	BaseAmount    uint64
	QuoteAmount   uint64
}

func newSwapIx(disc [8]byte, baseAmount, quoteAmount uint64, k *SwapKeys) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	args := swapArgs{Discriminator: disc, BaseAmount: baseAmount, QuoteAmount: quoteAmount}
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, fmt.Errorf("failed to encode swap args: %w", err)
	}
	return solana.NewInstruction(constants.PumpAMMProgramID, k.AccountMetas(), buf.Bytes()), nil
}

// NewCreateATAIdempotentIx creates ata unless it already exists.
// Account order (ATA program, instruction 1):
// 0. payer (signer, writable)
// 1. ata (writable)
// 2. owner
// 3. mint
// 4. system_program
// 5. token_program
func NewCreateATAIdempotentIx(payer, ata, owner, mint, tokenProgram solana.PublicKey) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: ata, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: constants.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: tokenProgram, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(constants.AssociatedTokenProgramID, accounts, []byte{1})
}

// NewCloseAccountIx closes a token account, returning its lamports to destination
func NewCloseAccountIx(account, destination, owner solana.PublicKey) solana.Instruction {
	return token.NewCloseAccountInstruction(account, destination, owner, nil).Build()
}

// wrapSOL funds the user's wSOL account with lamports and syncs its balance
func wrapSOL(user, ata solana.PublicKey, lamports uint64, tokenProgram solana.PublicKey) []solana.Instruction {
	ix := []solana.Instruction{
		NewCreateATAIdempotentIx(user, ata, user, constants.WrappedSOLMint, tokenProgram),
	}
	if lamports > 0 {
		ix = append(ix,
			system.NewTransferInstruction(lamports, user, ata).Build(),
			token.NewSyncNativeInstruction(ata).Build(),
		)
	}
	return ix
}
