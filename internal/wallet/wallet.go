package wallet

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/pumpswap-quoter/internal/rpc"
)

var ErrSimulationFailed = errors.New("simulation failed")

// SimulationResult contains simulation output
type SimulationResult struct {
	Success       bool
	Error         string
	Logs          []string
	UnitsConsumed uint64
}

// LatestBlockhash fetches the most recent blockhash at the wallet's commitment
func (w *Wallet) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var resp struct {
		Result *struct {
			Value struct {
				Blockhash            string `json:"blockhash"`
				LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
			} `json:"value"`
		} `json:"result"`
		Error *rpc.RPCError `json:"error"`
	}

	params := []any{map[string]any{"commitment": w.cfg.Commitment}}
	if err := w.rpc.Call(ctx, "getLatestBlockhash", params, &resp); err != nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash failed: %w", err)
	}
	if resp.Error != nil {
		return solana.Hash{}, resp.Error
	}
	if resp.Result == nil {
		return solana.Hash{}, errors.New("getLatestBlockhash: empty result")
	}

	hash, err := solana.HashFromBase58(resp.Result.Value.Blockhash)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("invalid blockhash format: %w", err)
	}
	return hash, nil
}

// BuildTransaction wraps swap instructions in a transaction paid by the
// wallet, prefixed with compute budget instructions when configured.
func (w *Wallet) BuildTransaction(ctx context.Context, instructions []solana.Instruction) (*solana.Transaction, error) {
	if len(instructions) == 0 {
		return nil, errors.New("wallet: no instructions")
	}

	blockhash, err := w.LatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get blockhash: %w", err)
	}

	ixs := make([]solana.Instruction, 0, len(instructions)+2)
	if w.cfg.ComputeUnitLimit > 0 {
		ixs = append(ixs, computebudget.NewSetComputeUnitLimitInstruction(w.cfg.ComputeUnitLimit).Build())
	}
	if w.cfg.ComputeUnitPrice > 0 {
		ixs = append(ixs, computebudget.NewSetComputeUnitPriceInstruction(w.cfg.ComputeUnitPrice).Build())
	}
	ixs = append(ixs, instructions...)

	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(w.pub))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// Simulate runs a signed transaction against the current bank state
func (w *Wallet) Simulate(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	encoded, err := encodeTx(tx)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result *struct {
			Value struct {
				Err           any      `json:"err"`
				Logs          []string `json:"logs"`
				UnitsConsumed uint64   `json:"unitsConsumed,omitempty"`
			} `json:"value"`
		} `json:"result"`
		Error *rpc.RPCError `json:"error"`
	}

	params := []any{
		encoded,
		map[string]any{"encoding": "base64", "commitment": "processed"},
	}
	if err := w.rpc.Call(ctx, "simulateTransaction", params, &resp); err != nil {
		return nil, fmt.Errorf("simulateTransaction failed: %w", err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Result == nil {
		return nil, errors.New("simulateTransaction: empty result")
	}

	v := resp.Result.Value
	result := &SimulationResult{Success: v.Err == nil, Logs: v.Logs, UnitsConsumed: v.UnitsConsumed}
	if v.Err != nil {
		result.Error = fmt.Sprintf("%v", v.Err)
		return result, fmt.Errorf("%w: %v", ErrSimulationFailed, v.Err)
	}
	return result, nil
}

// Send submits a signed transaction and returns its signature
func (w *Wallet) Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	encoded, err := encodeTx(tx)
	if err != nil {
		return solana.Signature{}, err
	}

	var resp struct {
		Result string        `json:"result"`
		Error  *rpc.RPCError `json:"error"`
	}

	params := []any{
		encoded,
		map[string]any{
			"encoding":            "base64",
			"skipPreflight":       false,
			"preflightCommitment": "processed",
			"maxRetries":          3,
		},
	}
	if err := w.rpc.Call(ctx, "sendTransaction", params, &resp); err != nil {
		return solana.Signature{}, fmt.Errorf("sendTransaction RPC failed: %w", err)
	}
	if resp.Error != nil {
		return solana.Signature{}, resp.Error
	}

	sig, err := solana.SignatureFromBase58(resp.Result)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("invalid signature %q: %w", resp.Result, err)
	}
	return sig, nil
}

// Confirm polls the signature status until the wallet's commitment is
// reached, the transaction fails, or timeout passes.
func (w *Wallet) Confirm(ctx context.Context, sig solana.Signature, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := 500 * time.Millisecond
	maxBackoff := 4 * time.Second

	for {
		confirmed, err := w.signatureConfirmed(ctx, sig)
		if err != nil {
			return err
		}
		if confirmed {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("transaction %s not confirmed after %v: %w", sig, timeout, ctx.Err())
		case <-time.After(backoff):
			backoff = min(backoff*2, maxBackoff)
		}
	}
}

func (w *Wallet) signatureConfirmed(ctx context.Context, sig solana.Signature) (bool, error) {
	var resp struct {
		Result *struct {
			Value []*struct {
				Err                any    `json:"err"`
				ConfirmationStatus string `json:"confirmationStatus"`
			} `json:"value"`
		} `json:"result"`
		Error *rpc.RPCError `json:"error"`
	}

	params := []any{
		[]string{sig.String()},
		map[string]any{"searchTransactionHistory": true},
	}
	if err := w.rpc.Call(ctx, "getSignatureStatuses", params, &resp); err != nil {
		return false, fmt.Errorf("failed to check signature: %w", err)
	}
	if resp.Error != nil {
		return false, resp.Error
	}
	if resp.Result == nil || len(resp.Result.Value) == 0 || resp.Result.Value[0] == nil {
		return false, nil
	}

	status := resp.Result.Value[0]
	if status.Err != nil {
		return false, fmt.Errorf("transaction failed: %v", status.Err)
	}

	switch w.cfg.Commitment {
	case "finalized":
		return status.ConfirmationStatus == "finalized", nil
	case "confirmed":
		return status.ConfirmationStatus == "confirmed" || status.ConfirmationStatus == "finalized", nil
	default:
		return status.ConfirmationStatus != "", nil
	}
}

// ExecuteOptions selects between a dry run and a real submission
type ExecuteOptions struct {
	SimulateOnly   bool
	ConfirmTimeout time.Duration // 0 = do not wait for confirmation
}

// ExecuteResult reports what Execute did
type ExecuteResult struct {
	Simulation *SimulationResult
	Signature  solana.Signature
}

// Execute builds, signs and simulates the instructions, then sends them
// unless SimulateOnly is set. A failed simulation is never sent.
func (w *Wallet) Execute(ctx context.Context, instructions []solana.Instruction, opts ExecuteOptions) (*ExecuteResult, error) {
	tx, err := w.BuildTransaction(ctx, instructions)
	if err != nil {
		return nil, err
	}
	if err := w.SignTx(tx); err != nil {
		return nil, err
	}

	sim, err := w.Simulate(ctx, tx)
	out := &ExecuteResult{Simulation: sim}
	if err != nil {
		return out, err
	}
	log := w.cfg.Logger.WithFields(logrus.Fields{"units": sim.UnitsConsumed, "ixs": len(tx.Message.Instructions)})
	if opts.SimulateOnly {
		log.Info("simulation ok")
		return out, nil
	}

	sig, err := w.Send(ctx, tx)
	if err != nil {
		return out, err
	}
	out.Signature = sig
	log.WithField("signature", sig.String()).Info("transaction sent")

	if opts.ConfirmTimeout > 0 {
		if err := w.Confirm(ctx, sig, opts.ConfirmTimeout); err != nil {
			return out, err
		}
	}
	return out, nil
}

func encodeTx(tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
