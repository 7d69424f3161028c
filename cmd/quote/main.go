package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/pumpswap-quoter/internal/amm"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/config"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/constants"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/pumpswap"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/rpc"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/wallet"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

func main() {
	loadEnv()

	mode := flag.String("mode", "buy", "buy | buy-exact-out | sell")
	mintStr := flag.String("mint", "", "base token mint")
	amt := flag.String("amt", "", "amount: integer = smallest units, decimal = human units (e.g. 0.1)")
	slippage := flag.String("slippage", "100", "tolerance: integer = bps, decimal = rate (0.01 = 1%)")
	offline := flag.Bool("offline-default-config", false, "use the built-in global config instead of fetching it")
	baseReserve := flag.Uint64("base-reserve", 0, "quote against this base reserve instead of the chain (needs -quote-reserve)")
	quoteReserve := flag.Uint64("quote-reserve", 0, "quote reserve for offline quoting")
	chain := flag.Bool("chain", false, "buy, then sell the bought amount, tracking reserves locally")
	simulate := flag.Bool("simulate", false, "build and simulate the swap transaction with WALLET_PRIVATE_KEY")
	send := flag.Bool("send", false, "build, simulate and send the swap transaction with WALLET_PRIVATE_KEY")
	flag.Parse()

	if *amt == "" {
		fmt.Println("missing -amt")
		os.Exit(2)
	}
	amount, err := amm.ParseAmount(*amt)
	if err != nil {
		fmt.Println("invalid -amt:", err)
		os.Exit(2)
	}
	bps, err := amm.ParseSlippage(*slippage)
	if err != nil {
		fmt.Println("invalid -slippage:", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	cfg := config.Load()
	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		RateLimit:    cfg.RPCRateLimit,
		RateBurst:    cfg.RPCRateBurst,
		Encoding:     cfg.RPCEncoding,
		Logger:       logger,
	})
	client := pumpswap.NewClient(pumpswap.ClientConfig{RPC: rpcClient, Logger: logger})

	quoter := amm.NewQuoter(nil)
	if *offline || cfg.UseDefaultGlobalConfig {
		quoter.SetGlobalConfig(amm.DefaultGlobalConfig())
	} else if err := quoter.EnsureLoaded(ctx, client); err != nil {
		fmt.Println("failed to load global config:", err)
		os.Exit(1)
	}

	var (
		mint     solana.PublicKey
		reserves *amm.Reserves
	)
	if *baseReserve > 0 && *quoteReserve > 0 {
		reserves = &amm.Reserves{BaseReserve: *baseReserve, QuoteReserve: *quoteReserve}
	} else {
		mint, err = solana.PublicKeyFromBase58(*mintStr)
		if err != nil {
			fmt.Println("invalid -mint:", err)
			os.Exit(2)
		}
		reserves, err = client.FetchReserves(ctx, mint, solana.PublicKey{})
		if err != nil {
			fmt.Println("failed to fetch reserves:", err)
			os.Exit(1)
		}
	}
	label := "pool"
	if !mint.IsZero() {
		label += " " + constants.Symbol(mint) + "/SOL"
	}
	printReserves(label, reserves)

	if *chain {
		if err := runChain(quoter, amount, reserves, bps); err != nil {
			fmt.Println("chain failed:", err)
			os.Exit(1)
		}
		return
	}

	var ixs func(w *wallet.Wallet, b *pumpswap.InstructionBuilder) ([]solana.Instruction, error)
	switch *mode {
	case "buy", "buy-exact-out":
		quote := quoter.QuoteToBase
		if *mode == "buy-exact-out" {
			quote = quoter.BaseToQuoteIn
		}
		q, err := quote(amount, reserves, bps)
		exitOnErr("quote failed", err)
		printBuy(q)
		ixs = func(w *wallet.Wallet, b *pumpswap.InstructionBuilder) ([]solana.Instruction, error) {
			return b.Buy(mint, q.BaseAmountOut, q.QuoteInMax, w.PublicKey(), reserves)
		}
	case "sell":
		q, err := quoter.BaseToQuote(amount, reserves, bps)
		exitOnErr("quote failed", err)
		printSell(q)
		ixs = func(w *wallet.Wallet, b *pumpswap.InstructionBuilder) ([]solana.Instruction, error) {
			return b.Sell(mint, q.BaseAmountIn, q.QuoteOutMin, w.PublicKey(), reserves)
		}
	default:
		fmt.Println("invalid -mode (use buy|buy-exact-out|sell)")
		os.Exit(2)
	}

	if !*simulate && !*send {
		return
	}
	if mint.IsZero() {
		fmt.Println("-simulate and -send need -mint")
		os.Exit(2)
	}
	w, err := wallet.NewWallet(wallet.WalletConfig{
		RPC:              rpcClient,
		PrivateKey:       cfg.WalletPrivateKey,
		Commitment:       cfg.WalletCommitment,
		ComputeUnitPrice: cfg.ComputeUnitPrice,
		ComputeUnitLimit: cfg.ComputeUnitLimit,
		Logger:           logger,
	})
	exitOnErr("wallet", err)

	global, err := quoter.GlobalConfig()
	exitOnErr("global config", err)
	instructions, err := ixs(w, pumpswap.NewInstructionBuilder(global))
	exitOnErr("build instructions", err)

	res, err := w.Execute(ctx, instructions, wallet.ExecuteOptions{
		SimulateOnly:   !*send,
		ConfirmTimeout: time.Minute,
	})
	if res != nil && res.Simulation != nil {
		fmt.Printf("simulation: ok=%v units=%d\n", res.Simulation.Success, res.Simulation.UnitsConsumed)
		for _, l := range res.Simulation.Logs {
			fmt.Println("  " + l)
		}
	}
	exitOnErr("execute failed", err)
	if *send {
		fmt.Println("signature:", res.Signature)
	}
}

// runChain buys with amount SOL then sells everything bought, syncing the
// local reserves after each leg.
func runChain(quoter *amm.Quoter, amount any, r *amm.Reserves, bps int64) error {
	buy, err := quoter.QuoteToBase(amount, r, bps, amm.WithSync())
	if err != nil {
		return fmt.Errorf("buy: %w", err)
	}
	printBuy(buy)
	printReserves("after buy", r)

	sell, err := quoter.BaseToQuote(buy.BaseAmountOut, r, bps, amm.WithSync())
	if err != nil {
		return fmt.Errorf("sell: %w", err)
	}
	printSell(sell)
	printReserves("after sell", r)

	fmt.Printf("round trip: paid=%s SOL received=%s SOL\n",
		amm.ToUIAmount(buy.UserQuoteAmountIn, amm.QuoteDecimals),
		amm.ToUIAmount(sell.UserQuoteAmountOut, amm.QuoteDecimals))
	return nil
}

func printReserves(label string, r *amm.Reserves) {
	fmt.Printf("%s: base=%s quote=%s SOL price=%s SOL creator=%v\n",
		label,
		amm.ToUIAmount(r.BaseReserve, amm.BaseDecimals),
		amm.ToUIAmount(r.QuoteReserve, amm.QuoteDecimals),
		amm.UIPrice(*r),
		!r.Creator.IsZero())
}

func printBuy(q amm.BuyQuote) {
	fmt.Printf("buy: base_out=%d quote_in=%d quote_in_with_lp_fee=%d user_quote_in=%d quote_in_max=%d\n",
		q.BaseAmountOut, q.QuoteAmountIn, q.QuoteAmountInWithLpFee, q.UserQuoteAmountIn, q.QuoteInMax)
}

func printSell(q amm.SellQuote) {
	fmt.Printf("sell: base_in=%d quote_out=%d quote_out_without_lp_fee=%d user_quote_out=%d quote_out_min=%d\n",
		q.BaseAmountIn, q.QuoteAmountOut, q.QuoteAmountOutWithoutLpFee, q.UserQuoteAmountOut, q.QuoteOutMin)
}

func exitOnErr(msg string, err error) {
	if err != nil {
		fmt.Println(msg+":", err)
		os.Exit(1)
	}
}
