package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/pumpswap-quoter/internal/amm"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/cache"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/config"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/constants"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/pumpswap"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/rpc"
	"github.com/aman-zulfiqar/pumpswap-quoter/internal/server"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main starts the quote API with graceful shutdown
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

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
	pools := pumpswap.NewClient(pumpswap.ClientConfig{
		RPC:    rpcClient,
		Pools:  cache.NewPoolCache[solana.PublicKey, *pumpswap.Pool](cfg.PoolCacheSize),
		Logger: logger,
	})

	quoter := amm.NewQuoter(nil)
	if cfg.UseDefaultGlobalConfig {
		quoter.SetGlobalConfig(amm.DefaultGlobalConfig())
		logger.Info("using built-in global config")
	} else {
		loadCtx, loadCancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
		err := quoter.EnsureLoaded(loadCtx, pools)
		loadCancel()
		if err != nil {
			logger.WithError(err).Fatal("failed to load global config")
		}
	}
	if global, err := quoter.GlobalConfig(); err == nil {
		logger.WithFields(logrus.Fields{
			"lp_fee_bps":           global.LpFeeBps,
			"protocol_fee_bps":     global.ProtocolFeeBps,
			"coin_creator_fee_bps": global.CoinCreatorFeeBps,
		}).Info("global config ready")
	}

	h := &server.Handlers{
		Quoter:  quoter,
		Pools:   pools,
		Timeout: cfg.HTTPTimeout,
		DevMode: cfg.DevMode,
		Logger:  logger,
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:      cfg.APIAddr,
			DevMode:   cfg.DevMode,
			APIKey:    cfg.APIKey,
			RateLimit: cfg.APIRateLimit,
			RateBurst: cfg.APIRateBurst,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		_ = srv.Shutdown(context.Background())
	}()

	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("api server failed")
	}

	if err := srv.WaitClosed(context.Background()); err != nil {
		logger.WithError(err).Warn("shutdown did not complete")
	}
	stats := pools.CacheStats()
	logger.WithFields(logrus.Fields{"hits": stats.Hits, "misses": stats.Misses}).Info("pool cache")
}
