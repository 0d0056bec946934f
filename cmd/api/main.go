package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-swap-quoter/internal/cache"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/config"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/jupiter"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/referral"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/rpc"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/server"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/swapper"
	"github.com/aman-zulfiqar/solana-swap-quoter/internal/whirlpool"
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

// main is the entry point for the API server
// It initializes all dependencies and starts the HTTP server with graceful shutdown
func main() {
	// Initialize structured logger with custom formatting
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	// Load and validate configuration from environment variables
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Solana RPC client used by the whirlpool pipeline
	chain := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})

	// Optional redis-backed feed of recently served quotes
	var feed *cache.QuoteFeed
	if cfg.RedisAddr != "" {
		rclient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   0, // Use default database for main application
		})
		if err := rclient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable, recent quote feed disabled")
		} else {
			f, err := cache.NewQuoteFeed(rclient)
			if err != nil {
				logger.WithError(err).Fatal("failed to create quote feed")
			}
			feed = f
		}
	}

	// Referrer account collecting integrator fees
	referrer := cfg.ReferralAddress
	if referrer == "" {
		referrer = referral.AddressFor(swapper.ChainSolana)
	}

	// Wire the whirlpool quote pipeline
	resolver := whirlpool.NewTransferFeeResolver(chain)
	locator := whirlpool.NewPoolLocator(chain, cfg.PoolCacheTTL, logger)
	engine := whirlpool.NewQuoteEngine(chain, resolver, logger)
	assembler := whirlpool.NewTransactionAssembler(chain, cfg.ComputeUnitLimit, cfg.PriorityFeeCacheTTL, logger)
	orca := whirlpool.NewProvider(chain, locator, engine, resolver, assembler, referrer, logger)

	// Jupiter aggregator as an alternative routing provider
	jup := jupiter.NewProvider(jupiter.NewClient(cfg.JupiterBaseURL, cfg.JupiterAPIKey), logger)

	registry := swapper.NewRegistry(orca, jup)

	// Create handlers with all dependencies injected
	h := &server.Handlers{
		Registry:    registry,        // Configured quote providers
		Feed:        feed,            // Optional recent-quote feed (can be nil)
		ReferralBps: cfg.ReferralBps, // Default fee when requests omit referral_bps
		DevMode:     cfg.DevMode,     // Enable detailed error responses in development
		Logger:      logger,          // Structured logger
	}

	// Create HTTP server with configuration and handlers
	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr, // Server bind address (e.g., ":8080")
			DevMode: cfg.DevMode, // Development mode flag
			APIKey:  cfg.APIKey,  // Optional API key for authentication
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh // Wait for shutdown signal
		logger.Info("shutting down")
		cancel()                               // Cancel context to stop ongoing operations
		_ = srv.Shutdown(context.Background()) // Gracefully shutdown HTTP server
	}()

	// Start the HTTP server
	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() != "http: Server closed" {
			logger.WithError(err).Fatal("api server failed")
		}
	}

	// Wait for server to be fully shut down
	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
