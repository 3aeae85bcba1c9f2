package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vitos/hyperliquid_donchian/internal/config"
	"github.com/vitos/hyperliquid_donchian/internal/infrastructure/exchange"
	"github.com/vitos/hyperliquid_donchian/internal/infrastructure/logger"
	"github.com/vitos/hyperliquid_donchian/internal/infrastructure/storage"
	"github.com/vitos/hyperliquid_donchian/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// 1. Load Config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Credentials (fatal before the loop ever starts)
	creds, err := config.LoadCredentials()
	if err != nil {
		log.Fatal("Missing credentials", zap.Error(err))
	}

	mainnet := cfg.Exchange.Env == config.EnvMainnet

	// 4. Init Exchange (Hyperliquid)
	signer, err := exchange.NewSigner(creds.PrivateKey, mainnet)
	if err != nil {
		log.Fatal("Failed to init signer", zap.Error(err))
	}
	adapter := exchange.NewHyperliquidAdapter(signer, mainnet)
	defer adapter.Close()

	// 5. Init Storage (trade journal)
	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	log.Info("Initializing bot",
		zap.String("environment", cfg.Exchange.Env),
		zap.String("address", creds.Address),
		zap.String("asset", cfg.Strategy.Asset))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Initial balance check
	state, err := adapter.GetAccountState(ctx, creds.Address)
	if err != nil {
		log.Fatal("Failed to fetch account state", zap.Error(err))
	}
	log.Info("Initial balance",
		zap.Float64("balance", state.Balance),
		zap.Float64("risk_per_trade", state.Balance*cfg.Strategy.RiskPerTradePct/100))

	// 7. Optional streamed mids; the loop falls back to REST polling when
	// the stream is unavailable.
	adapter.OnPriceUpdate(func(coin string, price float64) {
		log.Debug("Mid price update", zap.String("coin", coin), zap.Float64("price", price))
	})
	if err := adapter.Subscribe([]string{cfg.Strategy.Asset}); err != nil {
		log.Warn("Websocket feed unavailable, using REST only", zap.Error(err))
	}

	// 8. Run trading loop until interrupted; decisions and order outcomes
	// also go to a file so they survive terminal scrollback.
	tradeLog, err := logger.NewFileLogger("trading.log", cfg.Logging.Level)
	if err != nil {
		log.Warn("Failed to init trade log file, using default", zap.Error(err))
		tradeLog = log
	}
	defer tradeLog.Sync()

	svc := usecase.NewTradingService(adapter, store, cfg.Strategy, creds.Address, tradeLog)

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("Trading loop failed", zap.Error(err))
	}
	log.Info("Shutdown complete")
}
