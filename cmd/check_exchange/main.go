package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/vitos/hyperliquid_donchian/internal/config"
	"github.com/vitos/hyperliquid_donchian/internal/infrastructure/exchange"
)

func main() {
	_ = godotenv.Load()

	// 1. Load Config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	mainnet := cfg.Exchange.Env == config.EnvMainnet
	fmt.Printf("Testing Hyperliquid interaction...\n")
	fmt.Printf("Environment: %s\n", cfg.Exchange.Env)
	fmt.Printf("Asset: %s\n", cfg.Strategy.Asset)

	// Read-only adapter: no signer needed for the info endpoints.
	adapter := exchange.NewHyperliquidAdapter(nil, mainnet)
	ctx := context.Background()

	// 2. Check mid price
	price, err := adapter.GetMidPrice(ctx, cfg.Strategy.Asset)
	if err != nil {
		fmt.Printf("❌ Failed to get mid price: %v\n", err)
	} else {
		fmt.Printf("✅ Mid price (%s): %f\n", cfg.Strategy.Asset, price)
	}

	// 3. Check asset metadata
	meta, err := adapter.GetAssetMeta(ctx, cfg.Strategy.Asset)
	if err != nil {
		fmt.Printf("❌ Failed to get asset metadata: %v\n", err)
	} else {
		fmt.Printf("✅ Asset metadata: name=%s, szDecimals=%d\n", meta.Name, meta.SzDecimals)
	}

	// 4. Check account state when an address is configured
	address := os.Getenv("HYPERLIQUID_PUBLIC_ADDRESS")
	if address == "" {
		fmt.Println("HYPERLIQUID_PUBLIC_ADDRESS not set, skipping account check")
		return
	}

	state, err := adapter.GetAccountState(ctx, address)
	if err != nil {
		fmt.Printf("❌ Failed to get account state: %v\n", err)
		return
	}
	fmt.Printf("✅ Balance: %.2f\n", state.Balance)
	for _, p := range state.Positions {
		fmt.Printf("✅ Position: coin=%s size=%f entry=%f\n", p.Coin, p.Size, p.EntryPrice)
	}
}
