package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvMainnet = "mainnet"
	EnvTestnet = "testnet"
)

type Config struct {
	Exchange ExchangeConfig `yaml:"exchange"`
	Strategy StrategyConfig `yaml:"strategy"`
	Logging  LoggingConfig  `yaml:"logging"`
	Storage  StorageConfig  `yaml:"storage"`
}

type ExchangeConfig struct {
	Env string `yaml:"env"`
}

// StrategyConfig holds every strategy parameter. It is built once at
// startup and passed by value to the components that need it; nothing reads
// these as globals.
type StrategyConfig struct {
	Asset               string  `yaml:"asset"`
	MaxLeverage         int     `yaml:"max_leverage"`
	RiskPerTradePct     float64 `yaml:"risk_per_trade_pct"`
	RiskRewardRatio     float64 `yaml:"risk_reward_ratio"`
	StopLossPct         float64 `yaml:"stop_loss_pct"`
	WindowSize          int     `yaml:"window_size"`
	PollIntervalSeconds int     `yaml:"poll_interval_seconds"`
	MinOrderSize        float64 `yaml:"min_order_size"`

	// FallbackMinSize reproduces the legacy behavior of sizing falling back
	// silently to MinOrderSize on any error. Off by default: a sizing error
	// should skip the trade, not place a minimum-size one.
	FallbackMinSize bool `yaml:"fallback_min_size"`
}

// TakeProfitPct is derived, never configured directly.
func (s StrategyConfig) TakeProfitPct() float64 {
	return s.StopLossPct * s.RiskRewardRatio
}

func (s StrategyConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

// Credentials come from the environment, never from the yaml file.
type Credentials struct {
	PrivateKey string
	Address    string
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := defaults()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Exchange: ExchangeConfig{Env: EnvMainnet},
		Strategy: StrategyConfig{
			Asset:               "BTC",
			MaxLeverage:         50,
			RiskPerTradePct:     2,
			RiskRewardRatio:     2,
			StopLossPct:         1.0,
			WindowSize:          12,
			PollIntervalSeconds: 30,
			MinOrderSize:        0.001,
		},
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{Path: "bot.db"},
	}
}

func (c *Config) Validate() error {
	if c.Exchange.Env != EnvMainnet && c.Exchange.Env != EnvTestnet {
		return fmt.Errorf("exchange.env must be %q or %q, got %q", EnvMainnet, EnvTestnet, c.Exchange.Env)
	}
	s := c.Strategy
	if s.Asset == "" {
		return fmt.Errorf("strategy.asset is required")
	}
	if s.WindowSize <= 0 {
		return fmt.Errorf("strategy.window_size must be positive, got %d", s.WindowSize)
	}
	if s.PollIntervalSeconds <= 0 {
		return fmt.Errorf("strategy.poll_interval_seconds must be positive, got %d", s.PollIntervalSeconds)
	}
	if s.RiskPerTradePct <= 0 {
		return fmt.Errorf("strategy.risk_per_trade_pct must be positive, got %v", s.RiskPerTradePct)
	}
	if s.StopLossPct <= 0 {
		return fmt.Errorf("strategy.stop_loss_pct must be positive, got %v", s.StopLossPct)
	}
	if s.RiskRewardRatio <= 0 {
		return fmt.Errorf("strategy.risk_reward_ratio must be positive, got %v", s.RiskRewardRatio)
	}
	if s.MinOrderSize <= 0 {
		return fmt.Errorf("strategy.min_order_size must be positive, got %v", s.MinOrderSize)
	}
	return nil
}

// LoadCredentials reads the signing key and account address from the
// environment. Missing credentials are fatal at startup, before the loop
// ever runs.
func LoadCredentials() (*Credentials, error) {
	key := os.Getenv("HYPERLIQUID_PRIVATE_KEY")
	addr := os.Getenv("HYPERLIQUID_PUBLIC_ADDRESS")
	if key == "" || addr == "" {
		return nil, fmt.Errorf("HYPERLIQUID_PRIVATE_KEY and HYPERLIQUID_PUBLIC_ADDRESS must be set")
	}
	return &Credentials{PrivateKey: key, Address: addr}, nil
}
