package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "exchange:\n  env: testnet\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvTestnet, cfg.Exchange.Env)
	assert.Equal(t, "BTC", cfg.Strategy.Asset)
	assert.Equal(t, 12, cfg.Strategy.WindowSize)
	assert.Equal(t, 30, cfg.Strategy.PollIntervalSeconds)
	assert.Equal(t, 0.001, cfg.Strategy.MinOrderSize)
	assert.False(t, cfg.Strategy.FallbackMinSize)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
exchange:
  env: mainnet
strategy:
  asset: ETH
  stop_loss_pct: 0.5
  risk_reward_ratio: 3
  poll_interval_seconds: 10
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ETH", cfg.Strategy.Asset)
	assert.Equal(t, 1.5, cfg.Strategy.TakeProfitPct())
	assert.Equal(t, 10, cfg.Strategy.PollIntervalSeconds)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad env", "exchange:\n  env: staging\n"},
		{"zero stop loss", "strategy:\n  stop_loss_pct: 0\n"},
		{"negative risk", "strategy:\n  risk_per_trade_pct: -1\n"},
		{"zero window", "strategy:\n  window_size: 0\n"},
		{"empty asset", "strategy:\n  asset: \"\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("HYPERLIQUID_PRIVATE_KEY", "abc")
	t.Setenv("HYPERLIQUID_PUBLIC_ADDRESS", "0xdef")

	creds, err := LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "abc", creds.PrivateKey)
	assert.Equal(t, "0xdef", creds.Address)

	t.Setenv("HYPERLIQUID_PRIVATE_KEY", "")
	_, err = LoadCredentials()
	assert.Error(t, err)
}
