package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWalletsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validWallets = `
wallets:
  - name: trend
    symbols: [ETHUSDT]
    initial_balance: 10000
    strategy:
      type: golden_cross
      ma_type: WMA
      fast_period: 50
      slow_period: 200
    risk:
      notional_percent: 10
      take_profit_pct: 3
      stop_loss_pct: 1
  - name: range
    symbols: [LINKUSDT]
    initial_balance: 2500
    strategy:
      type: threshold
      buy_limit: 10
      sell_limit: 14
    risk:
      notional_percent: 5
`

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("WALLETS_FILE", writeWalletsFile(t, validWallets))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.PaperTrade)
	assert.True(t, cfg.IsTestnet)
	assert.Equal(t, "USDT", cfg.SettlementCurrency)
	assert.InDelta(t, 0.04, cfg.TakerFeeRate, 1e-9)
	assert.Equal(t, "1h", cfg.Interval)
	require.Len(t, cfg.Wallets, 2)
	assert.Equal(t, "trend", cfg.Wallets[0].Name)
	assert.Equal(t, "threshold", cfg.Wallets[1].Strategy.Type)
	require.Nil(t, cfg.Wallets[1].TrailingStop)
}

func TestLoadConfig_LiveNeedsKeys(t *testing.T) {
	t.Setenv("WALLETS_FILE", writeWalletsFile(t, validWallets))
	t.Setenv("PAPER_TRADE", "false")
	t.Setenv("BINANCE_API_KEY", "")
	t.Setenv("BINANCE_API_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BINANCE_API_KEY")
}

func TestLoadConfig_MissingWalletsFile(t *testing.T) {
	t.Setenv("WALLETS_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidWallets(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "no wallets",
			yaml: "wallets: []",

			wantErr: "defines no wallets",
		},
		{
			name: "duplicate names",
			yaml: `
wallets:
  - name: a
    symbols: [ETHUSDT]
    strategy: {type: threshold, buy_limit: 1, sell_limit: 2}
    risk: {notional_percent: 5}
  - name: a
    symbols: [BTCUSDT]
    strategy: {type: threshold, buy_limit: 1, sell_limit: 2}
    risk: {notional_percent: 5}
`,
			wantErr: "duplicate wallet name",
		},
		{
			name: "bad strategy type",
			yaml: `
wallets:
  - name: a
    symbols: [ETHUSDT]
    strategy: {type: martingale}
    risk: {notional_percent: 5}
`,
			wantErr: "unrecognized strategy type",
		},
		{
			name: "fast not below slow",
			yaml: `
wallets:
  - name: a
    symbols: [ETHUSDT]
    strategy: {type: golden_cross, fast_period: 200, slow_period: 50}
    risk: {notional_percent: 5}
`,
			wantErr: "fast_period must be less than slow_period",
		},
		{
			name: "missing initial balance",
			yaml: `
wallets:
  - name: a
    symbols: [ETHUSDT]
    strategy: {type: threshold, buy_limit: 1, sell_limit: 2}
    risk: {notional_percent: 5}
`,
			wantErr: "initial_balance must be positive",
		},
		{
			name: "notional percent out of range",
			yaml: `
wallets:
  - name: a
    symbols: [ETHUSDT]
    strategy: {type: threshold, buy_limit: 1, sell_limit: 2}
    risk: {notional_percent: 150}
`,
			wantErr: "notional_percent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WALLETS_FILE", writeWalletsFile(t, tt.yaml))
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
