package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/antonkovalev/tradesim/internal/domain"
)

func TestParseEmptyYieldsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, "fallback", cfg.Provider)
	require.Equal(t, 10*time.Second, cfg.SweepInterval)
	require.Equal(t, 5*time.Second, cfg.FetchTimeout)
	require.Equal(t, 8, cfg.SweepWorkers)
	require.Equal(t, "wal", cfg.WALDir)
	require.True(t, cfg.FallbackBasePrice.Equal(decimal.NewFromInt(100)))
	require.Len(t, cfg.Tiers, 3)
}

func TestParseOverrides(t *testing.T) {
	raw := []byte(`
listen_addr: ":9090"
provider: binance
quote_asset: USDC
fallback_base_price: "42.5"
sweep_interval: 30s
fetch_timeout: 2s
sweep_workers: 4
wal_dir: /var/lib/tradesim/wal
tiers:
  low:
    profit_target_pct: "3"
    min_hold: 2m
`)
	cfg, err := Parse(raw)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.ListenAddr)
	require.Equal(t, "binance", cfg.Provider)
	require.Equal(t, "USDC", cfg.QuoteAsset)
	require.True(t, cfg.FallbackBasePrice.Equal(decimal.RequireFromString("42.5")))
	require.Equal(t, 30*time.Second, cfg.SweepInterval)
	require.Equal(t, 2*time.Second, cfg.FetchTimeout)
	require.Equal(t, 4, cfg.SweepWorkers)
	require.Equal(t, "/var/lib/tradesim/wal", cfg.WALDir)

	low := cfg.Tiers[domain.RiskLow]
	require.True(t, low.ProfitTargetPct.Equal(decimal.NewFromInt(3)))
	require.Equal(t, 2*time.Minute, low.MinHold)
	// untouched fields keep their defaults
	require.True(t, low.StopLossPct.Equal(decimal.NewFromInt(-2)))

	medium := cfg.Tiers[domain.RiskMedium]
	require.True(t, medium.ProfitTargetPct.Equal(decimal.NewFromInt(12)))
}

func TestParseRejectsBadInput(t *testing.T) {
	for name, raw := range map[string]string{
		"unknown provider":   `provider: kraken`,
		"bad tier name":      "tiers:\n  extreme:\n    profit_target_pct: \"1\"",
		"bad decimal":        `fallback_base_price: "abc"`,
		"positive stop loss": "tiers:\n  low:\n    stop_loss_pct: \"5\"",
		"not yaml":           `{{`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			require.Error(t, err)
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().validate())
}
