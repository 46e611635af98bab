package market

import (
	"context"
	"strings"

	"github.com/bytedance/gopkg/lang/fastrand"
	"github.com/shopspring/decimal"

	"github.com/antonkovalev/tradesim/internal/domain"
)

const fallbackJitterPct = 10

// FallbackProvider synthesizes snapshots around a configured base price with
// bounded jitter. It never fails, which makes it both the documented default
// for deployments without exchange access and the safety net behind the
// failover wrapper on the entry path.
type FallbackProvider struct {
	basePrice decimal.Decimal
	defaults  AssetDefaults
}

// NewFallbackProvider creates a synthetic provider. A non-positive base price
// falls back to 100.
func NewFallbackProvider(basePrice decimal.Decimal, defaults AssetDefaults) *FallbackProvider {
	if basePrice.LessThanOrEqual(decimal.Zero) {
		basePrice = decimal.NewFromInt(100)
	}
	return &FallbackProvider{basePrice: basePrice, defaults: defaults}
}

// Snapshot returns a synthetic snapshot. Entry and current windows are
// jittered independently within +-10% of the base price so exit evaluation
// still sees realistic relative movement.
func (p *FallbackProvider) Snapshot(_ context.Context, assetAddress string) (domain.MarketSnapshot, error) {
	return domain.MarketSnapshot{
		Symbol:            fallbackSymbol(assetAddress),
		EntryPrice:        jitter(p.basePrice),
		EntryVolume:       jitter(p.defaults.Volume),
		EntryLiquidity:    jitter(p.defaults.Liquidity),
		EntryHolders:      p.defaults.Holders,
		EntryTopHolderPct: p.defaults.TopHolderPct,
		CurrentPrice:      jitter(p.basePrice),
		CurrentVolume:     jitter(p.defaults.Volume),
		CurrentLiquidity:  jitter(p.defaults.Liquidity),
	}, nil
}

// jitter shifts a base value by a random amount within +-fallbackJitterPct.
func jitter(base decimal.Decimal) decimal.Decimal {
	if base.LessThanOrEqual(decimal.Zero) {
		return base
	}
	offset := (fastrand.Float64()*2 - 1) * fallbackJitterPct / 100
	factor := decimal.NewFromFloat(1 + offset)
	return base.Mul(factor)
}

func fallbackSymbol(assetAddress string) string {
	if assetAddress == "" {
		return "BTC"
	}
	return strings.ToUpper(assetAddress)
}
