package market

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	hyperliquid "github.com/sonirico/go-hyperliquid"

	"github.com/antonkovalev/tradesim/internal/domain"
	"github.com/antonkovalev/tradesim/pkg/retrier"
)

// HyperliquidProvider builds snapshots from the Hyperliquid public Info API.
// Mid prices are keyed by base coin; the remaining readings come from
// configured defaults.
type HyperliquidProvider struct {
	info     *hyperliquid.Info
	defaults AssetDefaults
	retry    *retrier.Retrier
}

// NewHyperliquidProvider creates a Hyperliquid-backed snapshot provider.
func NewHyperliquidProvider(info *hyperliquid.Info, defaults AssetDefaults) *HyperliquidProvider {
	return &HyperliquidProvider{
		info:     info,
		defaults: defaults,
		retry:    retrier.New(retrier.WithMaxRetries(2)),
	}
}

// Snapshot fetches a snapshot for the given asset.
func (p *HyperliquidProvider) Snapshot(ctx context.Context, assetAddress string) (domain.MarketSnapshot, error) {
	if p.info == nil {
		return domain.MarketSnapshot{}, errors.Wrap(domain.ErrSnapshotUnavailable, "hyperliquid info client is nil")
	}

	base := strings.ToUpper(assetAddress)

	price, err := retrier.DoWithData(p.retry, ctx, func(ctx context.Context) (decimal.Decimal, error) {
		mids, err := p.info.AllMids(ctx)
		if err != nil {
			return decimal.Decimal{}, err
		}
		mid, ok := mids[base]
		if !ok || mid == "" {
			return decimal.Decimal{}, errors.Errorf("hyperliquid API returned empty mid price for %s", base)
		}
		return decimal.NewFromString(mid)
	})
	if err != nil {
		return domain.MarketSnapshot{}, errors.Wrapf(domain.ErrSnapshotUnavailable, "hyperliquid mid for %s: %v", base, err)
	}

	return domain.MarketSnapshot{
		Symbol:            base,
		EntryPrice:        price,
		EntryVolume:       p.defaults.Volume,
		EntryLiquidity:    p.defaults.Liquidity,
		EntryHolders:      p.defaults.Holders,
		EntryTopHolderPct: p.defaults.TopHolderPct,
		CurrentPrice:      price,
		CurrentVolume:     p.defaults.Volume,
		CurrentLiquidity:  p.defaults.Liquidity,
	}, nil
}
