package market

import (
	"context"
	"strings"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/antonkovalev/tradesim/internal/domain"
	"github.com/antonkovalev/tradesim/pkg/retrier"
)

// BybitProvider builds snapshots from Bybit spot tickers. Only price is live;
// volume, liquidity and holder readings come from configured defaults.
type BybitProvider struct {
	client   *bybit.Client
	quote    string
	defaults AssetDefaults
	retry    *retrier.Retrier
}

// NewBybitProvider creates a Bybit-backed snapshot provider.
func NewBybitProvider(client *bybit.Client, quote string, defaults AssetDefaults) *BybitProvider {
	if quote == "" {
		quote = "USDT"
	}
	return &BybitProvider{
		client:   client,
		quote:    quote,
		defaults: defaults,
		retry:    retrier.New(retrier.WithMaxRetries(2)),
	}
}

// Snapshot fetches a snapshot for the given asset.
func (p *BybitProvider) Snapshot(ctx context.Context, assetAddress string) (domain.MarketSnapshot, error) {
	base := strings.ToUpper(assetAddress)

	price, err := retrier.DoWithData(p.retry, ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return p.fetchPrice(base + p.quote)
	})
	if err != nil {
		return domain.MarketSnapshot{}, errors.Wrapf(domain.ErrSnapshotUnavailable, "bybit price for %s%s: %v", base, p.quote, err)
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

func (p *BybitProvider) fetchPrice(symbolStr string) (decimal.Decimal, error) {
	symbol := bybit.SymbolV5(symbolStr)

	result, err := p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(result.Result.Spot.List) == 0 {
		return decimal.Decimal{}, errors.Errorf("bybit API returned empty prices for %s", symbolStr)
	}

	return decimal.NewFromString(result.Result.Spot.List[0].LastPrice)
}
