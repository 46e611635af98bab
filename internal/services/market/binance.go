package market

import (
	"context"
	"strings"

	"github.com/adshao/go-binance/v2"
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/antonkovalev/tradesim/internal/domain"
	"github.com/antonkovalev/tradesim/pkg/retrier"
)

const (
	binanceKlineInterval = "1m"
	volumeSmaPeriod      = 10
)

// BinanceProvider builds snapshots from Binance public market data. The asset
// handle is interpreted as the base symbol and paired with the configured
// quote currency. Price comes from the ticker, the entry-window volume is an
// SMA over recent one-minute kline volumes, and the current-window volume is
// the latest kline volume. Holder and liquidity readings come from configured
// defaults since the exchange does not expose them.
type BinanceProvider struct {
	client   *binance.Client
	quote    string
	defaults AssetDefaults
	retry    *retrier.Retrier
}

// NewBinanceProvider creates a Binance-backed snapshot provider.
func NewBinanceProvider(client *binance.Client, quote string, defaults AssetDefaults) *BinanceProvider {
	if quote == "" {
		quote = "USDT"
	}
	return &BinanceProvider{
		client:   client,
		quote:    quote,
		defaults: defaults,
		retry:    retrier.New(retrier.WithMaxRetries(2)),
	}
}

// Snapshot fetches a snapshot for the given asset.
func (p *BinanceProvider) Snapshot(ctx context.Context, assetAddress string) (domain.MarketSnapshot, error) {
	base := strings.ToUpper(assetAddress)
	symbol := base + p.quote

	price, err := retrier.DoWithData(p.retry, ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return p.fetchPrice(ctx, symbol)
	})
	if err != nil {
		return domain.MarketSnapshot{}, errors.Wrapf(domain.ErrSnapshotUnavailable, "binance price for %s: %v", symbol, err)
	}

	volumes, err := retrier.DoWithData(p.retry, ctx, func(ctx context.Context) (volumeReadings, error) {
		return p.fetchVolumes(ctx, symbol)
	})
	if err != nil {
		return domain.MarketSnapshot{}, errors.Wrapf(domain.ErrSnapshotUnavailable, "binance klines for %s: %v", symbol, err)
	}

	return domain.MarketSnapshot{
		Symbol:            base,
		EntryPrice:        price,
		EntryVolume:       volumes.entry,
		EntryLiquidity:    p.defaults.Liquidity,
		EntryHolders:      p.defaults.Holders,
		EntryTopHolderPct: p.defaults.TopHolderPct,
		CurrentPrice:      price,
		CurrentVolume:     volumes.current,
		CurrentLiquidity:  p.defaults.Liquidity,
	}, nil
}

type volumeReadings struct {
	entry   decimal.Decimal
	current decimal.Decimal
}

func (p *BinanceProvider) fetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	prices, err := p.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(prices) == 0 {
		return decimal.Decimal{}, errors.Errorf("binance API returned empty prices for %s", symbol)
	}
	return decimal.NewFromString(prices[0].Price)
}

// fetchVolumes returns the SMA-smoothed entry-window volume and the latest
// kline volume.
func (p *BinanceProvider) fetchVolumes(ctx context.Context, symbol string) (volumeReadings, error) {
	klines, err := p.client.NewKlinesService().
		Symbol(symbol).
		Interval(binanceKlineInterval).
		Limit(volumeSmaPeriod * 2).
		Do(ctx)
	if err != nil {
		return volumeReadings{}, err
	}
	if len(klines) < volumeSmaPeriod {
		return volumeReadings{}, errors.Errorf("not enough klines for %s: got %d, need %d", symbol, len(klines), volumeSmaPeriod)
	}

	volumes := make([]float64, 0, len(klines))
	for i, k := range klines {
		volume, err := decimal.NewFromString(k.Volume)
		if err != nil {
			return volumeReadings{}, errors.Wrapf(err, "failed to parse volume at index %d", i)
		}
		volumes = append(volumes, volume.InexactFloat64())
	}

	sma := trend.NewSmaWithPeriod[float64](volumeSmaPeriod)
	smoothed := helper.ChanToSlice(sma.Compute(helper.SliceToChan(volumes)))
	if len(smoothed) == 0 {
		return volumeReadings{}, errors.Errorf("volume SMA produced no values for %s", symbol)
	}

	return volumeReadings{
		entry:   decimal.NewFromFloat(smoothed[len(smoothed)-1]),
		current: decimal.NewFromFloat(volumes[len(volumes)-1]),
	}, nil
}
