package market

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFallbackProviderSnapshot(t *testing.T) {
	provider := NewFallbackProvider(decimal.NewFromInt(100), DefaultAssetDefaults())

	snap, err := provider.Snapshot(context.Background(), "btc")
	require.NoError(t, err)
	require.NoError(t, snap.Validate())
	require.Equal(t, "BTC", snap.Symbol)

	// readings stay within the +-10% jitter band
	low := decimal.NewFromInt(90)
	high := decimal.NewFromInt(110)
	require.True(t, snap.EntryPrice.GreaterThanOrEqual(low) && snap.EntryPrice.LessThanOrEqual(high),
		"entry price %s out of jitter band", snap.EntryPrice)
	require.True(t, snap.CurrentPrice.GreaterThanOrEqual(low) && snap.CurrentPrice.LessThanOrEqual(high),
		"current price %s out of jitter band", snap.CurrentPrice)
}

func TestFallbackProviderDefaultsBasePrice(t *testing.T) {
	provider := NewFallbackProvider(decimal.Zero, DefaultAssetDefaults())

	snap, err := provider.Snapshot(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "BTC", snap.Symbol)
	require.True(t, snap.EntryPrice.GreaterThan(decimal.Zero))
}

func TestFallbackProviderNeverFails(t *testing.T) {
	provider := NewFallbackProvider(decimal.NewFromInt(50), DefaultAssetDefaults())

	for i := 0; i < 100; i++ {
		snap, err := provider.Snapshot(context.Background(), "sol")
		require.NoError(t, err)
		require.NoError(t, snap.Validate())
	}
}
