// Package market provides implementations of the market snapshot contract:
// exchange-backed live providers, a synthetic fallback provider, and a
// failover wrapper combining the two.
package market

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/antonkovalev/tradesim/internal/domain"
)

// Provider fetches a point-in-time market snapshot for an asset.
type Provider interface {
	Snapshot(ctx context.Context, assetAddress string) (domain.MarketSnapshot, error)
}

// AssetDefaults supplies the on-chain style readings (liquidity, holders,
// concentration) that exchange APIs do not expose. They are configured per
// deployment and copied into every snapshot an exchange-backed provider
// produces.
type AssetDefaults struct {
	Volume       decimal.Decimal
	Liquidity    decimal.Decimal
	Holders      int
	TopHolderPct decimal.Decimal
}

// DefaultAssetDefaults returns the readings used when the config leaves them unset.
func DefaultAssetDefaults() AssetDefaults {
	return AssetDefaults{
		Volume:       decimal.NewFromInt(50000),
		Liquidity:    decimal.NewFromInt(250000),
		Holders:      500,
		TopHolderPct: decimal.NewFromInt(15),
	}
}
