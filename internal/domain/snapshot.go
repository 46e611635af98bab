package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MarketSnapshot is a point-in-time reading of an asset's observable market
// metrics. It is ephemeral and never persisted. The entry window fields are
// copied into a Position at open time; the current window fields are compared
// against a position's entry readings during exit evaluation. The two windows
// are distinct on purpose and must not be conflated.
type MarketSnapshot struct {
	// Symbol ticker symbol of the asset.
	Symbol string
	// EntryPrice price reading for the entry window.
	EntryPrice decimal.Decimal
	// EntryVolume short-window traded volume for the entry window.
	EntryVolume decimal.Decimal
	// EntryLiquidity pool liquidity for the entry window.
	EntryLiquidity decimal.Decimal
	// EntryHolders number of distinct holders.
	EntryHolders int
	// EntryTopHolderPct share of supply held by the largest holder, percent.
	EntryTopHolderPct decimal.Decimal
	// CurrentPrice latest observed price.
	CurrentPrice decimal.Decimal
	// CurrentVolume latest short-window traded volume.
	CurrentVolume decimal.Decimal
	// CurrentLiquidity latest pool liquidity.
	CurrentLiquidity decimal.Decimal
}

// Validate rejects snapshots a provider should never produce. Entry price
// must be positive because stakes are converted into units at that price.
func (s MarketSnapshot) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("snapshot symbol is empty")
	}
	if s.EntryPrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("snapshot entry price must be positive, got %s", s.EntryPrice.String())
	}
	if s.EntryVolume.IsNegative() || s.CurrentVolume.IsNegative() {
		return fmt.Errorf("snapshot volume must not be negative")
	}
	if s.EntryLiquidity.IsNegative() || s.CurrentLiquidity.IsNegative() {
		return fmt.Errorf("snapshot liquidity must not be negative")
	}
	if s.EntryHolders < 0 {
		return fmt.Errorf("snapshot holder count must not be negative, got %d", s.EntryHolders)
	}
	if s.EntryTopHolderPct.IsNegative() || s.EntryTopHolderPct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("snapshot top holder percent out of range: %s", s.EntryTopHolderPct.String())
	}
	if s.CurrentPrice.IsNegative() {
		return fmt.Errorf("snapshot current price must not be negative, got %s", s.CurrentPrice.String())
	}
	return nil
}
