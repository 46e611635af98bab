// Package exit implements the risk-tiered exit decision for open positions.
package exit

import (
	"github.com/shopspring/decimal"

	"github.com/antonkovalev/tradesim/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ShouldClose reports whether an open position must be closed given a fresh
// snapshot and its tier policy, and which trigger fired. Pure: nothing is
// mutated. The decision is a logical OR over four triggers, checked in order:
// profit target, stop loss, volume spike, liquidity drop.
//
// A zero entry reading makes the corresponding relative change undefined;
// that trigger is treated as not fired instead of propagating NaN/Inf into
// the decision.
func ShouldClose(pos *domain.Position, snap domain.MarketSnapshot, policy domain.TierPolicy) (bool, domain.CloseReason) {
	if !pos.IsOpen() {
		return false, domain.CloseReasonNone
	}

	if priceChange, ok := percentChange(pos.EntryPrice, snap.CurrentPrice); ok {
		if priceChange.GreaterThanOrEqual(policy.ProfitTargetPct) {
			return true, domain.CloseReasonProfitTarget
		}
		if priceChange.LessThanOrEqual(policy.StopLossPct) {
			return true, domain.CloseReasonStopLoss
		}
	}

	if volumeChange, ok := percentChange(pos.EntryVolume, snap.CurrentVolume); ok {
		if volumeChange.GreaterThanOrEqual(policy.VolumeSpikePct) {
			return true, domain.CloseReasonVolumeSpike
		}
	}

	if liquidityChange, ok := percentChange(pos.EntryLiquidity, snap.CurrentLiquidity); ok {
		if liquidityChange.LessThanOrEqual(policy.LiquidityDropPct) {
			return true, domain.CloseReasonLiquidityDrop
		}
	}

	return false, domain.CloseReasonNone
}

// percentChange returns (current-entry)/entry*100. ok is false when the entry
// reading is zero.
func percentChange(entry, current decimal.Decimal) (decimal.Decimal, bool) {
	if entry.IsZero() {
		return decimal.Decimal{}, false
	}
	return current.Sub(entry).Div(entry).Mul(hundred), true
}
