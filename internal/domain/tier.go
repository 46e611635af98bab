package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RiskTier is a named risk profile selecting exit thresholds for a position.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// ParseRiskTier converts a user-supplied string into a RiskTier.
func ParseRiskTier(s string) (RiskTier, error) {
	switch RiskTier(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskTier(s), nil
	}
	return "", fmt.Errorf("unknown risk tier: %q", s)
}

// String returns the string representation of the tier.
func (r RiskTier) String() string {
	return string(r)
}

// TierPolicy holds the exit thresholds for one risk tier. Thresholds are
// percent changes relative to the position's entry readings. ProfitTargetPct
// and VolumeSpikePct are positive, StopLossPct and LiquidityDropPct negative.
type TierPolicy struct {
	// ProfitTargetPct closes the position when price gain reaches this percent.
	ProfitTargetPct decimal.Decimal
	// StopLossPct closes the position when price loss reaches this percent.
	StopLossPct decimal.Decimal
	// VolumeSpikePct closes the position when short-window volume grows by this percent.
	VolumeSpikePct decimal.Decimal
	// LiquidityDropPct closes the position when liquidity shrinks by this percent.
	LiquidityDropPct decimal.Decimal
	// MinHold is how long a position must be held before exit rules apply.
	MinHold time.Duration
}

// Validate checks threshold signs and the hold duration.
func (p TierPolicy) Validate() error {
	if p.ProfitTargetPct.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("profit target must be positive, got %s", p.ProfitTargetPct.String())
	}
	if p.StopLossPct.GreaterThanOrEqual(decimal.Zero) {
		return fmt.Errorf("stop loss must be negative, got %s", p.StopLossPct.String())
	}
	if p.VolumeSpikePct.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("volume spike must be positive, got %s", p.VolumeSpikePct.String())
	}
	if p.LiquidityDropPct.GreaterThanOrEqual(decimal.Zero) {
		return fmt.Errorf("liquidity drop must be negative, got %s", p.LiquidityDropPct.String())
	}
	if p.MinHold < 0 {
		return fmt.Errorf("min hold must not be negative, got %s", p.MinHold)
	}
	return nil
}

// TierPolicies maps every tier to its policy. The mapping is process-wide,
// read-only configuration fixed at startup.
type TierPolicies map[RiskTier]TierPolicy

// Validate ensures every tier has a valid policy.
func (t TierPolicies) Validate() error {
	for _, tier := range []RiskTier{RiskLow, RiskMedium, RiskHigh} {
		policy, ok := t[tier]
		if !ok {
			return fmt.Errorf("missing policy for tier %s", tier)
		}
		if err := policy.Validate(); err != nil {
			return fmt.Errorf("tier %s: %w", tier, err)
		}
	}
	return nil
}

// DefaultTierPolicies returns the deployment defaults. Hold durations follow
// the historical per-tier sell intervals (1m/3m/7m).
func DefaultTierPolicies() TierPolicies {
	return TierPolicies{
		RiskLow: {
			ProfitTargetPct:  decimal.NewFromInt(5),
			StopLossPct:      decimal.NewFromInt(-2),
			VolumeSpikePct:   decimal.NewFromInt(150),
			LiquidityDropPct: decimal.NewFromInt(-30),
			MinHold:          1 * time.Minute,
		},
		RiskMedium: {
			ProfitTargetPct:  decimal.NewFromInt(12),
			StopLossPct:      decimal.NewFromInt(-6),
			VolumeSpikePct:   decimal.NewFromInt(250),
			LiquidityDropPct: decimal.NewFromInt(-45),
			MinHold:          3 * time.Minute,
		},
		RiskHigh: {
			ProfitTargetPct:  decimal.NewFromInt(25),
			StopLossPct:      decimal.NewFromInt(-15),
			VolumeSpikePct:   decimal.NewFromInt(400),
			LiquidityDropPct: decimal.NewFromInt(-60),
			MinHold:          7 * time.Minute,
		},
	}
}
