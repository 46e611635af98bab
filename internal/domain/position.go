package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// PositionStatus is the lifecycle state of a position.
type PositionStatus string

const (
	StatusOpen   PositionStatus = "open"
	StatusClosed PositionStatus = "closed"
)

// CloseReason records which exit trigger closed a position.
type CloseReason string

const (
	CloseReasonNone          CloseReason = ""
	CloseReasonProfitTarget  CloseReason = "profit_target"
	CloseReasonStopLoss      CloseReason = "stop_loss"
	CloseReasonVolumeSpike   CloseReason = "volume_spike"
	CloseReasonLiquidityDrop CloseReason = "liquidity_drop"
)

// Position is a simulated asset holding opened against an account's virtual
// funds. It belongs to exactly one account and transitions open -> closed
// exactly once; entry fields are fixed at open time and never mutated.
type Position struct {
	// ID unique position identifier.
	ID string `json:"id"`
	// Asset ticker symbol of the held asset.
	Asset string `json:"asset"`
	// AssetAddress on-chain address or exchange handle of the asset.
	AssetAddress string `json:"asset_address"`
	// Risk tier selecting the exit thresholds.
	Risk RiskTier `json:"risk_level"`
	// Stake virtual funds committed at open time.
	Stake decimal.Decimal `json:"bid_amount"`
	// EntryPrice price at open time, immutable.
	EntryPrice decimal.Decimal `json:"buy_price"`
	// ExitPrice price at close time, nil while open.
	ExitPrice *decimal.Decimal `json:"sell_price,omitempty"`
	// Status open or closed.
	Status PositionStatus `json:"status"`
	// PriceChangePct percent price change since entry, zero while open.
	PriceChangePct decimal.Decimal `json:"price_change_pct"`
	// CloseReason which exit trigger fired, empty while open.
	CloseReason CloseReason `json:"close_reason,omitempty"`
	// EntryVolume short-window volume reading at open time.
	EntryVolume decimal.Decimal `json:"entry_volume"`
	// EntryLiquidity liquidity reading at open time.
	EntryLiquidity decimal.Decimal `json:"entry_liquidity"`
	// EntryHolders holder count at open time.
	EntryHolders int `json:"entry_holders"`
	// EntryTopHolderPct top holder concentration at open time, percent.
	EntryTopHolderPct decimal.Decimal `json:"entry_top_holder_pct"`
	// OpenedAt open timestamp.
	OpenedAt time.Time `json:"timestamp"`
	// ClosedAt close timestamp, nil while open.
	ClosedAt *time.Time `json:"closed_at,omitempty"`
}

// NewPosition constructs an open position from the entry window of a
// validated snapshot.
func NewPosition(assetAddress string, risk RiskTier, stake decimal.Decimal, snap MarketSnapshot, openedAt time.Time) (*Position, error) {
	if stake.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("position stake must be greater than zero")
	}
	if snap.EntryPrice.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("entry price must be greater than zero")
	}

	return &Position{
		ID:                uuid.NewString(),
		Asset:             snap.Symbol,
		AssetAddress:      assetAddress,
		Risk:              risk,
		Stake:             stake,
		EntryPrice:        snap.EntryPrice,
		Status:            StatusOpen,
		PriceChangePct:    decimal.Zero,
		EntryVolume:       snap.EntryVolume,
		EntryLiquidity:    snap.EntryLiquidity,
		EntryHolders:      snap.EntryHolders,
		EntryTopHolderPct: snap.EntryTopHolderPct,
		OpenedAt:          openedAt,
	}, nil
}

// IsOpen reports whether the position is still open.
func (p *Position) IsOpen() bool {
	return p != nil && p.Status == StatusOpen
}

// Units returns how many units of the asset the stake purchased at entry.
func (p *Position) Units() decimal.Decimal {
	if p == nil || p.EntryPrice.IsZero() {
		return decimal.Zero
	}
	return p.Stake.Div(p.EntryPrice)
}

// PayoutAt values the position's units at the given exit price. The payout
// has no floor: an exit price of zero is a full loss.
func (p *Position) PayoutAt(exitPrice decimal.Decimal) decimal.Decimal {
	return exitPrice.Mul(p.Units())
}

// Close transitions the position to closed, recording the exit price, the
// percent price change since entry and the trigger that fired. Write-once:
// a second call returns ErrAlreadyClosed and changes nothing.
func (p *Position) Close(exitPrice decimal.Decimal, reason CloseReason, closedAt time.Time) error {
	if p.Status != StatusOpen {
		return ErrAlreadyClosed
	}

	change := decimal.Zero
	if !p.EntryPrice.IsZero() {
		change = exitPrice.Sub(p.EntryPrice).Div(p.EntryPrice).Mul(decimal.NewFromInt(100))
	}

	p.ExitPrice = &exitPrice
	p.PriceChangePct = change
	p.CloseReason = reason
	p.ClosedAt = &closedAt
	p.Status = StatusClosed

	return nil
}
