package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// EntryFilters are the user-supplied conditions an asset must satisfy before
// a position may be opened against it. Zero-valued fields are unconstrained.
type EntryFilters struct {
	// MinHolders minimum number of distinct holders.
	MinHolders int `json:"min_holders"`
	// MinLiquidity minimum pool liquidity.
	MinLiquidity decimal.Decimal `json:"min_liquidity"`
	// MaxTopHolderPct maximum share of supply held by the largest holder.
	MaxTopHolderPct decimal.Decimal `json:"max_top_holder_pct"`
}

// Check evaluates the filters against the entry window of a snapshot. All
// constraints must hold; the first violation is reported wrapped in
// ErrEntryConditionsNotMet.
func (f EntryFilters) Check(snap MarketSnapshot) error {
	if f.MinHolders > 0 && snap.EntryHolders < f.MinHolders {
		return errors.Wrapf(ErrEntryConditionsNotMet, "holders %d below minimum %d", snap.EntryHolders, f.MinHolders)
	}
	if f.MinLiquidity.GreaterThan(decimal.Zero) && snap.EntryLiquidity.LessThan(f.MinLiquidity) {
		return errors.Wrapf(ErrEntryConditionsNotMet, "liquidity %s below minimum %s", snap.EntryLiquidity.String(), f.MinLiquidity.String())
	}
	if f.MaxTopHolderPct.GreaterThan(decimal.Zero) && snap.EntryTopHolderPct.GreaterThan(f.MaxTopHolderPct) {
		return errors.Wrapf(ErrEntryConditionsNotMet, "top holder %s%% above maximum %s%%", snap.EntryTopHolderPct.String(), f.MaxTopHolderPct.String())
	}
	return nil
}
