// Package entry decides whether a proposed position may be opened.
package entry

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/antonkovalev/tradesim/internal/domain"
)

type snapshotProvider interface {
	Snapshot(ctx context.Context, assetAddress string) (domain.MarketSnapshot, error)
}

type accountLedger interface {
	GetOrCreate(ctx context.Context, id string) (*domain.Account, error)
	OpenPosition(ctx context.Context, id string, pos *domain.Position) (*domain.Account, error)
}

// Evaluator opens positions: it checks funds, fetches a fresh snapshot,
// applies the entry filters and hands the atomic debit-and-append to the
// ledger. On the entry path the provider is expected to be failover-wrapped,
// so provider downtime degrades to fallback data instead of failing opens.
type Evaluator struct {
	ledger   accountLedger
	provider snapshotProvider
	logger   *zap.Logger
}

// NewEvaluator creates an entry evaluator.
func NewEvaluator(ledger accountLedger, provider snapshotProvider, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{ledger: ledger, provider: provider, logger: logger}
}

// TryOpen opens a position for the account, or rejects it with
// ErrInsufficientFunds or ErrEntryConditionsNotMet without mutating anything.
// The snapshot is fetched before the account lock is taken; the ledger
// re-validates the balance while holding it.
func (e *Evaluator) TryOpen(ctx context.Context, accountID, assetAddress string, tier domain.RiskTier, stake decimal.Decimal, filters domain.EntryFilters) (*domain.Position, error) {
	if stake.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Errorf("stake must be positive, got %s", stake.String())
	}

	account, err := e.ledger.GetOrCreate(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if stake.GreaterThan(account.Funds) {
		return nil, domain.ErrInsufficientFunds
	}

	snap, err := e.provider.Snapshot(ctx, assetAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot for %s", assetAddress)
	}
	if err := snap.Validate(); err != nil {
		return nil, errors.Wrap(domain.ErrSnapshotUnavailable, err.Error())
	}

	if err := filters.Check(snap); err != nil {
		e.logger.Debug("entry rejected by filters",
			zap.String("account", accountID),
			zap.String("asset", assetAddress),
			zap.Error(err))
		return nil, err
	}

	pos, err := domain.NewPosition(assetAddress, tier, stake, snap, time.Now())
	if err != nil {
		return nil, err
	}

	if _, err := e.ledger.OpenPosition(ctx, accountID, pos); err != nil {
		return nil, err
	}

	return pos, nil
}
