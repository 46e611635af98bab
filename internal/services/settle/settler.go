// Package settle closes positions and credits their payout to the owning
// account.
package settle

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/antonkovalev/tradesim/internal/domain"
)

// Settler commits position closures. Callers hold the account's
// serialization scope for the whole call and persist the account afterwards,
// so the position mutation and the balance credit land together.
type Settler struct {
	logger *zap.Logger
}

// NewSettler creates a settlement engine.
func NewSettler(logger *zap.Logger) *Settler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Settler{logger: logger}
}

// Settle closes the position at the snapshot's current price and credits the
// payout (exit price times the units bought at entry) to the account. A
// position that is no longer open yields ErrAlreadyClosed and no mutation;
// under the single-writer sweep that path should be unreachable.
func (s *Settler) Settle(account *domain.Account, pos *domain.Position, snap domain.MarketSnapshot, reason domain.CloseReason) error {
	if account == nil || pos == nil {
		return errors.New("account and position are required")
	}

	exitPrice := snap.CurrentPrice
	if err := pos.Close(exitPrice, reason, time.Now()); err != nil {
		return err
	}

	payout := pos.PayoutAt(exitPrice)
	if err := account.Credit(payout); err != nil {
		return errors.Wrapf(err, "credit payout for position %s", pos.ID)
	}

	s.logger.Info("position settled",
		zap.String("account", account.ID),
		zap.String("position", pos.ID),
		zap.String("asset", pos.Asset),
		zap.String("reason", string(reason)),
		zap.String("entry_price", pos.EntryPrice.String()),
		zap.String("exit_price", exitPrice.String()),
		zap.String("payout", payout.String()),
		zap.String("funds", account.Funds.String()))

	return nil
}
