// Package sweep runs the recurring pass that re-evaluates every open
// position against fresh market data and settles the ones whose exit
// conditions fired.
package sweep

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/antonkovalev/tradesim/internal/domain"
	"github.com/antonkovalev/tradesim/internal/services/exit"
)

const (
	defaultInterval     = 10 * time.Second
	defaultFetchTimeout = 5 * time.Second
	defaultWorkers      = 8
)

type snapshotProvider interface {
	Snapshot(ctx context.Context, assetAddress string) (domain.MarketSnapshot, error)
}

type accountLedger interface {
	AccountIDs(ctx context.Context) ([]string, error)
	GetOrCreate(ctx context.Context, id string) (*domain.Account, error)
	WithAccount(ctx context.Context, id string, fn func(account *domain.Account) (bool, error)) error
}

type settlementEngine interface {
	Settle(account *domain.Account, pos *domain.Position, snap domain.MarketSnapshot, reason domain.CloseReason) error
}

// Config tunes the sweeper.
type Config struct {
	// Interval between sweep passes.
	Interval time.Duration
	// FetchTimeout bounds a single market data fetch so one stalled asset
	// cannot block the pass.
	FetchTimeout time.Duration
	// Workers caps how many accounts are processed concurrently.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	return c
}

// Sweeper periodically enumerates all accounts and settles open positions
// whose exit conditions fired. A new pass never starts while the previous
// one is still running.
type Sweeper struct {
	ledger   accountLedger
	provider snapshotProvider
	settler  settlementEngine
	policies domain.TierPolicies
	cfg      Config
	logger   *zap.Logger
	metrics  *Metrics
	running  atomic.Bool
}

// New creates a sweeper. The provider is used raw on purpose: a failed fetch
// skips the position until the next pass instead of falling back.
func New(ledger accountLedger, provider snapshotProvider, settler settlementEngine,
	policies domain.TierPolicies, cfg Config, logger *zap.Logger, metrics *Metrics) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		ledger:   ledger,
		provider: provider,
		settler:  settler,
		policies: policies,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		metrics:  metrics,
	}
}

// Run drives the sweep loop until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("starting sweep loop",
		zap.Duration("interval", s.cfg.Interval),
		zap.Int("workers", s.cfg.Workers))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("context done, stopping sweep loop")
			return ctx.Err()
		case <-ticker.C:
			if !s.running.CompareAndSwap(false, true) {
				s.logger.Debug("previous sweep still running, skipping tick")
				if s.metrics != nil {
					s.metrics.TicksSkipped.Inc()
				}
				continue
			}
			go func() {
				defer s.running.Store(false)
				s.Sweep(ctx)
			}()
		}
	}
}

// Sweep executes one full pass. Accounts are processed on a bounded worker
// pool; a failure for one position never aborts the rest of the pass.
func (s *Sweeper) Sweep(ctx context.Context) {
	started := time.Now()

	ids, err := s.ledger.AccountIDs(ctx)
	if err != nil {
		s.logger.Error("failed to enumerate accounts", zap.Error(err))
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.Workers)
	for _, id := range ids {
		accountID := id
		group.Go(func() error {
			s.sweepAccount(groupCtx, accountID)
			return nil
		})
	}
	_ = group.Wait()

	if s.metrics != nil {
		s.metrics.SweepsTotal.Inc()
		s.metrics.SweepDuration.Observe(time.Since(started).Seconds())
	}
	s.logger.Debug("sweep pass finished",
		zap.Int("accounts", len(ids)),
		zap.Duration("took", time.Since(started)))
}

// closeDecision is a settlement staged while no account lock was held.
type closeDecision struct {
	positionID string
	snap       domain.MarketSnapshot
	reason     domain.CloseReason
}

func (s *Sweeper) sweepAccount(ctx context.Context, accountID string) {
	account, err := s.ledger.GetOrCreate(ctx, accountID)
	if err != nil {
		s.logger.Error("failed to load account for sweep",
			zap.String("account", accountID), zap.Error(err))
		return
	}

	// fetch and evaluate outside any account lock
	var decisions []closeDecision
	for _, pos := range account.OpenPositions() {
		policy, ok := s.policies[pos.Risk]
		if !ok {
			s.logger.Error("no policy for tier, skipping position",
				zap.String("position", pos.ID), zap.String("tier", pos.Risk.String()))
			continue
		}
		if time.Since(pos.OpenedAt) < policy.MinHold {
			continue
		}

		if s.metrics != nil {
			s.metrics.PositionsEvaluated.Inc()
		}

		snap, err := s.fetchSnapshot(ctx, pos.AssetAddress)
		if err != nil {
			if s.metrics != nil {
				s.metrics.PositionErrors.Inc()
			}
			s.logger.Warn("snapshot fetch failed, skipping position until next sweep",
				zap.String("account", accountID),
				zap.String("position", pos.ID),
				zap.String("asset", pos.AssetAddress),
				zap.Error(err))
			continue
		}

		if mustClose, reason := exit.ShouldClose(pos, snap, policy); mustClose {
			decisions = append(decisions, closeDecision{positionID: pos.ID, snap: snap, reason: reason})
		}
	}

	if len(decisions) == 0 {
		return
	}

	err = s.ledger.WithAccount(ctx, accountID, func(account *domain.Account) (bool, error) {
		closed := 0
		for _, d := range decisions {
			pos := findPosition(account, d.positionID)
			// re-validate under the lock: the position may have been settled
			// by a concurrent path since the snapshot was taken
			if pos == nil || !pos.IsOpen() {
				continue
			}
			if err := s.settler.Settle(account, pos, d.snap, d.reason); err != nil {
				if errors.Is(err, domain.ErrAlreadyClosed) {
					s.logger.Error("settlement hit an already closed position",
						zap.String("account", accountID), zap.String("position", pos.ID))
					continue
				}
				return closed > 0, err
			}
			closed++
			if s.metrics != nil {
				s.metrics.PositionsClosed.WithLabelValues(string(d.reason)).Inc()
			}
		}
		return closed > 0, nil
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.PositionErrors.Inc()
		}
		s.logger.Error("failed to settle account positions",
			zap.String("account", accountID), zap.Error(err))
	}
}

func (s *Sweeper) fetchSnapshot(ctx context.Context, assetAddress string) (domain.MarketSnapshot, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()
	return s.provider.Snapshot(fetchCtx, assetAddress)
}

func findPosition(account *domain.Account, id string) *domain.Position {
	for _, pos := range account.Positions {
		if pos.ID == id {
			return pos
		}
	}
	return nil
}
