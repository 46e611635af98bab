package market

import (
	"context"

	"go.uber.org/zap"

	"github.com/antonkovalev/tradesim/internal/domain"
)

// FailoverProvider tries a primary provider and falls back to a secondary one
// when the fetch fails. The entry path wraps a live provider with the
// synthetic fallback so provider downtime degrades to documented defaults
// instead of failing opens. The sweep path deliberately uses the raw provider:
// there a failed fetch skips the position until the next cycle.
type FailoverProvider struct {
	primary  Provider
	fallback Provider
	logger   *zap.Logger
}

// NewFailoverProvider combines a primary and a fallback provider.
func NewFailoverProvider(primary, fallback Provider, logger *zap.Logger) *FailoverProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FailoverProvider{primary: primary, fallback: fallback, logger: logger}
}

// Snapshot fetches from the primary, logging and delegating to the fallback
// on failure.
func (p *FailoverProvider) Snapshot(ctx context.Context, assetAddress string) (domain.MarketSnapshot, error) {
	snap, err := p.primary.Snapshot(ctx, assetAddress)
	if err == nil {
		return snap, nil
	}

	p.logger.Warn("primary snapshot provider failed, using fallback",
		zap.String("asset", assetAddress),
		zap.Error(err))

	return p.fallback.Snapshot(ctx, assetAddress)
}
