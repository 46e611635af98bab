// Package ledger owns the set of accounts and their positions. Every
// read-modify-write of an account (deposit, open, settlement) runs under that
// account's mutex, so concurrent operations on the same account cannot
// interleave and lose funds, while different accounts proceed in parallel.
// Market data is never fetched under a lock.
package ledger

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/antonkovalev/tradesim/internal/domain"
)

// Store is the durable account store consumed by the ledger. Both operations
// are atomic at single-account granularity.
type Store interface {
	Load(id string) (*domain.Account, error)
	Upsert(account *domain.Account) error
	IDs() ([]string, error)
}

// Ledger serializes account mutations and persists them through the store.
type Ledger struct {
	store  Store
	logger *zap.Logger
	locks  sync.Map // account id -> *sync.Mutex
}

// New creates a ledger over the given store.
func New(store Store, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: store, logger: logger}
}

func (l *Ledger) lockFor(id string) *sync.Mutex {
	mu, _ := l.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// loadOrCreate returns the stored account or lazily provisions an empty one.
// Callers hold the account lock.
func (l *Ledger) loadOrCreate(id string) (*domain.Account, error) {
	account, err := l.store.Load(id)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, errors.Wrapf(err, "load account %s", id)
	}

	account = domain.NewAccount(id)
	if err := l.store.Upsert(account); err != nil {
		return nil, errors.Wrapf(err, "provision account %s", id)
	}
	l.logger.Info("provisioned account", zap.String("account", id))

	return account, nil
}

// GetOrCreate returns the account, provisioning it on first reference.
func (l *Ledger) GetOrCreate(_ context.Context, id string) (*domain.Account, error) {
	if id == "" {
		return nil, errors.New("account id is required")
	}

	mu := l.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	return l.loadOrCreate(id)
}

// Deposit credits virtual funds, provisioning the account if needed.
func (l *Ledger) Deposit(_ context.Context, id string, amount decimal.Decimal) (*domain.Account, error) {
	if id == "" {
		return nil, errors.New("account id is required")
	}

	mu := l.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	account, err := l.loadOrCreate(id)
	if err != nil {
		return nil, err
	}
	if err := account.Deposit(amount); err != nil {
		return nil, err
	}
	if err := l.store.Upsert(account); err != nil {
		return nil, errors.Wrapf(err, "persist deposit for %s", id)
	}

	l.logger.Info("deposit",
		zap.String("account", id),
		zap.String("amount", amount.String()),
		zap.String("funds", account.Funds.String()))

	return account, nil
}

// OpenPosition debits the stake and appends the position in one atomic step.
// Balance check, debit and append all happen under the account lock; nothing
// is persisted on failure, so a debit without a position (or vice versa) is
// never observable.
func (l *Ledger) OpenPosition(_ context.Context, id string, pos *domain.Position) (*domain.Account, error) {
	if id == "" {
		return nil, errors.New("account id is required")
	}
	if pos == nil {
		return nil, errors.New("position is required")
	}

	mu := l.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	account, err := l.loadOrCreate(id)
	if err != nil {
		return nil, err
	}
	if err := account.Debit(pos.Stake); err != nil {
		return nil, err
	}
	account.Positions = append(account.Positions, pos)

	if err := l.store.Upsert(account); err != nil {
		return nil, errors.Wrapf(err, "persist open for %s", id)
	}

	l.logger.Info("position opened",
		zap.String("account", id),
		zap.String("position", pos.ID),
		zap.String("asset", pos.Asset),
		zap.String("risk", pos.Risk.String()),
		zap.String("stake", pos.Stake.String()),
		zap.String("entry_price", pos.EntryPrice.String()))

	return account, nil
}

// WithAccount runs fn on the account under its lock. The account is persisted
// only when fn reports a change; fn must re-validate any precondition it
// checked before acquiring the lock (e.g. a position still being open).
func (l *Ledger) WithAccount(_ context.Context, id string, fn func(account *domain.Account) (changed bool, err error)) error {
	if id == "" {
		return errors.New("account id is required")
	}

	mu := l.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	account, err := l.store.Load(id)
	if err != nil {
		return errors.Wrapf(err, "load account %s", id)
	}

	changed, err := fn(account)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if err := l.store.Upsert(account); err != nil {
		return errors.Wrapf(err, "persist account %s", id)
	}
	return nil
}

// AccountIDs enumerates all known accounts for the sweep.
func (l *Ledger) AccountIDs(_ context.Context) ([]string, error) {
	return l.store.IDs()
}
