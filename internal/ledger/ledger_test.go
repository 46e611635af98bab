package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/antonkovalev/tradesim/internal/domain"
)

// memStore is an in-memory Store with the same copy semantics as the WAL store.
type memStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[string]*domain.Account)}
}

func (s *memStore) Load(id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

func (s *memStore) Upsert(account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (s *memStore) IDs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	return ids, nil
}

func cloneAccount(account *domain.Account) *domain.Account {
	clone := *account
	clone.Positions = make([]*domain.Position, len(account.Positions))
	for i, pos := range account.Positions {
		posCopy := *pos
		clone.Positions[i] = &posCopy
	}
	return &clone
}

func testPosition(t *testing.T, stake int64) *domain.Position {
	t.Helper()
	snap := domain.MarketSnapshot{
		Symbol:            "BTC",
		EntryPrice:        decimal.NewFromInt(100),
		EntryVolume:       decimal.NewFromInt(5000),
		EntryLiquidity:    decimal.NewFromInt(20000),
		EntryHolders:      300,
		EntryTopHolderPct: decimal.NewFromInt(10),
	}
	pos, err := domain.NewPosition("btc", domain.RiskLow, decimal.NewFromInt(stake), snap, time.Now())
	require.NoError(t, err)
	return pos
}

func TestGetOrCreateProvisionsLazily(t *testing.T) {
	l := New(newMemStore(), zap.NewNop())
	ctx := context.Background()

	account, err := l.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "unknown", account.Email)
	require.True(t, account.Funds.IsZero())

	// second call finds the stored account
	again, err := l.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, account.ID, again.ID)

	ids, err := l.AccountIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"user-1"}, ids)
}

func TestDeposit(t *testing.T) {
	l := New(newMemStore(), zap.NewNop())
	ctx := context.Background()

	account, err := l.Deposit(ctx, "user-1", decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.True(t, account.Funds.Equal(decimal.NewFromInt(1000)))

	_, err = l.Deposit(ctx, "user-1", decimal.NewFromInt(-5))
	require.Error(t, err)

	account, err = l.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, account.Funds.Equal(decimal.NewFromInt(1000)))
}

func TestOpenPositionDebitsAtomically(t *testing.T) {
	l := New(newMemStore(), zap.NewNop())
	ctx := context.Background()

	_, err := l.Deposit(ctx, "user-1", decimal.NewFromInt(1000))
	require.NoError(t, err)

	account, err := l.OpenPosition(ctx, "user-1", testPosition(t, 100))
	require.NoError(t, err)
	require.True(t, account.Funds.Equal(decimal.NewFromInt(900)))
	require.Len(t, account.Positions, 1)
	require.True(t, account.Positions[0].EntryPrice.Equal(decimal.NewFromInt(100)))
}

func TestOpenPositionInsufficientFunds(t *testing.T) {
	l := New(newMemStore(), zap.NewNop())
	ctx := context.Background()

	_, err := l.Deposit(ctx, "user-1", decimal.NewFromInt(50))
	require.NoError(t, err)

	_, err = l.OpenPosition(ctx, "user-1", testPosition(t, 100))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// neither balance nor position sequence changed
	account, err := l.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, account.Funds.Equal(decimal.NewFromInt(50)))
	require.Empty(t, account.Positions)
}

func TestWithAccountPersistsOnlyOnChange(t *testing.T) {
	store := newMemStore()
	l := New(store, zap.NewNop())
	ctx := context.Background()

	_, err := l.Deposit(ctx, "user-1", decimal.NewFromInt(1000))
	require.NoError(t, err)
	_, err = l.OpenPosition(ctx, "user-1", testPosition(t, 100))
	require.NoError(t, err)

	// no change reported: mutation must not be persisted
	err = l.WithAccount(ctx, "user-1", func(account *domain.Account) (bool, error) {
		account.Funds = decimal.Zero
		return false, nil
	})
	require.NoError(t, err)

	account, err := l.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, account.Funds.Equal(decimal.NewFromInt(900)))

	// change reported: settlement-style mutation persists
	err = l.WithAccount(ctx, "user-1", func(account *domain.Account) (bool, error) {
		pos := account.Positions[0]
		if err := pos.Close(decimal.NewFromInt(106), domain.CloseReasonProfitTarget, time.Now()); err != nil {
			return false, err
		}
		return true, account.Credit(pos.PayoutAt(decimal.NewFromInt(106)))
	})
	require.NoError(t, err)

	account, err = l.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, account.Funds.Equal(decimal.NewFromInt(1006)))
	require.Equal(t, domain.StatusClosed, account.Positions[0].Status)
}

func TestConcurrentDepositsDoNotLoseUpdates(t *testing.T) {
	l := New(newMemStore(), zap.NewNop())
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := l.Deposit(ctx, "user-1", decimal.NewFromInt(10))
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	account, err := l.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, account.Funds.Equal(decimal.NewFromInt(200)),
		"expected 200, got %s", account.Funds)
}
