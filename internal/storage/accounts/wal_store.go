// Package accounts provides the durable account store backing the position
// ledger. Accounts are persisted as JSON records in an append-only WAL; boot
// replays the log with the latest record per account winning.
package accounts

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/antonkovalev/tradesim/internal/domain"
)

const (
	defaultAccountDir   = "./wal/accounts"
	accountSegmentLimit = 1000
	accountMaxSegments  = 100
	accountKeyPrefix    = "account_"
)

// WALStore persists accounts in a WAL and serves reads from an in-memory
// index rebuilt on boot. Atomic at single-account granularity; the ledger
// guarantees a single writer per account.
type WALStore struct {
	wal   *gowal.Wal
	mu    sync.RWMutex
	index map[string]*domain.Account
}

// NewWALStore opens (or creates) the account WAL under dir and replays it.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultAccountDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "log_",
		SegmentThreshold: accountSegmentLimit,
		MaxSegments:      accountMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init account WAL")
	}

	store := &WALStore{
		wal:   wal,
		index: make(map[string]*domain.Account),
	}
	if err := store.replay(); err != nil {
		return nil, err
	}

	return store, nil
}

// replay rebuilds the in-memory index from the WAL. Later records overwrite
// earlier ones for the same account.
func (s *WALStore) replay() error {
	for msg := range s.wal.Iterator() {
		if !strings.HasPrefix(msg.Key, accountKeyPrefix) {
			continue
		}

		var account domain.Account
		if err := json.Unmarshal(msg.Value, &account); err != nil {
			return errors.Wrapf(err, "decode account record %s", msg.Key)
		}
		s.index[account.ID] = &account
	}
	return nil
}

// Load returns a deep copy of the stored account, or ErrAccountNotFound.
func (s *WALStore) Load(id string) (*domain.Account, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("account store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.index[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

// Upsert appends the account state to the WAL and updates the index.
func (s *WALStore) Upsert(account *domain.Account) error {
	if s == nil || s.wal == nil {
		return errors.New("account store is not initialized")
	}
	if account == nil || account.ID == "" {
		return errors.New("account id is required")
	}

	payload, err := json.Marshal(account)
	if err != nil {
		return errors.Wrap(err, "marshal account")
	}
	key := fmt.Sprintf("%s%s", accountKeyPrefix, account.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(nextIndex, key, payload); err != nil {
		return errors.Wrapf(err, "write account %s", account.ID)
	}
	s.index[account.ID] = cloneAccount(account)

	return nil
}

// IDs returns all known account identifiers.
func (s *WALStore) IDs() ([]string, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("account store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.index))
	for id := range s.index {
		ids = append(ids, id)
	}
	return ids, nil
}

// Close releases the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return nil
	}
	return s.wal.Close()
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
