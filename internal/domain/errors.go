package domain

import "github.com/pkg/errors"

// Sentinel errors surfaced by the position lifecycle engine. Callers match
// them with errors.Is; the API layer maps the first two to client errors.
var (
	// ErrInsufficientFunds is returned when a stake exceeds the account balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrEntryConditionsNotMet is returned when an entry filter rejects the asset.
	ErrEntryConditionsNotMet = errors.New("entry conditions not met")
	// ErrSnapshotUnavailable is returned when a market snapshot cannot be fetched.
	ErrSnapshotUnavailable = errors.New("market snapshot unavailable")
	// ErrAlreadyClosed is returned on an attempt to close a closed position.
	ErrAlreadyClosed = errors.New("position already closed")
	// ErrAccountNotFound is returned by stores when an account does not exist.
	ErrAccountNotFound = errors.New("account not found")
)
