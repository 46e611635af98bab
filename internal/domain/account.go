// Package domain defines the core data structures of the trading simulator.
package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Account holds a user's virtual funds and the ordered sequence of positions
// opened against them. Accounts are provisioned lazily on first reference and
// never deleted. The balance is never debited below zero; callers serialize
// mutations per account (see the ledger).
type Account struct {
	// ID externally assigned unique identifier.
	ID string `json:"uid"`
	// Email contact label, "unknown" when lazily provisioned.
	Email string `json:"email"`
	// Funds virtual currency balance, never negative.
	Funds decimal.Decimal `json:"virtual_funds"`
	// Positions in open order.
	Positions []*Position `json:"trades"`
}

// NewAccount creates an empty account for the given identifier.
func NewAccount(id string) *Account {
	return &Account{
		ID:    id,
		Email: "unknown",
		Funds: decimal.Zero,
	}
}

// Deposit credits virtual funds. Non-positive amounts are rejected.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("deposit amount must be positive, got %s", amount.String())
	}
	a.Funds = a.Funds.Add(amount)
	return nil
}

// Debit removes the stake from the balance, rejecting the operation with
// ErrInsufficientFunds instead of ever going negative.
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("debit amount must be positive, got %s", amount.String())
	}
	if amount.GreaterThan(a.Funds) {
		return ErrInsufficientFunds
	}
	a.Funds = a.Funds.Sub(amount)
	return nil
}

// Credit adds a settlement payout to the balance. Zero is allowed: a worthless
// exit still settles.
func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.Errorf("credit amount must not be negative, got %s", amount.String())
	}
	a.Funds = a.Funds.Add(amount)
	return nil
}

// OpenPositions returns the account's positions that are still open.
func (a *Account) OpenPositions() []*Position {
	open := make([]*Position, 0, len(a.Positions))
	for _, p := range a.Positions {
		if p.IsOpen() {
			open = append(open, p)
		}
	}
	return open
}
