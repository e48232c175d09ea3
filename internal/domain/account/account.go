// Package account holds the per-account operations that acquire and
// release a single account's mutex. The Ledger (internal/domain/ledger)
// composes these over one or two accounts at a time; this package never
// reaches across accounts, which is what keeps it safe to call while
// holding zero, one, or two account locks in a fixed order.
package account

import (
	"ledgerd/internal/domain/models"
	"ledgerd/internal/pkg/validation"
)

func withLock(acc *models.Account, fn func()) {
	acc.Mu.Lock()
	defer acc.Mu.Unlock()
	fn()
}

// Add credits amount (in cents) to acc and returns the new balance.
func Add(acc *models.Account, amount int64) (int64, error) {
	if err := validation.ValidateAmount(amount); err != nil {
		return 0, err
	}

	var balance int64
	withLock(acc, func() {
		acc.Balance += amount
		balance = acc.Balance
	})
	return balance, nil
}

// Remove debits amount (in cents) from acc, failing without effect if
// the balance would go negative.
func Remove(acc *models.Account, amount int64) (int64, error) {
	if err := validation.ValidateAmount(amount); err != nil {
		return 0, err
	}

	var balance int64
	var err error
	withLock(acc, func() {
		if acc.Balance < amount {
			err = validation.ErrInsufficientFunds
			balance = acc.Balance
			return
		}
		acc.Balance -= amount
		balance = acc.Balance
	})
	return balance, err
}

// Balance reads acc's current balance under its lock.
func Balance(acc *models.Account) int64 {
	var balance int64
	withLock(acc, func() {
		balance = acc.Balance
	})
	return balance
}
