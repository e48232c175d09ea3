// Package ledger implements the transactional account store described in
// spec.md §3/§4.1: a bounded, in-memory account table with a coarse
// structure lock protecting the id→account mapping and the id counter,
// and a per-account mutex (internal/domain/account) protecting each
// balance. The only operation that ever holds two account locks at once
// is Transfer, and it always acquires the lower id first — a single
// total order that makes the whole system deadlock-free (spec.md §4.1,
// §5).
package ledger

import (
	"sync"
	"time"

	"ledgerd/internal/domain/account"
	"ledgerd/internal/domain/models"
	"ledgerd/internal/pkg/validation"
)

// Ledger is the process-wide account table. It is safe for concurrent
// use by any number of goroutines.
type Ledger struct {
	mu       sync.Mutex // structure lock: guards accounts and nextID only
	accounts []*models.Account
	nextID   int
	capacity int
}

// New returns an empty Ledger bounded to capacity accounts.
func New(capacity int) *Ledger {
	return &Ledger{
		accounts: make([]*models.Account, 0, capacity),
		capacity: capacity,
	}
}

// Create allocates a new account with balance zero and returns its id.
// Ids are assigned densely starting at zero and are never reused.
func (l *Ledger) Create() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.nextID >= l.capacity {
		return 0, ErrFull
	}

	id := l.nextID
	l.nextID++
	l.accounts = append(l.accounts, &models.Account{
		ID:        id,
		CreatedAt: time.Now(),
	})
	return id, nil
}

// lookup returns the account for id, or nil if it does not exist. It
// only ever touches the structure lock, never an account lock.
func (l *Ledger) lookup(id int) *models.Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id < 0 || id >= len(l.accounts) {
		return nil
	}
	return l.accounts[id]
}

// Deposit credits amount (cents) to id and returns the new balance.
func (l *Ledger) Deposit(id int, amount int64) (int64, error) {
	acc := l.lookup(id)
	if acc == nil {
		return 0, ErrNotFound
	}
	return account.Add(acc, amount)
}

// Withdraw debits amount (cents) from id and returns the new balance.
func (l *Ledger) Withdraw(id int, amount int64) (int64, error) {
	acc := l.lookup(id)
	if acc == nil {
		return 0, ErrNotFound
	}
	return account.Remove(acc, amount)
}

// Transfer moves amount (cents) from fromID to toID atomically: every
// other operation observes either the pre-transfer or post-transfer
// state, never an intermediate one. Returns the source account's new
// balance. The lock order is always (lower id, higher id) regardless of
// which side is the source, which is what prevents two concurrent
// transfers from deadlocking on each other.
func (l *Ledger) Transfer(fromID, toID int, amount int64) (int64, error) {
	// Same-account is checked before the amount: both collapse to the
	// same "FAILURE TRANSFER -1" wire reply, so the order is not
	// wire-visible, but same-account is the cheaper, purely-argument
	// check and is rejected first.
	if fromID == toID {
		return 0, ErrSameAccount
	}
	if err := validation.ValidateAmount(amount); err != nil {
		return 0, err
	}

	from := l.lookup(fromID)
	to := l.lookup(toID)
	if from == nil || to == nil {
		return 0, ErrNotFound
	}

	first, second := from, to
	if toID < fromID {
		first, second = to, from
	}

	first.Mu.Lock()
	second.Mu.Lock()
	defer second.Mu.Unlock()
	defer first.Mu.Unlock()

	if from.Balance < amount {
		return 0, ErrInsufficientFunds
	}
	from.Balance -= amount
	to.Balance += amount
	return from.Balance, nil
}

// BalanceOf returns id's current balance.
func (l *Ledger) BalanceOf(id int) (int64, error) {
	acc := l.lookup(id)
	if acc == nil {
		return 0, ErrNotFound
	}
	return account.Balance(acc), nil
}

// AccountBalance is one row of a Snapshot.
type AccountBalance struct {
	ID      int
	Balance int64
}

// Snapshot returns a per-account-consistent, ascending-id enumeration of
// every account. It is NOT a globally consistent transactional cut: a
// transfer racing a snapshot may be observed as only half-applied,
// exactly as spec.md §4.1/§9 documents. The structure lock is released
// before any account lock is taken, so Snapshot never competes with
// Create for the structure lock while reading balances.
func (l *Ledger) Snapshot() []AccountBalance {
	l.mu.Lock()
	accs := make([]*models.Account, len(l.accounts))
	copy(accs, l.accounts)
	l.mu.Unlock()

	// accs is already in ascending id order: Create appends densely.
	out := make([]AccountBalance, len(accs))
	for i, a := range accs {
		out[i] = AccountBalance{ID: a.ID, Balance: account.Balance(a)}
	}
	return out
}
