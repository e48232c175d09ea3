package models

import (
	"sync"
	"time"
)

// Account is a single ledger entry. Balance is held in integer cents so
// that repeated deposits/withdrawals never accumulate IEEE-754 float
// drift; the Protocol layer is the only place that converts to/from the
// two-decimal-digit textual wire form.
//
// Mu guards Balance; it is the per-account lock from spec.md §3. Once
// created an Account is never removed from the Ledger, so holding a
// pointer to one for the lifetime of the process is always safe.
type Account struct {
	ID        int
	Balance   int64
	CreatedAt time.Time

	Mu sync.Mutex
}
