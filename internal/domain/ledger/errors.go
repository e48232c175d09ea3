package ledger

import (
	"errors"

	"ledgerd/internal/pkg/validation"
)

// Domain-level errors returned by Ledger operations (spec.md §4.1, §7).
// The Protocol layer maps every one of these to the wire form
// "FAILURE <CMD> -1"; Server never inspects them.
var (
	ErrNotFound          = errors.New("account not found")
	ErrSameAccount       = errors.New("source and destination are the same account")
	ErrFull              = errors.New("ledger is at capacity")
	ErrInvalidAmount     = validation.ErrInvalidAmount
	ErrInsufficientFunds = validation.ErrInsufficientFunds
)
