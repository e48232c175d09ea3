package messaging

import "time"

// AccountCreatedEvent represents an account creation event.
type AccountCreatedEvent struct {
	AccountID int       `json:"account_id"`
	Timestamp time.Time `json:"timestamp"`
}

// DepositCompletedEvent represents a successful deposit.
type DepositCompletedEvent struct {
	IdempotencyKey string    `json:"idempotency_key"`
	AccountID      int       `json:"account_id"`
	Amount         int64     `json:"amount"`        // cents
	BalanceAfter   int64     `json:"balance_after"` // cents
	Timestamp      time.Time `json:"timestamp"`
}

// WithdrawalCompletedEvent represents a successful withdrawal.
type WithdrawalCompletedEvent struct {
	IdempotencyKey string    `json:"idempotency_key"`
	AccountID      int       `json:"account_id"`
	Amount         int64     `json:"amount"`        // cents
	BalanceAfter   int64     `json:"balance_after"` // cents
	Timestamp      time.Time `json:"timestamp"`
}

// TransferCompletedEvent represents a successful transfer.
type TransferCompletedEvent struct {
	IdempotencyKey   string    `json:"idempotency_key"`
	FromAccountID    int       `json:"from_account_id"`
	ToAccountID      int       `json:"to_account_id"`
	Amount           int64     `json:"amount"`             // cents
	FromBalanceAfter int64     `json:"from_balance_after"` // cents
	ToBalanceAfter   int64     `json:"to_balance_after"`   // cents
	Timestamp        time.Time `json:"timestamp"`
}
