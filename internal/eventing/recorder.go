// Package eventing adapts the protocol package's narrow Events hook to
// the two sinks a completed command actually feeds: a durable Kafka
// topic (internal/infrastructure/messaging) and the in-process broker
// the observability sidecar's SSE endpoint reads from
// (internal/infrastructure/events). Neither sink can change a wire
// reply: Execute calls Recorder's methods synchronously after the ledger
// operation has succeeded and before it returns the reply, and every
// failure here is only logged. A slow sink does delay that reply.
package eventing

import (
	"time"

	"ledgerd/internal/domain/models"
	"ledgerd/internal/infrastructure/events"
	"ledgerd/internal/infrastructure/messaging"
	"ledgerd/internal/observability/metrics"
	"ledgerd/internal/pkg/idempotency"
	"ledgerd/internal/pkg/logging"
)

// Recorder implements protocol.Events.
type Recorder struct {
	publisher messaging.EventPublisher
	broker    *events.Broker
}

func nowUTC() time.Time { return time.Now().UTC() }

// New returns a Recorder that publishes to publisher and broadcasts to
// broker. Either may be nil-safe stand-ins (messaging.NewNoOpEventPublisher,
// events.NewBroker) when a deployment has no subscribers.
func New(publisher messaging.EventPublisher, broker *events.Broker) *Recorder {
	return &Recorder{publisher: publisher, broker: broker}
}

func (r *Recorder) AccountCreated(id int) {
	ts := nowUTC()
	if err := r.publisher.PublishAccountCreated(messaging.AccountCreatedEvent{
		AccountID: id,
		Timestamp: ts,
	}); err != nil {
		logging.Warn("failed to publish account_created event", map[string]interface{}{
			"account_id": id, "error": err.Error(),
		})
	}
	r.broadcast(models.TransactionEvent{Type: "account_created", AccountID: id, Timestamp: ts})
	metrics.AccountsCreatedTotal.Inc()
	metrics.ActiveAccountsGauge.Inc()
}

func (r *Recorder) Deposited(id int, amount, balance int64) {
	ts := nowUTC()
	key := idempotency.GenerateKey("deposit", id, int(amount))
	if err := r.publisher.PublishDepositCompleted(messaging.DepositCompletedEvent{
		IdempotencyKey: key,
		AccountID:      id,
		Amount:         amount,
		BalanceAfter:   balance,
		Timestamp:      ts,
	}); err != nil {
		logging.Warn("failed to publish deposit event", map[string]interface{}{
			"account_id": id, "error": err.Error(),
		})
	}
	r.broadcast(models.TransactionEvent{
		Type: "deposit", AccountID: id, Amount: amount, Balance: balance, Timestamp: ts,
	})
	metrics.AccountBalancesHistogram.Observe(float64(balance))
}

func (r *Recorder) Withdrawn(id int, amount, balance int64) {
	ts := nowUTC()
	key := idempotency.GenerateKey("withdraw", id, int(amount))
	if err := r.publisher.PublishWithdrawalCompleted(messaging.WithdrawalCompletedEvent{
		IdempotencyKey: key,
		AccountID:      id,
		Amount:         amount,
		BalanceAfter:   balance,
		Timestamp:      ts,
	}); err != nil {
		logging.Warn("failed to publish withdrawal event", map[string]interface{}{
			"account_id": id, "error": err.Error(),
		})
	}
	r.broadcast(models.TransactionEvent{
		Type: "withdrawal", AccountID: id, Amount: amount, Balance: balance, Timestamp: ts,
	})
	metrics.AccountBalancesHistogram.Observe(float64(balance))
}

func (r *Recorder) Transferred(fromID, toID int, amount, fromBalance, toBalance int64) {
	ts := nowUTC()
	key := idempotency.GenerateTransferKey(fromID, toID, int(amount))
	if err := r.publisher.PublishTransferCompleted(messaging.TransferCompletedEvent{
		IdempotencyKey:   key,
		FromAccountID:    fromID,
		ToAccountID:      toID,
		Amount:           amount,
		FromBalanceAfter: fromBalance,
		ToBalanceAfter:   toBalance,
		Timestamp:        ts,
	}); err != nil {
		logging.Warn("failed to publish transfer event", map[string]interface{}{
			"from_account_id": fromID, "to_account_id": toID, "error": err.Error(),
		})
	}
	r.broadcast(models.TransactionEvent{
		Type: "transfer", AccountID: fromID, ToID: toID,
		Amount: amount, Balance: fromBalance, ToBalance: toBalance, Timestamp: ts,
	})
	metrics.TransferAmountHistogram.Observe(float64(amount))
	metrics.AccountBalancesHistogram.Observe(float64(fromBalance))
	metrics.AccountBalancesHistogram.Observe(float64(toBalance))
}

func (r *Recorder) broadcast(event models.TransactionEvent) {
	if r.broker == nil {
		return
	}
	r.broker.Publish(event)
}
