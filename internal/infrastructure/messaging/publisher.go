package messaging

import (
	"fmt"
	"strconv"

	"ledgerd/internal/infrastructure/messaging/kafka"
)

// EventPublisher publishes completed-command events for durable, offline
// consumption. It is best-effort with respect to the wire protocol: a
// publish failure is logged by the underlying producer but never turns a
// successful ledger operation into a wire FAILURE. The Kafka
// implementation sends synchronously, so a publish does delay the reply.
type EventPublisher interface {
	PublishAccountCreated(event AccountCreatedEvent) error
	PublishDepositCompleted(event DepositCompletedEvent) error
	PublishWithdrawalCompleted(event WithdrawalCompletedEvent) error
	PublishTransferCompleted(event TransferCompletedEvent) error
	Close() error
	IsHealthy() bool
}

// KafkaEventPublisher implements EventPublisher using Kafka.
type KafkaEventPublisher struct {
	producer *kafka.Producer
}

// NewKafkaEventPublisher creates a new Kafka event publisher.
func NewKafkaEventPublisher(config *kafka.Config) (*KafkaEventPublisher, error) {
	producer, err := kafka.NewProducer(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{producer: producer}, nil
}

func (p *KafkaEventPublisher) PublishAccountCreated(event AccountCreatedEvent) error {
	key := strconv.Itoa(event.AccountID)
	return p.producer.PublishEvent(kafka.TopicAccountCreated, key, event)
}

func (p *KafkaEventPublisher) PublishDepositCompleted(event DepositCompletedEvent) error {
	key := strconv.Itoa(event.AccountID)
	return p.producer.PublishEvent(kafka.TopicTransactionDeposit, key, event)
}

func (p *KafkaEventPublisher) PublishWithdrawalCompleted(event WithdrawalCompletedEvent) error {
	key := strconv.Itoa(event.AccountID)
	return p.producer.PublishEvent(kafka.TopicTransactionWithdrawal, key, event)
}

func (p *KafkaEventPublisher) PublishTransferCompleted(event TransferCompletedEvent) error {
	key := fmt.Sprintf("%d-%d", event.FromAccountID, event.ToAccountID)
	return p.producer.PublishEvent(kafka.TopicTransactionTransfer, key, event)
}

func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

func (p *KafkaEventPublisher) IsHealthy() bool {
	return p.producer.IsHealthy()
}

// NoOpEventPublisher is used when KAFKA_ENABLED=false: every publish call
// succeeds immediately and does nothing, so the ledger never depends on a
// broker being reachable.
type NoOpEventPublisher struct{}

func NewNoOpEventPublisher() *NoOpEventPublisher { return &NoOpEventPublisher{} }

func (p *NoOpEventPublisher) PublishAccountCreated(event AccountCreatedEvent) error { return nil }

func (p *NoOpEventPublisher) PublishDepositCompleted(event DepositCompletedEvent) error { return nil }

func (p *NoOpEventPublisher) PublishWithdrawalCompleted(event WithdrawalCompletedEvent) error {
	return nil
}

func (p *NoOpEventPublisher) PublishTransferCompleted(event TransferCompletedEvent) error { return nil }

func (p *NoOpEventPublisher) Close() error { return nil }

func (p *NoOpEventPublisher) IsHealthy() bool { return true }
