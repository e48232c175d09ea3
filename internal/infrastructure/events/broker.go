// Package events provides the in-process pub/sub broker the
// observability sidecar's SSE endpoint reads from. It is entirely
// separate from the Kafka publisher in internal/infrastructure/messaging:
// this one fans events out to whatever HTTP clients happen to be
// connected right now and drops them on the floor otherwise, while Kafka
// durably queues the same facts for offline consumers.
package events

import (
	"sync"

	"ledgerd/internal/domain/models"
)

// Broker manages client subscriptions and broadcasts transaction events.
type Broker struct {
	clients       map[chan models.TransactionEvent]bool
	newClients    chan chan models.TransactionEvent
	closedClients chan chan models.TransactionEvent
	events        chan models.TransactionEvent
}

var (
	// BrokerInstance is the global event broker (singleton).
	BrokerInstance *Broker
	brokerOnce     sync.Once
)

// GetBroker returns the singleton event broker instance.
func GetBroker() *Broker {
	brokerOnce.Do(func() {
		BrokerInstance = NewBroker()
	})
	return BrokerInstance
}

// NewBroker creates and starts a new Broker. Exported for tests; production
// code should use GetBroker().
func NewBroker() *Broker {
	b := &Broker{
		clients:       make(map[chan models.TransactionEvent]bool),
		newClients:    make(chan chan models.TransactionEvent),
		closedClients: make(chan chan models.TransactionEvent),
		events:        make(chan models.TransactionEvent),
	}

	go b.start()
	return b
}

func (b *Broker) start() {
	for {
		select {
		case client := <-b.newClients:
			b.clients[client] = true
		case client := <-b.closedClients:
			delete(b.clients, client)
			close(client)
		case event := <-b.events:
			for client := range b.clients {
				select {
				case client <- event:
				default:
					// Slow subscriber: drop rather than block the broker
					// loop, which would stall every other subscriber too.
				}
			}
		}
	}
}

// Subscribe registers a new listener and returns its channel.
func (b *Broker) Subscribe() chan models.TransactionEvent {
	ch := make(chan models.TransactionEvent)
	b.newClients <- ch
	return ch
}

// Unsubscribe removes a listener.
func (b *Broker) Unsubscribe(ch chan models.TransactionEvent) {
	b.closedClients <- ch
}

// Publish sends the given event to all connected clients.
func (b *Broker) Publish(event models.TransactionEvent) {
	b.events <- event
}
