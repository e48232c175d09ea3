// Package components wires every part of the ledger daemon together,
// following the teacher's internal/pkg/components Container pattern: one
// struct owns construction order, one Start blocks serving, one Shutdown
// tears everything down in reverse.
package components

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ledgerd/internal/config"
	"ledgerd/internal/domain/ledger"
	"ledgerd/internal/eventing"
	"ledgerd/internal/infrastructure/events"
	"ledgerd/internal/infrastructure/messaging"
	"ledgerd/internal/infrastructure/messaging/kafka"
	"ledgerd/internal/observability/httpapi"
	"ledgerd/internal/pkg/logging"
	"ledgerd/internal/protocol"
	"ledgerd/internal/server"
)

// Container holds every long-lived component and their dependencies.
type Container struct {
	Config         *config.Config
	Ledger         *ledger.Ledger
	EventBroker    *events.Broker
	EventPublisher messaging.EventPublisher
	Server         *server.Server
	Observability  *httpapi.Server
}

var (
	instance     *Container
	instanceOnce sync.Once
	instanceErr  error
)

// GetInstance returns the singleton container instance.
func GetInstance() (*Container, error) {
	instanceOnce.Do(func() {
		instance, instanceErr = newContainer()
	})
	return instance, instanceErr
}

// New creates and initializes all application components. For backward
// compatibility this calls GetInstance.
func New() (*Container, error) {
	return GetInstance()
}

func newContainer() (*Container, error) {
	c := &Container{}

	if err := c.initConfig(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	if err := c.initLogger(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := c.initLedger(); err != nil {
		return nil, fmt.Errorf("failed to initialize ledger: %w", err)
	}
	if err := c.initEventBroker(); err != nil {
		return nil, fmt.Errorf("failed to initialize event broker: %w", err)
	}
	if err := c.initEventPublisher(); err != nil {
		return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	if err := c.initServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}
	if err := c.initObservability(); err != nil {
		return nil, fmt.Errorf("failed to initialize observability sidecar: %w", err)
	}

	logging.Info("all components initialized successfully", nil)
	return c, nil
}

func (c *Container) initConfig() error {
	c.Config = config.Load()
	return nil
}

func (c *Container) initLogger() error {
	logging.Init(c.Config)
	logging.Info("logger initialized", map[string]interface{}{"level": c.Config.Logging.Level})
	return nil
}

func (c *Container) initLedger() error {
	c.Ledger = ledger.New(c.Config.Ledger.Capacity)
	logging.Info("ledger initialized", map[string]interface{}{"capacity": c.Config.Ledger.Capacity})
	return nil
}

func (c *Container) initEventBroker() error {
	c.EventBroker = events.GetBroker()
	logging.Info("event broker initialized", nil)
	return nil
}

func (c *Container) initEventPublisher() error {
	if !c.Config.Kafka.Enabled {
		logging.Info("kafka disabled, using no-op event publisher", nil)
		c.EventPublisher = messaging.NewNoOpEventPublisher()
		return nil
	}

	kafkaConfig := kafka.NewConfigFromEnv()
	publisher, err := messaging.NewKafkaEventPublisher(kafkaConfig)
	if err != nil {
		// Kafka reachability is not allowed to keep the ledger from
		// starting: fall back to no-op. The fallback is reported only by
		// this warning; the no-op publisher's IsHealthy() returns true and
		// /healthz does not consult the publisher.
		logging.Warn("failed to initialize kafka, using no-op event publisher", map[string]interface{}{
			"error": err.Error(),
		})
		c.EventPublisher = messaging.NewNoOpEventPublisher()
		return nil
	}

	c.EventPublisher = publisher
	logging.Info("kafka event publisher initialized", map[string]interface{}{"brokers": kafkaConfig.Brokers})
	return nil
}

func (c *Container) initServer() error {
	recorder := eventing.New(c.EventPublisher, c.EventBroker)
	protocol.Delay = c.Config.Server.ProcessingDelay
	c.Server = server.New(c.Config.Server, c.Ledger, recorder)
	return nil
}

func (c *Container) initObservability() error {
	if !c.Config.Observability.Enabled {
		return nil
	}
	c.Observability = httpapi.New(c.Config.Observability.Addr, c.EventBroker)
	return nil
}

// Start runs the TCP server and, if enabled, the observability sidecar,
// then blocks until a SIGINT/SIGTERM or a wire SHUTDOWN command ends
// the process.
func (c *Container) Start() error {
	errCh := make(chan error, 2)

	go func() {
		if err := c.Server.Run(); err != nil {
			errCh <- fmt.Errorf("tcp server: %w", err)
			return
		}
		// A clean return means a wire SHUTDOWN stopped the server.
		errCh <- nil
	}()

	if c.Observability != nil {
		go func() {
			if err := c.Observability.Run(); err != nil {
				errCh <- fmt.Errorf("observability sidecar: %w", err)
			}
		}()
	}

	c.waitForShutdown(errCh)
	return nil
}

func (c *Container) waitForShutdown(errCh chan error) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logging.Info("received shutdown signal", map[string]interface{}{"signal": sig.String()})
	case err := <-errCh:
		if err != nil {
			logging.Error("component failed", err, nil)
		} else {
			logging.Info("tcp server stopped", nil)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Shutdown(ctx); err != nil {
		logging.Error("forced shutdown", err, nil)
	}
	logging.Info("shutdown complete", nil)
}

// Shutdown gracefully stops every component in reverse startup order.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Observability != nil {
		if err := c.Observability.Shutdown(ctx); err != nil {
			logging.Error("failed to shut down observability sidecar", err, nil)
		}
	}

	c.Server.Shutdown()

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			logging.Error("failed to close event publisher", err, nil)
		}
	}

	return nil
}
