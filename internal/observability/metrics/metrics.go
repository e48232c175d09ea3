// Package metrics exposes the ledger's Prometheus instrumentation,
// trimmed down from the teacher's src/metrics/prometheus.go to the
// counters and histograms a reactor-driven TCP service actually has:
// per-command outcome and latency, queue/connection pressure, and the
// same business-level distributions (transfer amounts, account
// balances) the teacher tracked for its HTTP handlers.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsTotal counts every command Execute returns a reply for,
	// labeled by command name and outcome (success/failure/invalid).
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_commands_total",
			Help: "Total number of protocol commands processed",
		},
		[]string{"command", "status"},
	)

	// CommandDuration observes wall-clock time spent inside Execute,
	// including the simulated processing delay.
	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_command_duration_seconds",
			Help:    "Duration of protocol command execution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	// QueueDepth tracks how many tasks are waiting in the worker pool's
	// channel, a direct readout of backpressure on the reactor.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_queue_depth",
			Help: "Current number of queued commands awaiting a worker",
		},
	)

	// ActiveConnections tracks live client sockets held by the reactor.
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_active_connections",
			Help: "Current number of open client connections",
		},
	)

	// AccountsCreatedTotal counts every successful CREATE.
	AccountsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_accounts_created_total",
			Help: "Total number of accounts created",
		},
	)

	// ActiveAccountsGauge tracks the current account count.
	ActiveAccountsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_accounts_active_total",
			Help: "Current number of accounts in the ledger",
		},
	)

	// TransferAmountHistogram buckets successful transfer amounts, in cents.
	TransferAmountHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_transfer_amount_cents",
			Help:    "Distribution of transfer amounts in cents",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		},
	)

	// AccountBalancesHistogram buckets the resulting account balances of
	// successful DEPOSIT/WITHDRAW/TRANSFER commands, in cents.
	AccountBalancesHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_account_balance_cents",
			Help:    "Distribution of observed account balances in cents",
			Buckets: []float64{0, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000},
		},
	)

	// GoroutinesGauge mirrors runtime.NumGoroutine, sampled periodically.
	GoroutinesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_goroutines_current",
			Help: "Current number of goroutines",
		},
	)
)

// RecordCommand records one Execute call's outcome and latency.
func RecordCommand(command, status string, seconds float64) {
	CommandsTotal.WithLabelValues(command, status).Inc()
	CommandDuration.WithLabelValues(command).Observe(seconds)
}

// UpdateSystemMetrics refreshes the runtime-derived gauges. Called
// periodically by the observability sidecar, not by the reactor or
// workers, so it never competes with them for CPU.
func UpdateSystemMetrics() {
	GoroutinesGauge.Set(float64(runtime.NumGoroutine()))
}
