// Package server implements the reactor + worker-pool I/O engine from
// spec.md §5: a single epoll thread demultiplexes client sockets and
// hands complete command lines to a bounded pool of workers, which run
// them through internal/protocol and write the reply back. It is the
// direct Go translation of original_source/src/server.c and
// thread_pool.c, with the hand-rolled mutex/condvar task queue replaced
// by a buffered channel.
package server

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"ledgerd/internal/config"
	"ledgerd/internal/domain/ledger"
	"ledgerd/internal/pkg/logging"
	"ledgerd/internal/protocol"
)

// Server owns the listening socket, the epoll reactor and the worker
// pool. The zero value is not usable; construct with New.
type Server struct {
	cfg    config.ServerConfig
	ledger *ledger.Ledger
	events protocol.Events

	listenFD  int
	epollFD   int
	boundPort atomic.Int64

	queue chan task
	wg    sync.WaitGroup

	running        atomic.Bool
	singleThreaded atomic.Bool
	execMu         sync.Mutex // held by a worker only while running is single-threaded

	shutdownOnce sync.Once
	done         chan struct{}
}

// New constructs a Server bound to ledger l. It does not open any
// sockets until Run is called.
func New(cfg config.ServerConfig, l *ledger.Ledger, events protocol.Events) *Server {
	s := &Server{
		cfg:    cfg,
		ledger: l,
		events: events,
		queue:  make(chan task, cfg.QueueCapacity),
		done:   make(chan struct{}),
	}
	s.singleThreaded.Store(cfg.SingleThreadedDefault)
	return s
}

// SetSingleThreaded implements protocol.Control.
func (s *Server) SetSingleThreaded(single bool) {
	s.singleThreaded.Store(single)
}

// SingleThreaded implements protocol.Control.
func (s *Server) SingleThreaded() bool {
	return s.singleThreaded.Load()
}

// Port returns the TCP port actually bound, which may differ from
// cfg.Port when it was 0 (bind to any free port) — the case tests use
// to run many servers side by side without colliding.
func (s *Server) Port() int {
	return int(s.boundPort.Load())
}

// RequestShutdown implements protocol.Control. It triggers the same
// graceful shutdown sequence a SIGINT does.
func (s *Server) RequestShutdown() {
	s.initiateShutdown()
}

// Run opens the listening socket, starts the worker pool, then blocks
// running the epoll reactor loop until Shutdown or RequestShutdown is
// called. It returns nil on a clean shutdown.
func (s *Server) Run() error {
	if err := s.listen(); err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	if err := s.initEpoll(); err != nil {
		unix.Close(s.listenFD)
		return fmt.Errorf("server: epoll init: %w", err)
	}

	s.running.Store(true)
	s.startWorkers()

	logging.Info("server listening", map[string]interface{}{
		"host": s.cfg.Host, "port": s.cfg.Port, "workers": s.cfg.WorkerCount,
	})

	conns := s.reactorLoop()
	close(s.queue)

	// Workers must finish writing every queued reply before client
	// sockets disappear, per spec.md §4.3's teardown order: drain the
	// queue, join the workers, only then close sockets.
	s.wg.Wait()
	for fd := range conns {
		unix.Close(fd)
	}
	unix.Close(s.epollFD)
	unix.Close(s.listenFD)
	logging.Info("server stopped", nil)
	return nil
}

// Shutdown requests a graceful stop: the reactor stops accepting new
// events, the task queue drains, every worker finishes its current
// command, then Run returns. Safe to call more than once and from any
// goroutine.
func (s *Server) Shutdown() {
	s.initiateShutdown()
}

func (s *Server) initiateShutdown() {
	s.shutdownOnce.Do(func() {
		logging.Info("server shutting down", nil)
		s.running.Store(false)
		close(s.done)
	})
}
