package server

import (
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"ledgerd/internal/observability/metrics"
	"ledgerd/internal/pkg/logging"
	"ledgerd/internal/protocol"
)

// startWorkers launches the fixed pool of goroutines that drain the
// task queue, the Go translation of thread_pool_init's pthread_create
// loop (original_source/src/thread_pool.c). Unlike the C pool, nothing
// about pool size changes for single-threaded mode: every worker still
// runs, they simply serialize on execMu when s.singleThreaded is set
// (spec.md §4.3), so MODE_SINGLE/MODE_MULTI never races pool shutdown.
func (s *Server) startWorkers() {
	for i := 0; i < s.cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

func (s *Server) worker() {
	defer s.wg.Done()

	for t := range s.queue {
		metrics.QueueDepth.Set(float64(len(s.queue)))
		reply := s.execute(t.Line)
		if err := writeAll(t.ClientFD, []byte(reply)); err != nil {
			logging.Warn("failed to write reply", map[string]interface{}{
				"conn_id": t.ConnID, "fd": t.ClientFD, "error": err.Error(),
			})
		}
	}
}

func (s *Server) execute(line string) string {
	if s.singleThreaded.Load() {
		s.execMu.Lock()
		defer s.execMu.Unlock()
	}

	start := time.Now()
	reply := protocol.Execute(line, s.ledger, s, s.events)
	metrics.RecordCommand(commandName(line), outcome(reply), time.Since(start).Seconds())
	return reply
}

func commandName(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "INVALID"
	}
	return strings.ToUpper(fields[0])
}

func outcome(reply string) string {
	switch {
	case strings.HasPrefix(reply, "SUCCESS"):
		return "success"
	case strings.HasPrefix(reply, "FAILURE INVALID"):
		return "invalid"
	default:
		return "failure"
	}
}

// writeAll retries short writes, since a non-blocking socket's write
// can return fewer bytes than requested under backpressure.
func writeAll(fd int, buf []byte) error {
	for len(buf) > 0 {
		n, err := unix.Write(fd, buf)
		if err != nil {
			if err == unix.EAGAIN {
				continue
			}
			return err
		}
		buf = buf[n:]
	}
	return nil
}
