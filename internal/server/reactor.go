package server

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"ledgerd/internal/observability/metrics"
	"ledgerd/internal/pkg/logging"
)

const maxEpollEvents = 1000

// conn tracks the partial-line read buffer for one client socket. It is
// only ever touched from the reactor goroutine, so it needs no lock of
// its own. id is a correlation handle for log lines and queued tasks —
// the same role request IDs play in the teacher's HTTP middleware, just
// assigned per connection instead of per request since this protocol
// has no request framing of its own.
type conn struct {
	fd  int
	id  string
	buf []byte
}

func (s *Server) listen() error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return fmt.Errorf("setsockopt reuseaddr: %w", err)
	}

	addr := &unix.SockaddrInet4{Port: s.cfg.Port}
	copy(addr.Addr[:], parseHostBytes(s.cfg.Host))
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return fmt.Errorf("bind: %w", err)
	}

	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return fmt.Errorf("listen: %w", err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return fmt.Errorf("set nonblocking: %w", err)
	}

	bound, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return fmt.Errorf("getsockname: %w", err)
	}
	if in4, ok := bound.(*unix.SockaddrInet4); ok {
		s.boundPort.Store(int64(in4.Port))
	} else {
		s.boundPort.Store(int64(s.cfg.Port))
	}

	s.listenFD = fd
	return nil
}

// parseHostBytes resolves a dotted-quad or "0.0.0.0"/"" host string into
// the four address bytes bind's sockaddr needs. Any other value (a
// hostname) falls back to INADDR_ANY; this server is meant to bind a
// local address, not resolve DNS.
func parseHostBytes(host string) []byte {
	if host == "" || host == "0.0.0.0" {
		return []byte{0, 0, 0, 0}
	}
	var a, b, c, d int
	if n, err := fmt.Sscanf(host, "%d.%d.%d.%d", &a, &b, &c, &d); err == nil && n == 4 {
		return []byte{byte(a), byte(b), byte(c), byte(d)}
	}
	return []byte{0, 0, 0, 0}
}

func (s *Server) initEpoll() error {
	fd, err := unix.EpollCreate1(0)
	if err != nil {
		return fmt.Errorf("epoll_create1: %w", err)
	}

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(s.listenFD)}
	if err := unix.EpollCtl(fd, unix.EPOLL_CTL_ADD, s.listenFD, &ev); err != nil {
		unix.Close(fd)
		return fmt.Errorf("epoll_ctl add listener: %w", err)
	}

	s.epollFD = fd
	return nil
}

// reactorLoop is the single-threaded event demultiplexer: it is the
// only goroutine that ever calls accept, read or epoll_ctl, matching
// original_source/src/server.c's reactor_loop. Workers never touch
// epoll state; they only read tasks off the queue and write replies.
// It returns the still-open client connections rather than closing them
// itself — Run closes them only after every worker has drained the
// queue and joined, so a reply queued before shutdown still reaches its
// socket (spec.md §4.3).
func (s *Server) reactorLoop() map[int]*conn {
	conns := make(map[int]*conn)
	events := make([]unix.EpollEvent, maxEpollEvents)
	timeoutMS := int(s.cfg.EpollTimeout.Milliseconds())

	for s.running.Load() {
		n, err := unix.EpollWait(s.epollFD, events, timeoutMS)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if s.running.Load() {
				logging.Error("epoll_wait failed", err, nil)
			}
			continue
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			if fd == s.listenFD {
				s.acceptConn(conns)
				continue
			}
			s.readConn(conns, fd)
		}
	}

	return conns
}

func (s *Server) acceptConn(conns map[int]*conn) {
	fd, _, err := unix.Accept(s.listenFD)
	if err != nil {
		if err != unix.EAGAIN {
			logging.Warn("accept failed", map[string]interface{}{"error": err.Error()})
		}
		return
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return
	}

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(s.epollFD, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		logging.Warn("epoll_ctl add client failed", map[string]interface{}{"error": err.Error()})
		unix.Close(fd)
		return
	}

	c := &conn{fd: fd, id: uuid.New().String()}
	conns[fd] = c
	metrics.ActiveConnections.Set(float64(len(conns)))
	logging.Debug("connection accepted", map[string]interface{}{"conn_id": c.id, "fd": fd})
}

func (s *Server) readConn(conns map[int]*conn, fd int) {
	c, ok := conns[fd]
	if !ok {
		return
	}

	buf := make([]byte, s.cfg.ReadBufferSize)
	n, err := unix.Read(fd, buf)
	if n <= 0 || (err != nil && err != unix.EAGAIN) {
		s.dropConn(conns, fd)
		return
	}

	c.buf = append(c.buf, buf[:n]...)
	for {
		idx := bytes.IndexByte(c.buf, '\n')
		if idx < 0 {
			break
		}
		line := string(c.buf[:idx])
		c.buf = c.buf[idx+1:]

		select {
		case s.queue <- task{ClientFD: fd, ConnID: c.id, Line: line}:
		case <-s.done:
			return
		}
	}
}

func (s *Server) dropConn(conns map[int]*conn, fd int) {
	if c, ok := conns[fd]; ok {
		logging.Debug("connection closed", map[string]interface{}{"conn_id": c.id, "fd": fd})
	}
	unix.EpollCtl(s.epollFD, unix.EPOLL_CTL_DEL, fd, &unix.EpollEvent{})
	unix.Close(fd)
	delete(conns, fd)
	metrics.ActiveConnections.Set(float64(len(conns)))
}
