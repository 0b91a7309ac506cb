// Package server implements the single-threaded, epoll-driven TCP event
// loop (spec components C6/C7): accept, poll, read, dispatch, write, with
// per-connection sliding buffers and an LRU connection list.
package server

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/marmos91/dittorpc/internal/logger"
	"github.com/marmos91/dittorpc/internal/registry"
	"golang.org/x/sys/unix"
)

// MetricsRecorder allows the server to report connection lifecycle events.
// internal/metrics provides a prometheus-backed implementation; nil means
// no metrics are collected.
type MetricsRecorder interface {
	RecordConnectionAccepted()
	RecordConnectionClosed()
	RecordConnectionForceClosed()
	SetActiveConnections(count int32)
	RecordDispatch(status string)
}

// Server is a single-threaded epoll event loop serving RPC requests over
// many concurrent TCP connections. It is not safe for concurrent use from
// multiple goroutines (spec §5: "no locks are used internally").
type Server struct {
	config   Config
	registry *registry.Registry
	metrics  MetricsRecorder

	listenFD int
	epollFD  int

	connections map[int]*connection
	lru         lruList

	shouldStop atomic.Bool
}

// New creates a Server bound to no socket yet; call Listen to start
// accepting connections. cfg.ApplyDefaults is NOT called automatically —
// callers constructing Config by hand should call it themselves.
func New(cfg Config, reg *registry.Registry, metrics MetricsRecorder) *Server {
	return &Server{
		config:      cfg,
		registry:    reg,
		metrics:     metrics,
		listenFD:    -1,
		epollFD:     -1,
		connections: make(map[int]*connection),
	}
}

// Listen creates the listening socket and epoll instance. It must be
// called before MainLoop.
func (s *Server) Listen() error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("server: socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("server: setsockopt SO_REUSEADDR: %w", err)
	}

	addr, err := parseIPv4(s.config.BindAddress)
	if err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("server: bind address: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: s.config.Port, Addr: addr}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("server: bind: %w", err)
	}

	if err := unix.Listen(fd, s.config.ListenBacklog); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("server: listen: %w", err)
	}

	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("server: epoll_create1: %w", err)
	}

	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(fd),
	}); err != nil {
		_ = unix.Close(epfd)
		_ = unix.Close(fd)
		return fmt.Errorf("server: epoll_ctl add listener: %w", err)
	}

	s.listenFD = fd
	s.epollFD = epfd
	logger.Info("rpc server listening", "bind_address", s.config.BindAddress, "port", s.config.Port)
	return nil
}

// Port returns the TCP port the listening socket is bound to, resolving
// an ephemeral (Config.Port == 0) assignment after Listen. Intended for
// tests that bind to port 0 and need the OS-assigned port to connect to.
func (s *Server) Port() (int, error) {
	sa, err := unix.Getsockname(s.listenFD)
	if err != nil {
		return 0, fmt.Errorf("server: getsockname: %w", err)
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, fmt.Errorf("server: getsockname: unexpected sockaddr type %T", sa)
	}
	return in4.Port, nil
}

// SignalStop asks MainLoop to terminate. It is safe to call from a signal
// handler; the loop observes it at the top of its next pass (worst case
// one PollTimeout later, per spec §5).
func (s *Server) SignalStop() {
	s.shouldStop.Store(true)
}

// AddService registers svc under instanceID on the server's registry
// (spec §6's AddService contract).
func (s *Server) AddService(instanceID uint32, svc *registry.Service) error {
	return s.registry.AddService(instanceID, svc)
}

// MainLoop runs the event loop until SignalStop is called or an
// unrecoverable polling error occurs. On return, every connection and the
// listening socket have been closed (spec §4.5 termination).
func (s *Server) MainLoop() error {
	events := make([]unix.EpollEvent, s.config.PollBatchSize)
	timeoutMs := int(s.config.PollTimeout / time.Millisecond)

	for !s.shouldStop.Load() {
		n, err := unix.EpollWait(s.epollFD, events, timeoutMs)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			s.terminate()
			return fmt.Errorf("server: epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			fd := int(ev.Fd)
			if fd == s.listenFD {
				s.acceptLoop()
				continue
			}
			if conn, ok := s.connections[fd]; ok {
				s.handleConnectionEvent(conn, ev.Events)
			}
		}

		s.checkTimeout(time.Now())
	}

	s.terminate()
	return nil
}

// acceptLoop drains every pending connection on the listening socket,
// since epoll is level-triggered and a single event may represent several
// queued connections.
func (s *Server) acceptLoop() {
	for {
		fd, sa, err := unix.Accept4(s.listenFD, unix.SOCK_NONBLOCK)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return
			}
			logger.Debug("rpc server accept error", "error", err)
			return
		}

		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)

		conn := newConnection(fd, remoteAddrString(sa), s.config.MaxRequestSize, s.config.MaxResponseSize)

		if err := unix.EpollCtl(s.epollFD, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
			Events: unix.EPOLLIN,
			Fd:     int32(fd),
		}); err != nil {
			logger.Debug("rpc server epoll_ctl add connection failed", "error", err)
			_ = unix.Close(fd)
			continue
		}

		s.connections[fd] = conn
		s.lru.pushFront(conn)

		if s.metrics != nil {
			s.metrics.RecordConnectionAccepted()
			s.metrics.SetActiveConnections(int32(len(s.connections)))
		}
		logger.Debug("rpc connection accepted", "connection_id", conn.id, "remote_addr", conn.remoteAddr)
	}
}

// handleConnectionEvent implements one iteration of spec §4.5's per-event
// steps 1-5 for a single connection.
func (s *Server) handleConnectionEvent(c *connection, events uint32) {
	if events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		s.closeConnection(c)
		return
	}

	s.lru.moveToFront(c)
	c.markActive(time.Now())

	if events&unix.EPOLLOUT != 0 {
		s.flush(c)
	}

	if c.closed {
		return
	}

	if events&unix.EPOLLIN != 0 {
		s.drainReadable(c)
	}

	if c.closed {
		return
	}

	s.recomputeInterest(c)
}

// drainReadable compacts the inbound buffer if needed, performs one
// non-blocking read, then pipelines as many HandleRequest calls as the
// outbound buffer has room for.
func (s *Server) drainReadable(c *connection) {
	if c.in.ResidualSize() == 0 {
		if !c.in.Slide(0) {
			return // still saturated; nothing to do this cycle
		}
	}

	n, err := unix.Read(c.fd, c.in.Residual())
	switch {
	case errors.Is(err, unix.EAGAIN):
		// no data available right now; not an error
	case n > 0:
		c.in.Produce(n)
	case n == 0 && err == nil:
		s.closeConnection(c)
		return
	default:
		s.closeConnection(c)
		return
	}

	for c.out.Slide(s.config.MaxResponseSize) && !c.hasError {
		if !s.handleRequest(c) {
			break
		}
		s.flush(c)
		if c.closed {
			return
		}
	}
}

// flush performs one non-blocking write of the outbound buffer's unflushed
// bytes. A short write leaves the remainder for the next cycle.
func (s *Server) flush(c *connection) {
	if c.out.DataSize() == 0 {
		return
	}
	n, err := unix.Write(c.fd, c.out.Data())
	if n > 0 {
		c.out.Consume(n)
	}
	if err != nil && !errors.Is(err, unix.EAGAIN) {
		s.closeConnection(c)
	}
}

// recomputeInterest updates the connection's epoll registration if its
// desired interest mask changed, and closes it if the mask went empty or
// it is in error with a fully drained outbound buffer (spec §4.5 step 5).
func (s *Server) recomputeInterest(c *connection) {
	if c.hasError && c.out.DataSize() == 0 {
		s.closeConnection(c)
		return
	}

	mask := c.desiredInterest()
	if mask == c.interest {
		return
	}
	if mask == 0 {
		s.closeConnection(c)
		return
	}

	var epollEvents uint32
	if mask&pollReadable != 0 {
		epollEvents |= unix.EPOLLIN
	}
	if mask&pollWritable != 0 {
		epollEvents |= unix.EPOLLOUT
	}

	if err := unix.EpollCtl(s.epollFD, unix.EPOLL_CTL_MOD, c.fd, &unix.EpollEvent{
		Events: epollEvents,
		Fd:     int32(c.fd),
	}); err != nil {
		logger.Debug("rpc server epoll_ctl mod failed", "connection_id", c.id, "error", err)
	}
	c.interest = mask
}

// checkTimeout evicts the least-recently-active connection from the LRU
// tail whenever it has exceeded IdleTimeout (spec §9's open question on
// idle eviction; zero IdleTimeout disables this).
func (s *Server) checkTimeout(now time.Time) {
	if s.config.IdleTimeout <= 0 {
		return
	}
	for {
		oldest := s.lru.oldest()
		if oldest == nil || now.Sub(oldest.lastActive) < s.config.IdleTimeout {
			return
		}
		logger.Debug("rpc connection idle timeout", "connection_id", oldest.id)
		s.closeConnection(oldest)
	}
}

// closeConnection deregisters c from the poll set, closes its socket, and
// unlinks it from the LRU list (spec §4.4). Idempotent: a connection may
// be observed failing from more than one call site within the same event
// (e.g. a write error in flush followed by a read on the now-dead fd in
// drainReadable), and a second close must be a no-op rather than unlink
// an already-unlinked node and corrupt the LRU list.
func (s *Server) closeConnection(c *connection) {
	if c.closed {
		return
	}
	c.closed = true

	_ = unix.EpollCtl(s.epollFD, unix.EPOLL_CTL_DEL, c.fd, nil)
	_ = unix.Close(c.fd)
	delete(s.connections, c.fd)
	s.lru.remove(c)

	if s.metrics != nil {
		s.metrics.RecordConnectionClosed()
		s.metrics.SetActiveConnections(int32(len(s.connections)))
	}
	logger.Debug("rpc connection closed", "connection_id", c.id)
}

// terminate closes every live connection, the listening socket, and the
// epoll instance (spec §4.5 termination).
func (s *Server) terminate() {
	for _, c := range s.connections {
		_ = unix.EpollCtl(s.epollFD, unix.EPOLL_CTL_DEL, c.fd, nil)
		_ = unix.Close(c.fd)
		if s.metrics != nil {
			s.metrics.RecordConnectionForceClosed()
		}
	}
	s.connections = make(map[int]*connection)
	s.lru = lruList{}

	if s.listenFD >= 0 {
		_ = unix.Close(s.listenFD)
		s.listenFD = -1
	}
	if s.epollFD >= 0 {
		_ = unix.Close(s.epollFD)
		s.epollFD = -1
	}
	logger.Info("rpc server stopped")
}
