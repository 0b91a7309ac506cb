package server

import (
	"github.com/marmos91/dittorpc/internal/registry"
	"github.com/marmos91/dittorpc/internal/wire"
)

// handleRequest consumes exactly one framed request from c's inbound
// buffer and produces at most one framed reply into c's outbound buffer
// (spec §4.5's HandleRequest). When the result cannot be encoded, no reply
// is written and the connection is only marked errored. It returns false
// when no progress could be made — the call header itself is incomplete,
// the outbound buffer lacks room for a reply header, or the resolved
// procedure needs more argument bytes than are currently buffered — in
// which case the caller must stop the pipelined drain loop and retry on
// the next readable event.
func (s *Server) handleRequest(c *connection) bool {
	data := c.in.Data()
	if len(data) < wire.CallHeaderSize {
		return false
	}

	header, ok := wire.ParseCallHeader(data)
	if !ok {
		return false
	}

	if !header.IsNullAuth() || header.RPCVersion != wire.RPCVersion {
		c.in.Consume(wire.CallHeaderSize)
		s.writeBadCred(c, header.XID)
		c.hasError = true
		s.recordDispatch("bad_cred")
		return true
	}

	args := data[wire.CallHeaderSize:]
	out := c.out.Residual()
	if len(out) < wire.AcceptedHeaderSize {
		return false
	}

	consumed, produced, status := s.registry.Dispatch(header.Program, header.Procedure, args, out[wire.AcceptedHeaderSize:])

	switch status {
	case registry.NeedMoreArgs:
		return false

	case registry.ProgramMismatch:
		c.in.Consume(wire.CallHeaderSize)
		s.writeProgMismatch(c, header.XID)
		c.hasError = true
		s.recordDispatch("prog_mismatch")
		return true

	case registry.GarbageArgs:
		c.in.Consume(wire.CallHeaderSize + consumed)
		s.writeGarbageArgs(c, header.XID)
		c.hasError = true
		s.recordDispatch("garbage_args")
		return true

	case registry.InternalError:
		c.in.Consume(wire.CallHeaderSize + consumed)
		c.hasError = true
		s.recordDispatch("internal_error")
		return true

	default: // registry.Success
		n, ok := wire.PutAccepted(out, header.XID, wire.AcceptSuccess)
		if !ok {
			c.hasError = true
			s.recordDispatch("internal_error")
			return true
		}
		c.in.Consume(wire.CallHeaderSize + consumed)
		c.out.Produce(n + produced)
		s.recordDispatch("success")
		return true
	}
}

// recordDispatch reports one dispatch outcome if a metrics recorder is
// configured; the server runs without one by default (spec §9's metrics
// are opt-in).
func (s *Server) recordDispatch(status string) {
	if s.metrics != nil {
		s.metrics.RecordDispatch(status)
	}
}

func (s *Server) writeBadCred(c *connection, xid uint32) {
	if n, ok := wire.PutBadCred(c.out.Residual(), xid); ok {
		c.out.Produce(n)
	}
}

func (s *Server) writeProgMismatch(c *connection, xid uint32) {
	if n, ok := wire.PutProgMismatch(c.out.Residual(), xid); ok {
		c.out.Produce(n)
	}
}

func (s *Server) writeGarbageArgs(c *connection, xid uint32) {
	if n, ok := wire.PutGarbageArgs(c.out.Residual(), xid); ok {
		c.out.Produce(n)
	}
}
