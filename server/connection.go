package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/dittorpc/internal/buffer"
)

// pollMask mirrors the epoll interest bits this runtime cares about.
type pollMask uint32

const (
	pollReadable pollMask = 1 << iota
	pollWritable
)

// connection is one accepted TCP session (spec component C6): its
// buffered I/O state, LRU linkage, and error flag. Ownership is exclusive
// to the Server that created it.
type connection struct {
	id         string
	fd         int
	remoteAddr string

	in  *buffer.Sliding
	out *buffer.Sliding

	lastActive time.Time
	hasError   bool
	closed     bool

	interest pollMask

	// LRU linkage; nil at either end means "list boundary", not "unset".
	lruPrev *connection
	lruNext *connection
}

func newConnection(fd int, remoteAddr string, maxRequestSize, maxResponseSize int) *connection {
	return &connection{
		id:         uuid.New().String(),
		fd:         fd,
		remoteAddr: remoteAddr,
		in:         buffer.New(2 * maxRequestSize),
		out:        buffer.New(2 * maxResponseSize),
		lastActive: time.Now(),
		interest:   pollReadable,
	}
}

// markActive records the current time as the connection's last activity;
// LRU re-linking is performed by the owning lruList.
func (c *connection) markActive(now time.Time) {
	c.lastActive = now
}

// desiredInterest derives the poll interest mask purely from buffer state
// (spec §4.5): readable iff the inbound buffer has residual space or room
// recoverable by compaction, writable iff the outbound buffer has
// unflushed bytes.
func (c *connection) desiredInterest() pollMask {
	var mask pollMask
	if c.in.ResidualSize() > 0 || c.in.Start() > 0 {
		mask |= pollReadable
	}
	if c.out.DataSize() > 0 {
		mask |= pollWritable
	}
	return mask
}
