package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConnectionStartsReadableOnly(t *testing.T) {
	c := newConnection(3, "127.0.0.1:9000", 4096, 128)
	assert.Equal(t, pollReadable, c.desiredInterest())
	assert.NotEmpty(t, c.id)
}

func TestDesiredInterestReflectsBufferState(t *testing.T) {
	c := newConnection(3, "127.0.0.1:9000", 16, 16)

	// Fully produced inbound (no residual, no start offset) and empty
	// outbound: neither readable (no residual, nothing to compact) nor
	// writable.
	c.in.Produce(c.in.Cap())
	assert.Equal(t, pollMask(0), c.desiredInterest())

	// Consuming some of the inbound creates start > 0, recoverable via
	// compaction, so readable interest returns.
	c.in.Consume(4)
	assert.Equal(t, pollReadable, c.desiredInterest())

	c.out.Produce(5)
	assert.Equal(t, pollReadable|pollWritable, c.desiredInterest())
}
