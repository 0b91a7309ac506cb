package client

import (
	"net"
	"testing"
	"time"

	"github.com/marmos91/dittorpc/internal/codec"
	"github.com/marmos91/dittorpc/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLoopbackServer starts a plain net.Listener standing in for the
// production event-loop server, and returns its port. It accepts a single
// connection and runs handle on it in a separate goroutine.
func newLoopbackServer(t *testing.T, handle func(net.Conn)) int {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		handle(conn)
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func TestSendRejectsBeyondMaxPipeline(t *testing.T) {
	port := newLoopbackServer(t, func(conn net.Conn) { _ = conn.Close() })
	c, err := Connect(Config{Host: "127.0.0.1", Port: port, MaxPipeline: 2})
	require.NoError(t, err)
	defer c.Close()

	r1 := NewResult[int32]()
	r2 := NewResult[int32]()
	r3 := NewResult[int32]()

	assert.True(t, Send(c, 1, 0, int32(1), r1))
	assert.True(t, Send(c, 1, 0, int32(2), r2))
	assert.False(t, Send(c, 1, 0, int32(3), r3))
}

func TestFlushRoundTripPreservesOrder(t *testing.T) {
	const n = 3

	var gotXIDs []uint32
	port := newLoopbackServer(t, func(conn net.Conn) {
		defer conn.Close()
		for i := 0; i < n; i++ {
			argBuf := make([]byte, wire.CallHeaderSize+4)
			_, err := readFull(conn, argBuf)
			if err != nil {
				return
			}
			h, ok := wire.ParseCallHeader(argBuf)
			if !ok {
				return
			}
			gotXIDs = append(gotXIDs, h.XID)
			arg, _, _ := codec.Decode[int32](argBuf[wire.CallHeaderSize:])
			buf := make([]byte, wire.AcceptedHeaderSize+4)
			an, _ := wire.PutAccepted(buf, h.XID, wire.AcceptSuccess)
			am, _ := codec.Encode(buf[an:], arg*2)
			_, _ = conn.Write(buf[:an+am])
		}
	})

	c, err := Connect(Config{Host: "127.0.0.1", Port: port, MaxPipeline: 8})
	require.NoError(t, err)
	defer c.Close()

	results := make([]*Result[int32], n)
	for i := 0; i < n; i++ {
		results[i] = NewResult[int32]()
		require.True(t, Send(c, 1, 0, int32(i+1), results[i]))
	}

	require.NoError(t, c.Flush())

	for i := 0; i < n; i++ {
		require.True(t, results[i].IsReady())
		assert.Equal(t, int32((i+1)*2), results[i].Value())
	}
	assert.Equal(t, []uint32{1, 2, 3}, gotXIDs)
}

func TestFlushWithNoPendingCallsIsNoop(t *testing.T) {
	port := newLoopbackServer(t, func(conn net.Conn) { _ = conn.Close() })
	c, err := Connect(Config{Host: "127.0.0.1", Port: port})
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.Flush())
}

func TestFlushOnProtocolErrorSetsStickyAndFailsSlot(t *testing.T) {
	port := newLoopbackServer(t, func(conn net.Conn) {
		defer conn.Close()
		buf := make([]byte, wire.CallHeaderSize+4)
		_, err := readFull(conn, buf)
		if err != nil {
			return
		}
		// write garbage instead of a valid reply
		_, _ = conn.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
		time.Sleep(50 * time.Millisecond)
		_ = conn.Close()
	})

	c, err := Connect(Config{Host: "127.0.0.1", Port: port})
	require.NoError(t, err)
	defer c.Close()

	r := NewResult[int32]()
	require.True(t, Send(c, 1, 0, int32(42), r))

	err = c.Flush()
	assert.Error(t, err)
	assert.True(t, c.HasError())
	assert.True(t, r.HasError())

	// sticky: a subsequent Send is rejected outright
	r2 := NewResult[int32]()
	assert.False(t, Send(c, 1, 0, int32(1), r2))
}

func TestSendRejectsWhenArgTooLargeForResidualCapacity(t *testing.T) {
	port := newLoopbackServer(t, func(conn net.Conn) { _ = conn.Close() })
	c, err := Connect(Config{Host: "127.0.0.1", Port: port, MaxPipeline: 1, MaxRequestSize: wire.CallHeaderSize + 2})
	require.NoError(t, err)
	defer c.Close()

	r := NewStringResult()
	longArg := make([]byte, 250)
	assert.False(t, SendString(c, 1, 0, string(longArg), r))
}
