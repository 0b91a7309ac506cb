package server

import (
	"testing"

	"github.com/marmos91/dittorpc/internal/codec"
	"github.com/marmos91/dittorpc/internal/registry"
	"github.com/marmos91/dittorpc/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hashStub struct{}

func (h *hashStub) DoHash(x int32) int32 {
	return int32((int64(x) * 2654435761) % 2147483647)
}

func newTestServer(t *testing.T) (*Server, *connection) {
	t.Helper()
	reg := registry.NewRegistry()
	svc := registry.NewService(1)
	_, err := svc.ExportMethod((&hashStub{}).DoHash)
	require.NoError(t, err)
	require.NoError(t, reg.AddService(1, svc))

	s := New(Config{MaxRequestSize: 4096, MaxResponseSize: 128}, reg, nil)
	conn := newConnection(-1, "test", 4096, 128)
	return s, conn
}

func injectCall(t *testing.T, conn *connection, program, procedure uint32, argEncoder func([]byte) int) {
	t.Helper()
	buf := conn.in.Residual()
	n, ok := wire.PutCallHeader(buf, wire.CallHeader{
		XID: 1, MsgType: wire.MsgTypeCall, RPCVersion: wire.RPCVersion,
		Program: program, Version: 0, Procedure: procedure,
		CredFlavor: wire.AuthNull, CredLength: 0, VerfFlavor: wire.AuthNull, VerfLength: 0,
	})
	require.True(t, ok)
	conn.in.Produce(n)
	if argEncoder != nil {
		argLen := argEncoder(conn.in.Residual())
		conn.in.Produce(argLen)
	}
}

func TestHandleRequestSuccess(t *testing.T) {
	s, conn := newTestServer(t)
	injectCall(t, conn, 1, 0, func(buf []byte) int {
		n, _ := codec.Encode(buf, int32(1998))
		return n
	})

	progressed := s.handleRequest(conn)
	require.True(t, progressed)
	assert.False(t, conn.hasError)

	extra, ok := wire.ParseAcceptedExtra(conn.out.Data()[wire.ReplyHeaderSize:])
	require.True(t, ok)
	assert.Equal(t, wire.AcceptSuccess, extra.AcceptStat)

	result, _, status := codec.Decode[int32](conn.out.Data()[wire.AcceptedHeaderSize:])
	require.Equal(t, codec.StatusOK, status)
	assert.Equal(t, int32(1425526035), result)

	assert.Equal(t, 0, conn.in.DataSize())
}

func TestHandleRequestUnknownProgramIsProgMismatch(t *testing.T) {
	s, conn := newTestServer(t)
	injectCall(t, conn, 99, 0, nil)

	progressed := s.handleRequest(conn)
	require.True(t, progressed)
	assert.True(t, conn.hasError)

	extra, ok := wire.ParseAcceptedExtra(conn.out.Data()[wire.ReplyHeaderSize:])
	require.True(t, ok)
	assert.Equal(t, wire.AcceptProgMismatch, extra.AcceptStat)
}

func TestHandleRequestBadAuthSetsError(t *testing.T) {
	s, conn := newTestServer(t)
	buf := conn.in.Residual()
	n, ok := wire.PutCallHeader(buf, wire.CallHeader{
		XID: 1, MsgType: wire.MsgTypeCall, RPCVersion: wire.RPCVersion,
		Program: 1, Procedure: 0,
		CredFlavor: 1, CredLength: 0, VerfFlavor: wire.AuthNull, VerfLength: 0,
	})
	require.True(t, ok)
	conn.in.Produce(n)

	progressed := s.handleRequest(conn)
	require.True(t, progressed)
	assert.True(t, conn.hasError)

	prefix, ok := wire.ParseReplyPrefix(conn.out.Data())
	require.True(t, ok)
	assert.Equal(t, wire.ReplyDenied, prefix.ReplyStat)
}

func TestHandleRequestNeedsMoreArgsMakesNoProgress(t *testing.T) {
	s, conn := newTestServer(t)
	injectCall(t, conn, 1, 0, func(buf []byte) int {
		buf[0] = 0xAB // only 1 of 4 bytes an int32 needs
		return 1
	})

	progressed := s.handleRequest(conn)
	assert.False(t, progressed)
	assert.False(t, conn.hasError)
	assert.Equal(t, wire.CallHeaderSize+1, conn.in.DataSize())
}

func TestHandleRequestIncompleteHeaderMakesNoProgress(t *testing.T) {
	s, conn := newTestServer(t)
	conn.in.Produce(10) // fewer than CallHeaderSize bytes
	progressed := s.handleRequest(conn)
	assert.False(t, progressed)
}
