package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallHeaderRoundtrip(t *testing.T) {
	h := CallHeader{
		XID:        0xDEADBEEF,
		MsgType:    MsgTypeCall,
		RPCVersion: RPCVersion,
		Program:    100017,
		Version:    1,
		Procedure:  3,
		CredFlavor: AuthNull,
		CredLength: 0,
		VerfFlavor: AuthNull,
		VerfLength: 0,
	}

	buf := make([]byte, CallHeaderSize)
	n, ok := PutCallHeader(buf, h)
	require.True(t, ok)
	assert.Equal(t, CallHeaderSize, n)

	got, ok := ParseCallHeader(buf)
	require.True(t, ok)
	assert.Equal(t, h, got)
	assert.True(t, got.IsNullAuth())
}

func TestCallHeaderRejectsShortBuffer(t *testing.T) {
	_, ok := PutCallHeader(make([]byte, CallHeaderSize-1), CallHeader{})
	assert.False(t, ok)

	_, ok = ParseCallHeader(make([]byte, CallHeaderSize-1))
	assert.False(t, ok)
}

func TestIsNullAuthRejectsNonNullCredentials(t *testing.T) {
	h := CallHeader{MsgType: MsgTypeCall, CredFlavor: 1, CredLength: 0, VerfFlavor: AuthNull, VerfLength: 0}
	assert.False(t, h.IsNullAuth())
}

func TestPutAcceptedSuccess(t *testing.T) {
	buf := make([]byte, AcceptedHeaderSize)
	n, ok := PutAccepted(buf, 42, AcceptSuccess)
	require.True(t, ok)
	assert.Equal(t, 24, n)

	prefix, ok := ParseReplyPrefix(buf)
	require.True(t, ok)
	assert.Equal(t, uint32(42), prefix.XID)
	assert.Equal(t, MsgTypeReply, prefix.MsgType)
	assert.Equal(t, ReplyAccepted, prefix.ReplyStat)

	extra, ok := ParseAcceptedExtra(buf[ReplyHeaderSize:])
	require.True(t, ok)
	assert.Equal(t, AuthNull, extra.VerfFlavor)
	assert.Equal(t, uint32(0), extra.VerfLength)
	assert.Equal(t, AcceptSuccess, extra.AcceptStat)
}

func TestPutAcceptedRejectsShortBuffer(t *testing.T) {
	_, ok := PutAccepted(make([]byte, AcceptedHeaderSize-1), 1, AcceptSuccess)
	assert.False(t, ok)
}

func TestPutProgMismatch(t *testing.T) {
	buf := make([]byte, AcceptedHeaderSize+MismatchExtraSize)
	n, ok := PutProgMismatch(buf, 7)
	require.True(t, ok)
	assert.Equal(t, 32, n)

	extra, ok := ParseAcceptedExtra(buf[ReplyHeaderSize:])
	require.True(t, ok)
	assert.Equal(t, AcceptProgMismatch, extra.AcceptStat)

	low := buf[24:28]
	high := buf[28:32]
	assert.Equal(t, []byte{0, 0, 0, 0}, low)
	assert.Equal(t, []byte{0, 0, 0, 0}, high)
}

func TestPutProgMismatchRejectsShortBuffer(t *testing.T) {
	_, ok := PutProgMismatch(make([]byte, AcceptedHeaderSize+MismatchExtraSize-1), 1)
	assert.False(t, ok)
}

func TestPutGarbageArgs(t *testing.T) {
	buf := make([]byte, AcceptedHeaderSize)
	n, ok := PutGarbageArgs(buf, 9)
	require.True(t, ok)
	assert.Equal(t, 24, n)

	extra, ok := ParseAcceptedExtra(buf[ReplyHeaderSize:])
	require.True(t, ok)
	assert.Equal(t, AcceptGarbageArgs, extra.AcceptStat)
}

func TestPutBadCred(t *testing.T) {
	buf := make([]byte, DeniedHeaderSize)
	n, ok := PutBadCred(buf, 3)
	require.True(t, ok)
	assert.Equal(t, 20, n)

	prefix, ok := ParseReplyPrefix(buf)
	require.True(t, ok)
	assert.Equal(t, ReplyDenied, prefix.ReplyStat)

	rejectStat := buf[12:16]
	authStat := buf[16:20]
	assert.Equal(t, RejectAuthError, bytesToUint32(rejectStat))
	assert.Equal(t, AuthBadCred, bytesToUint32(authStat))
}

func TestPutBadCredRejectsShortBuffer(t *testing.T) {
	_, ok := PutBadCred(make([]byte, DeniedHeaderSize-1), 1)
	assert.False(t, ok)
}

func bytesToUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
