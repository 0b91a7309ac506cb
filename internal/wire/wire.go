// Package wire builds and parses the ONC/SunRPC-style call and reply
// headers. All multi-byte fields here are big-endian, independent of the
// host-order choice made by internal/codec for argument/result payloads —
// the two encodings serve different layers of the protocol.
package wire

import "encoding/binary"

const (
	// MsgTypeCall identifies a CALL message.
	MsgTypeCall uint32 = 0
	// MsgTypeReply identifies a REPLY message.
	MsgTypeReply uint32 = 1

	// RPCVersion is the only supported RPC protocol version.
	RPCVersion uint32 = 2

	// AuthNull is the only supported credential/verifier flavor.
	AuthNull uint32 = 0

	// ReplyAccepted is reply_stat == 0 (MSG_ACCEPTED).
	ReplyAccepted uint32 = 0
	// ReplyDenied is reply_stat == 1 (MSG_DENIED).
	ReplyDenied uint32 = 1

	// AcceptSuccess is accept_stat == 0.
	AcceptSuccess uint32 = 0
	// AcceptProgMismatch is accept_stat == 2.
	AcceptProgMismatch uint32 = 2
	// AcceptGarbageArgs is accept_stat == 4.
	AcceptGarbageArgs uint32 = 4

	// RejectAuthError is reject_stat == 1 (MSG_DENIED/AUTH_ERROR).
	RejectAuthError uint32 = 1
	// AuthBadCred is auth_stat == 2 (AUTH_ERROR/BADCRED).
	AuthBadCred uint32 = 2
)

// CallHeaderSize is the fixed size of a call header in bytes.
const CallHeaderSize = 40

// CallHeader is the 40-byte null-auth-only call header described in spec
// §4.2, laid out exactly as the reference implementation's SunRpcCallBody.
type CallHeader struct {
	XID         uint32
	MsgType     uint32
	RPCVersion  uint32
	Program     uint32
	Version     uint32
	Procedure   uint32
	CredFlavor  uint32
	CredLength  uint32
	VerfFlavor  uint32
	VerfLength  uint32
}

// PutCallHeader writes a CallHeader into buf, which must have at least
// CallHeaderSize bytes of residual capacity.
func PutCallHeader(buf []byte, h CallHeader) (int, bool) {
	if len(buf) < CallHeaderSize {
		return 0, false
	}
	binary.BigEndian.PutUint32(buf[0:4], h.XID)
	binary.BigEndian.PutUint32(buf[4:8], h.MsgType)
	binary.BigEndian.PutUint32(buf[8:12], h.RPCVersion)
	binary.BigEndian.PutUint32(buf[12:16], h.Program)
	binary.BigEndian.PutUint32(buf[16:20], h.Version)
	binary.BigEndian.PutUint32(buf[20:24], h.Procedure)
	binary.BigEndian.PutUint32(buf[24:28], h.CredFlavor)
	binary.BigEndian.PutUint32(buf[28:32], h.CredLength)
	binary.BigEndian.PutUint32(buf[32:36], h.VerfFlavor)
	binary.BigEndian.PutUint32(buf[36:40], h.VerfLength)
	return CallHeaderSize, true
}

// ParseCallHeader reads a CallHeader from the front of buf. ok=false means
// fewer than CallHeaderSize bytes were available; the caller should retain
// buf and retry.
func ParseCallHeader(buf []byte) (CallHeader, bool) {
	if len(buf) < CallHeaderSize {
		return CallHeader{}, false
	}
	return CallHeader{
		XID:        binary.BigEndian.Uint32(buf[0:4]),
		MsgType:    binary.BigEndian.Uint32(buf[4:8]),
		RPCVersion: binary.BigEndian.Uint32(buf[8:12]),
		Program:    binary.BigEndian.Uint32(buf[12:16]),
		Version:    binary.BigEndian.Uint32(buf[16:20]),
		Procedure:  binary.BigEndian.Uint32(buf[20:24]),
		CredFlavor: binary.BigEndian.Uint32(buf[24:28]),
		CredLength: binary.BigEndian.Uint32(buf[28:32]),
		VerfFlavor: binary.BigEndian.Uint32(buf[32:36]),
		VerfLength: binary.BigEndian.Uint32(buf[36:40]),
	}, true
}

// IsNullAuth reports whether a parsed CallHeader uses AUTH_NULL with no
// credential/verifier bytes, the only flavor this runtime accepts.
func (h CallHeader) IsNullAuth() bool {
	return h.MsgType == MsgTypeCall &&
		h.CredFlavor == AuthNull && h.CredLength == 0 &&
		h.VerfFlavor == AuthNull && h.VerfLength == 0
}

// ReplyHeaderSize is the size of the common reply prefix (xid, msg_type,
// reply_stat).
const ReplyHeaderSize = 12

// AcceptedHeaderSize is the size of a MSG_ACCEPTED reply up to and
// including accept_stat: 12 (xid/msg_type/reply_stat) + 8 (verifier
// flavor/length) + 4 (accept_stat).
const AcceptedHeaderSize = 24

// DeniedHeaderSize is the size of a MSG_DENIED/AUTH_ERROR/BADCRED reply:
// 12 (xid/msg_type/reply_stat) + 4 (reject_stat) + 4 (auth_stat).
const DeniedHeaderSize = 20

// MismatchExtraSize is the size of the low/high version range that
// follows a PROG_MISMATCH accept_stat.
const MismatchExtraSize = 8

// putReplyPrefix writes the shared xid/msg_type=REPLY/reply_stat prefix.
func putReplyPrefix(buf []byte, xid uint32, replyStat uint32) {
	binary.BigEndian.PutUint32(buf[0:4], xid)
	binary.BigEndian.PutUint32(buf[4:8], MsgTypeReply)
	binary.BigEndian.PutUint32(buf[8:12], replyStat)
}

// PutAccepted writes a full MSG_ACCEPTED reply header (null verifier +
// accept_stat) into buf. The result payload, if any, follows immediately
// for AcceptSuccess.
func PutAccepted(buf []byte, xid uint32, acceptStat uint32) (int, bool) {
	if len(buf) < AcceptedHeaderSize {
		return 0, false
	}
	putReplyPrefix(buf, xid, ReplyAccepted)
	binary.BigEndian.PutUint32(buf[12:16], AuthNull) // verifier flavor
	binary.BigEndian.PutUint32(buf[16:20], 0)         // verifier length
	binary.BigEndian.PutUint32(buf[20:24], acceptStat)
	return AcceptedHeaderSize, true
}

// PutProgMismatch writes a MSG_ACCEPTED/PROG_MISMATCH reply with lo=hi=0
// into buf.
func PutProgMismatch(buf []byte, xid uint32) (int, bool) {
	if len(buf) < AcceptedHeaderSize+MismatchExtraSize {
		return 0, false
	}
	n, _ := PutAccepted(buf, xid, AcceptProgMismatch)
	binary.BigEndian.PutUint32(buf[n:n+4], 0)   // low
	binary.BigEndian.PutUint32(buf[n+4:n+8], 0) // high
	return n + MismatchExtraSize, true
}

// PutGarbageArgs writes a MSG_ACCEPTED/GARBAGE_ARGS reply into buf.
func PutGarbageArgs(buf []byte, xid uint32) (int, bool) {
	return PutAccepted(buf, xid, AcceptGarbageArgs)
}

// PutBadCred writes a MSG_DENIED/AUTH_ERROR/BADCRED reply into buf.
func PutBadCred(buf []byte, xid uint32) (int, bool) {
	if len(buf) < DeniedHeaderSize {
		return 0, false
	}
	putReplyPrefix(buf, xid, ReplyDenied)
	binary.BigEndian.PutUint32(buf[12:16], RejectAuthError)
	binary.BigEndian.PutUint32(buf[16:20], AuthBadCred)
	return DeniedHeaderSize, true
}

// ReplyPrefix is the parsed common reply prefix (xid, msg_type, reply_stat).
type ReplyPrefix struct {
	XID       uint32
	MsgType   uint32
	ReplyStat uint32
}

// ParseReplyPrefix reads the 12-byte generic reply header.
func ParseReplyPrefix(buf []byte) (ReplyPrefix, bool) {
	if len(buf) < ReplyHeaderSize {
		return ReplyPrefix{}, false
	}
	return ReplyPrefix{
		XID:       binary.BigEndian.Uint32(buf[0:4]),
		MsgType:   binary.BigEndian.Uint32(buf[4:8]),
		ReplyStat: binary.BigEndian.Uint32(buf[8:12]),
	}, true
}

// AcceptedExtra is the parsed verifier + accept_stat portion of a
// MSG_ACCEPTED reply (bytes 12..24 of the full reply).
type AcceptedExtra struct {
	VerfFlavor uint32
	VerfLength uint32
	AcceptStat uint32
}

// ParseAcceptedExtra reads the verifier/accept_stat fields that follow the
// generic reply prefix for a MSG_ACCEPTED reply.
func ParseAcceptedExtra(buf []byte) (AcceptedExtra, bool) {
	if len(buf) < AcceptedHeaderSize-ReplyHeaderSize {
		return AcceptedExtra{}, false
	}
	return AcceptedExtra{
		VerfFlavor: binary.BigEndian.Uint32(buf[0:4]),
		VerfLength: binary.BigEndian.Uint32(buf[4:8]),
		AcceptStat: binary.BigEndian.Uint32(buf[8:12]),
	}, true
}
