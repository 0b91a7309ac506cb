package logger

import (
	"log/slog"
)

// Standard field keys for structured logging, kept consistent across every
// log statement so aggregation/querying on these keys stays reliable.
const (
	// Distributed tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// RPC call identity
	KeyXID         = "xid"          // transaction ID from the call header
	KeyInstanceID  = "instance_id"  // registered service instance (program number)
	KeyProcedureID = "procedure_id" // procedure number within the service
	KeyAcceptStat  = "accept_stat"  // MSG_ACCEPTED accept_stat
	KeyRejectStat  = "reject_stat"  // MSG_DENIED reject_stat
	KeyAuthStat    = "auth_stat"    // AUTH_ERROR auth_stat

	// Connection / transport
	KeyConnectionID = "connection_id"
	KeyClientAddr   = "client_addr"
	KeyBytesRead    = "bytes_read"
	KeyBytesWritten = "bytes_written"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
)

// TraceID returns a slog.Attr for an OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for an OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// XID returns a slog.Attr for a call's transaction ID.
func XID(xid uint32) slog.Attr {
	return slog.Uint64(KeyXID, uint64(xid))
}

// InstanceID returns a slog.Attr for a registered service instance number.
func InstanceID(id uint32) slog.Attr {
	return slog.Uint64(KeyInstanceID, uint64(id))
}

// ProcedureID returns a slog.Attr for a procedure number.
func ProcedureID(id uint32) slog.Attr {
	return slog.Uint64(KeyProcedureID, uint64(id))
}

// AcceptStat returns a slog.Attr for a MSG_ACCEPTED accept_stat value.
func AcceptStat(stat uint32) slog.Attr {
	return slog.Uint64(KeyAcceptStat, uint64(stat))
}

// RejectStat returns a slog.Attr for a MSG_DENIED reject_stat value.
func RejectStat(stat uint32) slog.Attr {
	return slog.Uint64(KeyRejectStat, uint64(stat))
}

// AuthStat returns a slog.Attr for an AUTH_ERROR auth_stat value.
func AuthStat(stat uint32) slog.Attr {
	return slog.Uint64(KeyAuthStat, uint64(stat))
}

// ConnectionID returns a slog.Attr for a connection identifier.
func ConnectionID(id string) slog.Attr {
	return slog.String(KeyConnectionID, id)
}

// ClientAddr returns a slog.Attr for a client's remote address.
func ClientAddr(addr string) slog.Attr {
	return slog.String(KeyClientAddr, addr)
}

// BytesRead returns a slog.Attr for bytes read off a connection.
func BytesRead(n int) slog.Attr {
	return slog.Int(KeyBytesRead, n)
}

// BytesWritten returns a slog.Attr for bytes written to a connection.
func BytesWritten(n int) slog.Attr {
	return slog.Int(KeyBytesWritten, n)
}

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error, or a zero Attr for a nil error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code.
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}
