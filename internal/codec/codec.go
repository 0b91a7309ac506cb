// Package codec implements the wire encoding for primitive values and
// length-prefixed strings used by the RPC argument/result payloads.
//
// Primitive values are encoded as a raw, bit-identical copy of their
// in-memory representation in host byte order — no network-order
// byte-swapping is performed, matching the reference implementation's
// use of memcpy rather than a portable wire format. Strings use a
// Pascal-style one-byte length prefix.
package codec

import (
	"encoding/binary"
	"math"
)

// DecodeStatus reports the outcome of a decode attempt.
type DecodeStatus int

const (
	// StatusOK means a full value was consumed.
	StatusOK DecodeStatus = iota
	// StatusNeedMore means the buffer did not hold enough bytes yet; non-fatal.
	StatusNeedMore
	// StatusMalformed means the input can never become valid; fatal for the stream.
	StatusMalformed
)

// MaxStringLength is the largest string payload representable by the
// Pascal-style length prefix (a single unsigned byte).
const MaxStringLength = 255

// Primitive enumerates the value types the codec knows how to lay out on
// the wire as a fixed-size, bit-identical copy.
type Primitive interface {
	bool | int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

// Size returns the on-wire size in bytes of T.
func Size[T Primitive]() int {
	var v T
	return sizeOf(v)
}

func sizeOf(v any) int {
	switch v.(type) {
	case bool, int8, uint8:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32, float32:
		return 4
	case int64, uint64, float64:
		return 8
	default:
		return 0
	}
}

// Encode writes v into buf in host byte order. It reports the number of
// bytes written and whether buf had enough residual capacity. A false
// return leaves buf's first Size[T]() bytes unspecified.
func Encode[T Primitive](buf []byte, v T) (int, bool) {
	n := sizeOf(v)
	if len(buf) < n {
		return 0, false
	}
	switch x := any(v).(type) {
	case bool:
		if x {
			buf[0] = 1
		} else {
			buf[0] = 0
		}
	case int8:
		buf[0] = byte(x)
	case uint8:
		buf[0] = x
	case int16:
		binary.NativeEndian.PutUint16(buf, uint16(x))
	case uint16:
		binary.NativeEndian.PutUint16(buf, x)
	case int32:
		binary.NativeEndian.PutUint32(buf, uint32(x))
	case uint32:
		binary.NativeEndian.PutUint32(buf, x)
	case float32:
		binary.NativeEndian.PutUint32(buf, math.Float32bits(x))
	case int64:
		binary.NativeEndian.PutUint64(buf, uint64(x))
	case uint64:
		binary.NativeEndian.PutUint64(buf, x)
	case float64:
		binary.NativeEndian.PutUint64(buf, math.Float64bits(x))
	}
	return n, true
}

// Decode reads a T out of the front of buf. StatusNeedMore means the
// caller should retain buf and retry once more bytes arrive; primitive
// types never fail with StatusMalformed since every bit pattern of fixed
// width is a valid value.
func Decode[T Primitive](buf []byte) (T, int, DecodeStatus) {
	var zero T
	n := sizeOf(zero)
	if len(buf) < n {
		return zero, 0, StatusNeedMore
	}

	var out any
	switch any(zero).(type) {
	case bool:
		out = buf[0] != 0
	case int8:
		out = int8(buf[0])
	case uint8:
		out = buf[0]
	case int16:
		out = int16(binary.NativeEndian.Uint16(buf))
	case uint16:
		out = binary.NativeEndian.Uint16(buf)
	case int32:
		out = int32(binary.NativeEndian.Uint32(buf))
	case uint32:
		out = binary.NativeEndian.Uint32(buf)
	case float32:
		out = math.Float32frombits(binary.NativeEndian.Uint32(buf))
	case int64:
		out = int64(binary.NativeEndian.Uint64(buf))
	case uint64:
		out = binary.NativeEndian.Uint64(buf)
	case float64:
		out = math.Float64frombits(binary.NativeEndian.Uint64(buf))
	}
	return out.(T), n, StatusOK
}

// EncodeString writes a Pascal-style length-prefixed string: one byte of
// length followed by the payload. Strings longer than MaxStringLength
// cannot be represented and report ok=false.
func EncodeString(buf []byte, s string) (int, bool) {
	if len(s) > MaxStringLength {
		return 0, false
	}
	n := 1 + len(s)
	if len(buf) < n {
		return 0, false
	}
	buf[0] = byte(len(s))
	copy(buf[1:n], s)
	return n, true
}

// DecodeString reads a Pascal-style length-prefixed string from the front
// of buf.
func DecodeString(buf []byte) (string, int, DecodeStatus) {
	if len(buf) < 1 {
		return "", 0, StatusNeedMore
	}
	l := int(buf[0])
	n := 1 + l
	if len(buf) < n {
		return "", 0, StatusNeedMore
	}
	return string(buf[1:n]), n, StatusOK
}
