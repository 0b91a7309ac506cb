package client

import "github.com/marmos91/dittorpc/internal/codec"

// pendingSlot is the internal decode contract every pending result type
// implements (spec §3's Pending Request Slot): a ready flag, an error
// flag, a storage cell of the declared return type, and a decode routine.
type pendingSlot interface {
	decode(buf []byte) (consumed int, status codec.DecodeStatus)
	fail()
}

// Result is a pending result slot for a handler returning a primitive
// codec type. The zero value is not ready and not in error; after a
// successful Flush, IsReady reports true and Value holds the decoded
// result.
type Result[T codec.Primitive] struct {
	ready bool
	err   bool
	value T
}

// NewResult creates an empty, not-yet-ready result slot for type T.
func NewResult[T codec.Primitive]() *Result[T] { return &Result[T]{} }

// IsReady reports whether Flush has decoded a value into this slot.
func (r *Result[T]) IsReady() bool { return r.ready }

// HasError reports whether this slot's call failed.
func (r *Result[T]) HasError() bool { return r.err }

// Value returns the decoded result. Only meaningful once IsReady is true.
func (r *Result[T]) Value() T { return r.value }

func (r *Result[T]) decode(buf []byte) (int, codec.DecodeStatus) {
	v, n, status := codec.Decode[T](buf)
	if status == codec.StatusOK {
		r.value = v
		r.ready = true
	}
	return n, status
}

func (r *Result[T]) fail() { r.err = true }

// StringResult is a pending result slot for a handler returning a
// length-prefixed string.
type StringResult struct {
	ready bool
	err   bool
	value string
}

// NewStringResult creates an empty, not-yet-ready string result slot.
func NewStringResult() *StringResult { return &StringResult{} }

// IsReady reports whether Flush has decoded a value into this slot.
func (r *StringResult) IsReady() bool { return r.ready }

// HasError reports whether this slot's call failed.
func (r *StringResult) HasError() bool { return r.err }

// Value returns the decoded string. Only meaningful once IsReady is true.
func (r *StringResult) Value() string { return r.value }

func (r *StringResult) decode(buf []byte) (int, codec.DecodeStatus) {
	s, n, status := codec.DecodeString(buf)
	if status == codec.StatusOK {
		r.value = s
		r.ready = true
	}
	return n, status
}

func (r *StringResult) fail() { r.err = true }

// VoidResult is a pending result slot for a handler with no declared
// return value; spec §4.1: "A zero-return handler decodes zero bytes and
// sets its result to a unit value."
type VoidResult struct {
	ready bool
	err   bool
}

// NewVoidResult creates an empty, not-yet-ready void result slot.
func NewVoidResult() *VoidResult { return &VoidResult{} }

// IsReady reports whether Flush has observed this call's reply.
func (r *VoidResult) IsReady() bool { return r.ready }

// HasError reports whether this slot's call failed.
func (r *VoidResult) HasError() bool { return r.err }

func (r *VoidResult) decode([]byte) (int, codec.DecodeStatus) {
	r.ready = true
	return 0, codec.StatusOK
}

func (r *VoidResult) fail() { r.err = true }
