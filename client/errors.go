package client

import "errors"

var (
	// ErrPipelineFull names the condition in which Send reports false because
	// MaxPipeline calls are already buffered. Send returns a bool, not this
	// error.
	ErrPipelineFull = errors.New("client: pipeline is at MaxPipeline capacity")
	// ErrArgTooLarge names the condition in which Send reports false because
	// the batch buffer has no room for another call header plus its encoded
	// argument. Send returns a bool, not this error.
	ErrArgTooLarge = errors.New("client: argument does not fit in remaining batch capacity")
	// ErrSticky is returned by Flush once a prior Flush has failed (Send
	// reports false in that state); the client does not attempt to recover
	// a failed connection.
	ErrSticky = errors.New("client: connection is in a sticky error state from a prior flush failure")
	// ErrProtocol is returned by Flush when a reply is malformed, reports a
	// non-success status, or leaves trailing unparsed bytes.
	ErrProtocol = errors.New("client: malformed or unsuccessful reply")
)
