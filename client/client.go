// Package client implements the batching, pipelined request sender (spec
// component C8): Send accumulates up to MaxPipeline calls without
// blocking, Flush transmits the batch and demultiplexes replies back to
// their pending slots in submission order.
package client

import (
	"errors"
	"fmt"
	"net"

	"github.com/marmos91/dittorpc/internal/codec"
	"github.com/marmos91/dittorpc/internal/logger"
	"github.com/marmos91/dittorpc/internal/wire"
	"golang.org/x/sys/unix"
)

// DefaultMaxPipeline is the maximum number of outstanding calls per
// connection before a Flush (spec §6).
const DefaultMaxPipeline = 8

// Config holds the tunable surface for a Client.
type Config struct {
	Host            string
	Port            int
	MaxPipeline     int
	MaxRequestSize  int
	MaxResponseSize int
}

// ApplyDefaults fills zero-valued fields with the spec's default constants.
func (c *Config) ApplyDefaults() {
	if c.MaxPipeline == 0 {
		c.MaxPipeline = DefaultMaxPipeline
	}
	if c.MaxRequestSize == 0 {
		c.MaxRequestSize = 4096
	}
	if c.MaxResponseSize == 0 {
		c.MaxResponseSize = 128
	}
}

// Client is a single-connection, pipelined RPC sender. It is not safe for
// concurrent use from multiple goroutines (spec §5).
type Client struct {
	config Config
	fd     int

	batch   []byte
	batchSz int
	pending []pendingSlot

	xid      uint32
	hasError bool
}

// Connect creates a TCP connection to host:port and returns a ready Client.
func Connect(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("client: socket: %w", err)
	}

	addr, err := parseIPv4(cfg.Host)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("client: host: %w", err)
	}

	if err := unix.Connect(fd, &unix.SockaddrInet4{Port: cfg.Port, Addr: addr}); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("client: connect: %w", err)
	}

	return &Client{
		config: cfg,
		fd:     fd,
		batch:  make([]byte, cfg.MaxPipeline*cfg.MaxRequestSize),
		xid:    1,
	}, nil
}

// HasError reports whether a prior Flush has put this client into its
// sticky error state. Once true, it never resets.
func (c *Client) HasError() bool { return c.hasError }

// Close releases the underlying socket.
func (c *Client) Close() error {
	return unix.Close(c.fd)
}

// send is the shared implementation behind the typed Send wrappers below.
// encodeArg may be nil for a zero-argument procedure.
func (c *Client) send(instanceID, procedureID uint32, encodeArg func([]byte) (int, bool), slot pendingSlot) bool {
	if c.hasError {
		return false
	}
	if len(c.pending) >= c.config.MaxPipeline {
		return false
	}

	residual := len(c.batch) - c.batchSz
	if residual < wire.CallHeaderSize {
		return false
	}

	argLen := 0
	if encodeArg != nil {
		argBuf := c.batch[c.batchSz+wire.CallHeaderSize:]
		n, ok := encodeArg(argBuf)
		if !ok {
			return false
		}
		argLen = n
	}

	header := wire.CallHeader{
		XID:        c.xid,
		MsgType:    wire.MsgTypeCall,
		RPCVersion: wire.RPCVersion,
		Program:    instanceID,
		Procedure:  procedureID,
		CredFlavor: wire.AuthNull,
		VerfFlavor: wire.AuthNull,
	}
	if _, ok := wire.PutCallHeader(c.batch[c.batchSz:], header); !ok {
		return false
	}

	c.xid++
	c.batchSz += wire.CallHeaderSize + argLen
	c.pending = append(c.pending, slot)
	return true
}

// Send submits a call to a procedure taking one primitive argument.
func Send[T codec.Primitive](c *Client, instanceID, procedureID uint32, arg T, slot pendingSlot) bool {
	return c.send(instanceID, procedureID, func(buf []byte) (int, bool) {
		return codec.Encode(buf, arg)
	}, slot)
}

// SendString submits a call to a procedure taking one string argument.
func SendString(c *Client, instanceID, procedureID uint32, arg string, slot pendingSlot) bool {
	return c.send(instanceID, procedureID, func(buf []byte) (int, bool) {
		return codec.EncodeString(buf, arg)
	}, slot)
}

// SendVoid submits a call to a procedure taking no argument.
func SendVoid(c *Client, instanceID, procedureID uint32, slot pendingSlot) bool {
	return c.send(instanceID, procedureID, nil, slot)
}

// encodeComposite writes each encoder's output to buf in sequence,
// matching spec §3's composite-argument concatenation: no separators,
// decoded in declaration order.
func encodeComposite(buf []byte, encoders ...func([]byte) (int, bool)) (int, bool) {
	total := 0
	for _, enc := range encoders {
		n, ok := enc(buf[total:])
		if !ok {
			return 0, false
		}
		total += n
	}
	return total, true
}

// Send2 submits a call to a procedure taking two primitive arguments
// (e.g. TestSign(int32, uint32)).
func Send2[T1, T2 codec.Primitive](c *Client, instanceID, procedureID uint32, arg1 T1, arg2 T2, slot pendingSlot) bool {
	return c.send(instanceID, procedureID, func(buf []byte) (int, bool) {
		return encodeComposite(buf,
			func(b []byte) (int, bool) { return codec.Encode(b, arg1) },
			func(b []byte) (int, bool) { return codec.Encode(b, arg2) },
		)
	}, slot)
}

// SendStringAnd submits a call to a procedure taking a string followed by
// one primitive argument (e.g. Repeat(string, int32)).
func SendStringAnd[T codec.Primitive](c *Client, instanceID, procedureID uint32, arg1 string, arg2 T, slot pendingSlot) bool {
	return c.send(instanceID, procedureID, func(buf []byte) (int, bool) {
		return encodeComposite(buf,
			func(b []byte) (int, bool) { return codec.EncodeString(b, arg1) },
			func(b []byte) (int, bool) { return codec.Encode(b, arg2) },
		)
	}, slot)
}

// SendString2 submits a call to a procedure taking two string arguments
// (e.g. Put(key, value string)).
func SendString2(c *Client, instanceID, procedureID uint32, arg1, arg2 string, slot pendingSlot) bool {
	return c.send(instanceID, procedureID, func(buf []byte) (int, bool) {
		return encodeComposite(buf,
			func(b []byte) (int, bool) { return codec.EncodeString(b, arg1) },
			func(b []byte) (int, bool) { return codec.EncodeString(b, arg2) },
		)
	}, slot)
}

// Flush transmits every pending call as a single batched write, then
// blocks until every pending slot has received its reply or the batch
// fails (spec §4.6). On any failure the connection is closed, the client
// enters its sticky error state, and every unfilled pending slot is
// marked errored.
func (c *Client) Flush() error {
	if c.hasError {
		return ErrSticky
	}
	if len(c.pending) == 0 {
		return nil
	}

	if err := unix.SetNonblock(c.fd, false); err != nil {
		return c.fail(0, fmt.Errorf("set blocking: %w", err))
	}

	batch := c.batch[:c.batchSz]
	sent := 0
	for sent < len(batch) {
		n, err := unix.Write(c.fd, batch[sent:])
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return c.fail(0, fmt.Errorf("write batch: %w", err))
		}
		sent += n
	}

	if err := unix.SetNonblock(c.fd, true); err != nil {
		return c.fail(0, fmt.Errorf("set non-blocking: %w", err))
	}

	inBuf := make([]byte, c.config.MaxPipeline*c.config.MaxResponseSize)
	insz, instart := 0, 0
	nrReplied := 0

	pfd := []unix.PollFd{{Fd: int32(c.fd), Events: unix.POLLIN}}

	for nrReplied < len(c.pending) {
		_, err := unix.Poll(pfd, -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return c.fail(nrReplied, fmt.Errorf("poll: %w", err))
		}
		if pfd[0].Revents&unix.POLLERR != 0 {
			return c.fail(nrReplied, errors.New("poll returned POLLERR"))
		}
		if pfd[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(c.fd, inBuf[insz:])
		switch {
		case errors.Is(err, unix.EAGAIN):
			// no data available right now; not an error
		case n > 0:
			insz += n
		case n == 0 && err == nil:
			return c.fail(nrReplied, errors.New("connection closed before all replies arrived"))
		default:
			return c.fail(nrReplied, fmt.Errorf("read reply: %w", err))
		}

		for nrReplied < len(c.pending) {
			consumed, status := parseReply(inBuf[instart:insz], c.pending[nrReplied])
			if status == codec.StatusNeedMore {
				break
			}
			if status == codec.StatusMalformed {
				return c.fail(nrReplied, ErrProtocol)
			}
			instart += consumed
			nrReplied++
		}
	}

	if instart < insz {
		logger.Debug("client: trailing garbage after batch", "unparsed_bytes", insz-instart)
		return c.fail(nrReplied, ErrProtocol)
	}

	c.resetBatch()
	return nil
}

// parseReply mirrors the reference implementation's ParseBuffer: it parses
// the generic reply prefix, validates MSG_ACCEPTED/SUCCESS, then hands the
// remaining payload to the slot's decoder.
func parseReply(buf []byte, slot pendingSlot) (int, codec.DecodeStatus) {
	if len(buf) < wire.AcceptedHeaderSize {
		return 0, codec.StatusNeedMore
	}

	prefix, ok := wire.ParseReplyPrefix(buf)
	if !ok {
		return 0, codec.StatusNeedMore
	}
	if prefix.MsgType != wire.MsgTypeReply || prefix.ReplyStat != wire.ReplyAccepted {
		return 0, codec.StatusMalformed
	}

	extra, ok := wire.ParseAcceptedExtra(buf[wire.ReplyHeaderSize:])
	if !ok {
		return 0, codec.StatusNeedMore
	}
	if extra.AcceptStat != wire.AcceptSuccess {
		return 0, codec.StatusMalformed
	}

	consumed, status := slot.decode(buf[wire.AcceptedHeaderSize:])
	if status != codec.StatusOK {
		return 0, status
	}
	return wire.AcceptedHeaderSize + consumed, codec.StatusOK
}

// fail closes the connection, marks the client and every slot from
// nrReplied onward as errored, resets the batch, and returns a wrapped error.
func (c *Client) fail(nrReplied int, err error) error {
	_ = unix.Close(c.fd)
	c.hasError = true
	for i := nrReplied; i < len(c.pending); i++ {
		c.pending[i].fail()
	}
	c.resetBatch()
	return fmt.Errorf("client: flush failed: %w", err)
}

func (c *Client) resetBatch() {
	c.batchSz = 0
	c.pending = nil
}

// parseIPv4 resolves a host string to its 4-byte IPv4 form.
func parseIPv4(host string) ([4]byte, error) {
	ip := net.ParseIP(host)
	if ip == nil {
		resolved, err := net.ResolveIPAddr("ip4", host)
		if err != nil {
			return [4]byte{}, fmt.Errorf("resolve %q: %w", host, err)
		}
		ip = resolved.IP
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return [4]byte{}, fmt.Errorf("address %q is not IPv4", host)
	}
	var out [4]byte
	copy(out[:], ip4)
	return out, nil
}
