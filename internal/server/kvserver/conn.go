package kvserver

import (
	"bytes"
	"errors"
	"io"
	"net"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/levkk/kvstore/internal/core/domain"
)

// State is the position of a connection in its request/reply cycle.
type State uint8

const (
	// StateAwaitingRequest reads until a complete line is buffered.
	StateAwaitingRequest State = iota
	// StateAwaitingDispatch executes the first buffered line.
	StateAwaitingDispatch
	// StateAwaitingFlush writes the pending reply.
	StateAwaitingFlush
	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingRequest:
		return "awaiting_request"
	case StateAwaitingDispatch:
		return "awaiting_dispatch"
	case StateAwaitingFlush:
		return "awaiting_flush"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn is one client connection driven by the tick loop.
//
// A Conn is not safe for concurrent use. The inbound buffer holds only bytes
// not yet consumed by a dispatched request; the outbound buffer holds only
// the reply not yet flushed, with written marking the flushed prefix.
type Conn struct {
	id      ulid.ULID
	sock    Socket
	handler *CommandHandler
	metrics Metrics
	limiter *rate.Limiter

	in      []byte
	scanned int // prefix of in known to contain no delimiter
	out     []byte
	written int
	readBuf []byte

	maxRequestSize int

	state           State
	lastActive      time.Time
	closeAfterFlush bool
	closeReason     string
	peerClosed      bool
	released        bool
}

func newConn(id ulid.ULID, sock Socket, handler *CommandHandler, cfg Config, metrics Metrics, now time.Time) *Conn {
	c := &Conn{
		id:             id,
		sock:           sock,
		handler:        handler,
		metrics:        metrics,
		readBuf:        make([]byte, cfg.ReadBufferSize),
		maxRequestSize: cfg.MaxRequestSize,
		state:          StateAwaitingRequest,
		lastActive:     now,
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// ID returns the connection identifier.
func (c *Conn) ID() ulid.ULID {
	return c.id
}

// State returns the current state.
func (c *Conn) State() State {
	return c.state
}

// LastActive returns the time of the last byte read or written.
func (c *Conn) LastActive() time.Time {
	return c.lastActive
}

// CloseReason returns why the connection closed, or "" while it is open.
func (c *Conn) CloseReason() string {
	if c.state != StateClosed {
		return ""
	}
	return c.closeReason
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.sock.RemoteAddr()
}

// Step performs one non-blocking state transition and returns the new state.
func (c *Conn) Step(now time.Time) State {
	switch c.state {
	case StateAwaitingRequest:
		c.readRequest(now)
	case StateAwaitingDispatch:
		c.dispatch(now)
	case StateAwaitingFlush:
		c.flush(now)
	}
	return c.state
}

func (c *Conn) readRequest(now time.Time) {
	// Pipelined lines left over from an earlier read need no more input.
	if c.complete() {
		c.state = StateAwaitingDispatch
		return
	}

	n, err := c.sock.Read(c.readBuf)
	if n > 0 {
		c.in = append(c.in, c.readBuf[:n]...)
		c.lastActive = now
		c.metrics.BytesRead(n)
	}
	switch {
	case errors.Is(err, ErrWouldBlock):
		return
	case errors.Is(err, io.EOF), err == nil && n == 0:
		// Complete lines that arrived with the EOF are still answered.
		if c.complete() {
			c.peerClosed = true
			c.state = StateAwaitingDispatch
			return
		}
		c.terminate(CloseReasonEOF)
		return
	case err != nil:
		c.terminate(CloseReasonIOError)
		return
	}

	if c.complete() {
		c.state = StateAwaitingDispatch
		return
	}
	if c.maxRequestSize > 0 && len(c.in) > c.maxRequestSize {
		c.reject(domain.ErrRequestTooLarge.WithDetails(
			"no delimiter within limit"), CloseReasonLimit)
	}
}

// complete reports whether in holds a full line, scanning only bytes not
// examined by an earlier call.
func (c *Conn) complete() bool {
	if IsComplete(c.in[c.scanned:]) {
		return true
	}
	c.scanned = len(c.in)
	return false
}

func (c *Conn) dispatch(now time.Time) {
	i := bytes.IndexByte(c.in[c.scanned:], Delimiter)
	if i < 0 {
		c.state = StateAwaitingRequest
		return
	}
	end := c.scanned + i
	line := c.in[:end]

	var reply Reply
	req, err := Decode(line)
	switch {
	case c.limiter != nil && !c.limiter.AllowN(now, 1):
		// req.Op is OpInvalid when the line did not decode.
		reply = c.handler.Reject(req.Op, domain.ErrRateLimited)
		req = Request{}
	case err != nil:
		reply = c.handler.Invalid(err)
	default:
		reply = c.handler.Run(req)
	}

	c.out = AppendReply(c.out[:0], reply)
	c.written = 0

	// Bytes after the delimiter belong to the next request.
	c.in = append(c.in[:0], c.in[end+1:]...)
	c.scanned = 0

	if req.Op == OpQuit {
		c.closeAfterFlush = true
		c.closeReason = CloseReasonQuit
	}
	c.state = StateAwaitingFlush
}

// reject queues an error reply, discards buffered input and closes the
// connection once the reply is flushed.
func (c *Conn) reject(err error, reason string) {
	c.out = AppendReply(c.out[:0], ErrorReply(err))
	c.written = 0
	c.in = c.in[:0]
	c.scanned = 0
	c.closeAfterFlush = true
	c.closeReason = reason
	c.state = StateAwaitingFlush
}

func (c *Conn) flush(now time.Time) {
	if c.written < len(c.out) {
		n, err := c.sock.Write(c.out[c.written:])
		if n > 0 {
			c.written += n
			c.lastActive = now
			c.metrics.BytesWritten(n)
		}
		if err != nil {
			if !errors.Is(err, ErrWouldBlock) {
				c.terminate(CloseReasonIOError)
			}
			return
		}
		if c.written < len(c.out) {
			return
		}
	}

	c.out = c.out[:0]
	c.written = 0

	if c.closeAfterFlush {
		c.terminate(c.closeReason)
		return
	}
	if c.complete() {
		c.state = StateAwaitingDispatch
		return
	}
	if c.peerClosed {
		c.terminate(CloseReasonEOF)
		return
	}
	c.state = StateAwaitingRequest
}

// terminate moves the connection to StateClosed. The socket stays open until
// release so the manager can reap every closed connection after its pass.
func (c *Conn) terminate(reason string) {
	if c.state == StateClosed {
		return
	}
	c.state = StateClosed
	c.closeReason = reason
}

// release closes the socket exactly once and drops the buffers.
func (c *Conn) release() error {
	if c.released {
		return nil
	}
	c.released = true
	c.in, c.out, c.readBuf = nil, nil, nil
	return c.sock.Close()
}
