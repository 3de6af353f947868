package kvserver

import (
	"bytes"
	"io"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/levkk/kvstore/internal/storage/memory"
)

var testNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestConn(t *testing.T, sock *fakeSocket, cfg *Config) (*Conn, *memory.Store) {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	store := memory.New()
	handler := NewCommandHandler(store, nil, nil)
	return newConn(ulid.Make(), sock, handler, *cfg, nopMetrics{}, testNow), store
}

// drive steps c n times at a fixed instant.
func drive(c *Conn, n int) {
	for i := 0; i < n; i++ {
		c.Step(testNow)
	}
}

func TestConn_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		requests []string
		want     string
	}{
		{
			name:     "integer set then get",
			requests: []string{"SET foo :42\r", "GET foo\r"},
			want:     ":42\r:42\r",
		},
		{
			name:     "raw string set then get",
			requests: []string{"SET bar hello\r", "GET bar\r"},
			want:     "hello\rhello\r",
		},
		{
			name:     "missing key",
			requests: []string{"GET missing\r"},
			want:     "\r",
		},
		{
			name:     "invalid integer keeps connection usable",
			requests: []string{"SET x :abc\r", "PING\r"},
			want:     "-ERR KV-VAL-4000 value is not a valid unsigned integer: \"abc\"\r\r",
		},
		{
			name:     "unknown operation keeps connection open",
			requests: []string{"BOGUS foo\r", "GET foo\r"},
			want:     "-ERR KV-PROT-4001 unknown operation: \"BOGUS\"\r\r",
		},
		{
			name:     "delete existed then absent",
			requests: []string{"SET k v\r", "DEL k\r", "DEL k\r", "GET k\r"},
			want:     "v\r:1\r:0\r\r",
		},
		{
			name:     "empty line",
			requests: []string{"\r"},
			want:     "-ERR KV-PROT-4000 empty request\r",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sock := newFakeSocket(tt.requests...)
			c, _ := newTestConn(t, sock, nil)

			drive(c, 4*len(tt.requests)+2)

			if got := sock.written.String(); got != tt.want {
				t.Errorf("replies = %q, want %q", got, tt.want)
			}
			if c.State() != StateAwaitingRequest {
				t.Errorf("State() = %v, want %v", c.State(), StateAwaitingRequest)
			}
		})
	}
}

func TestConn_StateTransitions(t *testing.T) {
	sock := newFakeSocket("PING\r")
	c, _ := newTestConn(t, sock, nil)

	want := []State{
		StateAwaitingDispatch,
		StateAwaitingFlush,
		StateAwaitingRequest,
		StateAwaitingRequest, // would-block
	}
	for i, w := range want {
		if got := c.Step(testNow); got != w {
			t.Fatalf("step %d: state = %v, want %v", i, got, w)
		}
	}
}

func TestConn_SplitReads(t *testing.T) {
	whole := newFakeSocket("SET key :99\rGET key\r")
	c1, _ := newTestConn(t, whole, nil)
	drive(c1, 20)

	split := newFakeSocket("SE", "T key", " :9", "9", "\r", "GET key", "\r")
	c2, _ := newTestConn(t, split, nil)
	drive(c2, 40)

	if whole.written.String() != ":99\r:99\r" {
		t.Fatalf("single read replies = %q", whole.written.String())
	}
	if got, want := split.written.String(), whole.written.String(); got != want {
		t.Errorf("split read replies = %q, want %q", got, want)
	}
}

func TestConn_IncrementalScan(t *testing.T) {
	sock := newFakeSocket("GET ", "long")
	c, _ := newTestConn(t, sock, nil)

	drive(c, 2)
	if c.scanned != len("GET long") {
		t.Errorf("scanned = %d, want %d", c.scanned, len("GET long"))
	}
	if c.State() != StateAwaitingRequest {
		t.Errorf("State() = %v, want %v", c.State(), StateAwaitingRequest)
	}

	sock.feed("key\r")
	if got := c.Step(testNow); got != StateAwaitingDispatch {
		t.Fatalf("state = %v, want %v", got, StateAwaitingDispatch)
	}
	drive(c, 2)
	if got := sock.written.String(); got != "\r" {
		t.Errorf("reply = %q, want %q", got, "\r")
	}
}

func TestConn_PartialWrites(t *testing.T) {
	value := strings.Repeat("v", 300)

	full := newFakeSocket("SET big " + value + "\r")
	c1, _ := newTestConn(t, full, nil)
	drive(c1, 5)

	partial := newFakeSocket("SET big " + value + "\r")
	partial.writeCaps = []int{1, 0, 7, 0, 0, 100, 3, 50}
	c2, _ := newTestConn(t, partial, nil)

	flushTicks := 0
	for i := 0; i < 50 && partial.written.Len() < len(value)+1; i++ {
		if c2.Step(testNow) == StateAwaitingFlush {
			flushTicks++
		}
	}

	if !bytes.Equal(partial.written.Bytes(), full.written.Bytes()) {
		t.Fatalf("partial delivery = %d bytes, want %d identical bytes",
			partial.written.Len(), full.written.Len())
	}
	if flushTicks < 2 {
		t.Errorf("flush spanned %d ticks, want several", flushTicks)
	}
	if c2.State() != StateAwaitingRequest {
		t.Errorf("State() = %v, want %v", c2.State(), StateAwaitingRequest)
	}
}

func TestConn_Pipelining(t *testing.T) {
	sock := newFakeSocket("PING\rGET a\rSET a b\rGET a\r")
	c, _ := newTestConn(t, sock, nil)

	drive(c, 16)

	if got, want := sock.written.String(), "\r\rb\rb\r"; got != want {
		t.Errorf("replies = %q, want %q", got, want)
	}
	if len(c.in) != 0 {
		t.Errorf("inbound buffer = %q, want empty", c.in)
	}
}

func TestConn_PreservesBytesAfterDelimiter(t *testing.T) {
	sock := newFakeSocket("PING\rGET pa")
	c, _ := newTestConn(t, sock, nil)

	drive(c, 2) // read, dispatch
	if got := string(c.in); got != "GET pa" {
		t.Errorf("inbound after dispatch = %q, want %q", got, "GET pa")
	}
}

func TestConn_PeerClosed(t *testing.T) {
	tests := []struct {
		name string
		sock func() *fakeSocket
	}{
		{
			name: "zero byte read",
			sock: func() *fakeSocket { return newFakeSocket("") },
		},
		{
			name: "eof",
			sock: func() *fakeSocket {
				s := newFakeSocket()
				s.fail(io.EOF)
				return s
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestConn(t, tt.sock(), nil)
			if got := c.Step(testNow); got != StateClosed {
				t.Fatalf("state = %v, want %v", got, StateClosed)
			}
			if c.CloseReason() != CloseReasonEOF {
				t.Errorf("CloseReason() = %q, want %q", c.CloseReason(), CloseReasonEOF)
			}
		})
	}
}

func TestConn_LinesDeliveredWithEOF(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "single line", data: "PING\r", want: "\r"},
		{name: "pipelined", data: "SET a :1\rGET a\r", want: ":1\r:1\r"},
		{name: "trailing partial line dropped", data: "PING\rGET", want: "\r"},
		{name: "quit wins", data: "QUIT\rPING\r", want: "\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sock := newFakeSocket()
			sock.finish(tt.data, io.EOF)
			c, _ := newTestConn(t, sock, nil)

			drive(c, 10)

			if got := sock.written.String(); got != tt.want {
				t.Errorf("replies = %q, want %q", got, tt.want)
			}
			if c.State() != StateClosed {
				t.Errorf("State() = %v, want %v", c.State(), StateClosed)
			}
		})
	}
}

func TestConn_RateLimitedMetricLabel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 1
	metrics := newRecordingMetrics()
	sock := newFakeSocket("PING\rDEL a\rBOGUS\r")
	c := newConn(ulid.Make(), sock, NewCommandHandler(memory.New(), nil, metrics), *cfg, metrics, testNow)

	drive(c, 9)

	for key, want := range map[string]int{"PING/ok": 1, "DEL/rejected": 1, "INVALID/rejected": 1} {
		if got := metrics.commands[key]; got != want {
			t.Errorf("commands[%q] = %d, want %d", key, got, want)
		}
	}
}

func TestConn_ReadError(t *testing.T) {
	sock := newFakeSocket()
	sock.fail(syscall.ECONNRESET)
	c, _ := newTestConn(t, sock, nil)

	if got := c.Step(testNow); got != StateClosed {
		t.Fatalf("state = %v, want %v", got, StateClosed)
	}
	if c.CloseReason() != CloseReasonIOError {
		t.Errorf("CloseReason() = %q, want %q", c.CloseReason(), CloseReasonIOError)
	}
	if sock.closes != 0 {
		t.Errorf("socket closed %d times before release, want 0", sock.closes)
	}
}

func TestConn_WriteError(t *testing.T) {
	sock := newFakeSocket("PING\r")
	sock.writeErr = syscall.EPIPE
	c, _ := newTestConn(t, sock, nil)

	drive(c, 3)
	if c.State() != StateClosed {
		t.Fatalf("State() = %v, want %v", c.State(), StateClosed)
	}
	if c.CloseReason() != CloseReasonIOError {
		t.Errorf("CloseReason() = %q, want %q", c.CloseReason(), CloseReasonIOError)
	}
}

func TestConn_WouldBlockIsNoop(t *testing.T) {
	sock := newFakeSocket()
	c, _ := newTestConn(t, sock, nil)

	drive(c, 10)
	if c.State() != StateAwaitingRequest {
		t.Errorf("State() = %v, want %v", c.State(), StateAwaitingRequest)
	}
	if !c.LastActive().Equal(testNow) {
		t.Errorf("LastActive() = %v, want %v", c.LastActive(), testNow)
	}
}

func TestConn_RequestTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRequestSize = 8
	sock := newFakeSocket("SET k 0123456789")
	c, _ := newTestConn(t, sock, cfg)

	drive(c, 3)

	want := "-ERR KV-PROT-4130 request too large: no delimiter within limit\r"
	if got := sock.written.String(); got != want {
		t.Errorf("reply = %q, want %q", got, want)
	}
	if c.State() != StateClosed {
		t.Fatalf("State() = %v, want %v", c.State(), StateClosed)
	}
	if c.CloseReason() != CloseReasonLimit {
		t.Errorf("CloseReason() = %q, want %q", c.CloseReason(), CloseReasonLimit)
	}
}

func TestConn_Quit(t *testing.T) {
	sock := newFakeSocket("QUIT\rPING\r")
	c, _ := newTestConn(t, sock, nil)

	drive(c, 6)

	if got := sock.written.String(); got != "\r" {
		t.Errorf("replies = %q, want %q", got, "\r")
	}
	if c.CloseReason() != CloseReasonQuit {
		t.Errorf("CloseReason() = %q, want %q", c.CloseReason(), CloseReasonQuit)
	}
}

func TestConn_QuitWaitsForFlush(t *testing.T) {
	sock := newFakeSocket("QUIT\r")
	sock.writeCaps = []int{0, 0}
	c, _ := newTestConn(t, sock, nil)

	drive(c, 4) // read, dispatch, two blocked flushes
	if c.State() != StateAwaitingFlush {
		t.Fatalf("State() = %v, want %v", c.State(), StateAwaitingFlush)
	}
	if got := c.Step(testNow); got != StateClosed {
		t.Errorf("state after flush = %v, want %v", got, StateClosed)
	}
}

func TestConn_RateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 1
	sock := newFakeSocket("SET a 1\rSET a 2\rGET a\r")
	c, _ := newTestConn(t, sock, cfg)

	drive(c, 12)

	want := "1\r-ERR KV-RATE-4290 rate limit exceeded\r-ERR KV-RATE-4290 rate limit exceeded\r"
	if got := sock.written.String(); got != want {
		t.Errorf("replies = %q, want %q", got, want)
	}
	if c.State() != StateAwaitingRequest {
		t.Errorf("State() = %v, want %v", c.State(), StateAwaitingRequest)
	}

	// A second later the bucket has a token again and the rejected SET did not run.
	sock.feed("GET a\r")
	later := testNow.Add(time.Second)
	for i := 0; i < 4; i++ {
		c.Step(later)
	}
	if got := strings.TrimPrefix(sock.written.String(), want); got != "1\r" {
		t.Errorf("reply after refill = %q, want %q", got, "1\r")
	}
}

func TestConn_ReleaseOnce(t *testing.T) {
	sock := newFakeSocket()
	c, _ := newTestConn(t, sock, nil)
	c.terminate(CloseReasonShutdown)

	if err := c.release(); err != nil {
		t.Fatalf("release() error = %v", err)
	}
	if err := c.release(); err != nil {
		t.Fatalf("second release() error = %v", err)
	}
	if sock.closes != 1 {
		t.Errorf("socket closed %d times, want 1", sock.closes)
	}
}

func TestConn_TerminateKeepsFirstReason(t *testing.T) {
	c, _ := newTestConn(t, newFakeSocket(), nil)
	c.terminate(CloseReasonEOF)
	c.terminate(CloseReasonShutdown)

	if c.CloseReason() != CloseReasonEOF {
		t.Errorf("CloseReason() = %q, want %q", c.CloseReason(), CloseReasonEOF)
	}
}

func TestState_String(t *testing.T) {
	if got := StateAwaitingFlush.String(); got != "awaiting_flush" {
		t.Errorf("String() = %q, want %q", got, "awaiting_flush")
	}
	if got := State(99).String(); got != "unknown" {
		t.Errorf("String() = %q, want %q", got, "unknown")
	}
}
