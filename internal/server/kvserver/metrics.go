package kvserver

import "time"

// Close reasons reported to Metrics and logs.
const (
	CloseReasonEOF      = "eof"
	CloseReasonIOError  = "io_error"
	CloseReasonIdle     = "idle"
	CloseReasonQuit     = "quit"
	CloseReasonLimit    = "limit"
	CloseReasonShutdown = "shutdown"
)

// Command results reported to Metrics.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultRejected = "rejected"
)

// Metrics receives server events. Implementations are called from the tick
// loop goroutine and must not block.
type Metrics interface {
	ConnectionOpened()
	ConnectionClosed(reason string)
	CommandProcessed(op, result string, d time.Duration)
	BytesRead(n int)
	BytesWritten(n int)
}

type nopMetrics struct{}

func (nopMetrics) ConnectionOpened() {}
func (nopMetrics) ConnectionClosed(string) {}
func (nopMetrics) CommandProcessed(string, string, time.Duration) {}
func (nopMetrics) BytesRead(int) {}
func (nopMetrics) BytesWritten(int) {}
