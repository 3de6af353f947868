package kvserver

import (
	"errors"
	"net"
)

// ErrWouldBlock reports that a non-blocking operation could make no progress
// right now. It is not a failure; the caller retries on a later tick.
var ErrWouldBlock = errors.New("kvserver: operation would block")

// ErrUnsupportedPlatform is returned by Listen where raw non-blocking sockets
// are unavailable.
var ErrUnsupportedPlatform = errors.New("kvserver: non-blocking sockets are not supported on this platform")

// Socket is a non-blocking stream connection.
//
// Read returns (0, ErrWouldBlock) when no data is ready and io.EOF once the
// peer has closed; bytes returned alongside io.EOF are still processed. Write
// may accept fewer bytes than offered and returns (0, ErrWouldBlock) when the
// send buffer is full.
type Socket interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	RemoteAddr() net.Addr
}

// Listener accepts Sockets without blocking.
//
// Accept returns (nil, ErrWouldBlock) when no connection is pending; any
// other error means the listener is unusable.
type Listener interface {
	Accept() (Socket, error)
	Close() error
	Addr() net.Addr
}
