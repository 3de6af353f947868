// Package kvserver provides the line-protocol key-value server.
//
// One goroutine multiplexes every client: each tick it attempts one
// non-blocking accept, then advances every live connection by exactly one
// state-machine step, then pauses briefly. Connections that reach the
// terminal state during a tick are reaped after the pass completes.
//
// Wire format (one request per line, terminated by '\r'):
//
//	PING
//	GET <key>
//	SET <key> <value>      value ":<digits>" is an Integer, anything else a RawString
//	DEL <key>
//	QUIT
//
// Replies are one line: the type-prefixed value, an empty line for nil, or
// "-ERR <code> <message>" on failure.
package kvserver
