package kvserver

import (
	"bytes"
	"net"
)

// ============================================================
// Scripted sockets for driving the state machine
// ============================================================

type readStep struct {
	data []byte
	err  error
}

// fakeSocket replays scripted reads and caps each write.
//
// Once the script is exhausted, Read returns ErrWouldBlock. Each entry of
// writeCaps applies to one Write call: 0 would-block, >0 accepts at most that
// many bytes, <0 accepts everything. Without entries Write accepts everything.
type fakeSocket struct {
	reads     []readStep
	writeCaps []int
	writeErr  error

	written bytes.Buffer
	closes  int
}

func newFakeSocket(chunks ...string) *fakeSocket {
	s := &fakeSocket{}
	s.feed(chunks...)
	return s
}

func (s *fakeSocket) feed(chunks ...string) {
	for _, c := range chunks {
		s.reads = append(s.reads, readStep{data: []byte(c)})
	}
}

// finish queues data returned together with err by a single Read.
func (s *fakeSocket) finish(data string, err error) {
	s.reads = append(s.reads, readStep{data: []byte(data), err: err})
}

func (s *fakeSocket) fail(err error) {
	s.reads = append(s.reads, readStep{err: err})
}

func (s *fakeSocket) Read(p []byte) (int, error) {
	if len(s.reads) == 0 {
		return 0, ErrWouldBlock
	}
	step := &s.reads[0]
	n := copy(p, step.data)
	step.data = step.data[n:]
	if len(step.data) > 0 {
		return n, nil
	}
	s.reads = s.reads[1:]
	return n, step.err
}

func (s *fakeSocket) Write(p []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	limit := -1
	if len(s.writeCaps) > 0 {
		limit = s.writeCaps[0]
		s.writeCaps = s.writeCaps[1:]
	}
	switch {
	case limit == 0:
		return 0, ErrWouldBlock
	case limit > 0 && limit < len(p):
		p = p[:limit]
	}
	return s.written.Write(p)
}

func (s *fakeSocket) Close() error {
	s.closes++
	return nil
}

func (s *fakeSocket) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000}
}

// fakeListener hands out queued sockets, then reports would-block.
type fakeListener struct {
	queue  []*fakeSocket
	err    error
	closed bool
}

func (l *fakeListener) Accept() (Socket, error) {
	if l.err != nil {
		return nil, l.err
	}
	if len(l.queue) == 0 {
		return nil, ErrWouldBlock
	}
	s := l.queue[0]
	l.queue = l.queue[1:]
	return s, nil
}

func (l *fakeListener) Close() error {
	l.closed = true
	return nil
}

func (l *fakeListener) Addr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 7379}
}
