//go:build unix

package kvserver

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Listen binds a non-blocking TCP listener on addr.
//
// The runtime already puts the descriptor in non-blocking mode; accept(2),
// read(2) and write(2) are issued directly through syscall.RawConn so a call
// never parks the goroutine on the network poller.
func Listen(addr string) (Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	tl, ok := ln.(*net.TCPListener)
	if !ok {
		_ = ln.Close()
		return nil, fmt.Errorf("listen %s: unexpected listener type %T", addr, ln)
	}
	raw, err := tl.SyscallConn()
	if err != nil {
		_ = tl.Close()
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return &tcpListener{ln: tl, raw: raw}, nil
}

type tcpListener struct {
	ln  *net.TCPListener
	raw syscall.RawConn
}

func (l *tcpListener) Accept() (Socket, error) {
	var (
		nfd   int
		opErr error
	)
	// Listener raw conns only support Control.
	if err := l.raw.Control(func(fd uintptr) {
		nfd, _, opErr = unix.Accept(int(fd))
	}); err != nil {
		return nil, err
	}
	if opErr != nil {
		// A peer that reset before we got to it is not a listener failure.
		if wouldBlock(opErr) || errors.Is(opErr, unix.ECONNABORTED) {
			return nil, ErrWouldBlock
		}
		return nil, os.NewSyscallError("accept", opErr)
	}
	unix.CloseOnExec(nfd)

	// FileConn duplicates the descriptor and registers the copy with the
	// runtime in non-blocking mode; the original is closed here.
	f := os.NewFile(uintptr(nfd), "kvserver-conn")
	c, err := net.FileConn(f)
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("accept: %w", err)
	}
	tc, ok := c.(*net.TCPConn)
	if !ok {
		_ = c.Close()
		return nil, fmt.Errorf("accept: unexpected conn type %T", c)
	}
	sock, err := newTCPSocket(tc)
	if err != nil {
		return nil, fmt.Errorf("accept: %w", err)
	}
	return sock, nil
}

func (l *tcpListener) Close() error {
	return l.ln.Close()
}

func (l *tcpListener) Addr() net.Addr {
	return l.ln.Addr()
}

type tcpSocket struct {
	conn *net.TCPConn
	raw  syscall.RawConn
}

func newTCPSocket(c *net.TCPConn) (*tcpSocket, error) {
	raw, err := c.SyscallConn()
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return &tcpSocket{conn: c, raw: raw}, nil
}

func (s *tcpSocket) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var (
		n     int
		opErr error
	)
	if err := s.raw.Read(func(fd uintptr) bool {
		n, opErr = unix.Read(int(fd), p)
		return true
	}); err != nil {
		return 0, err
	}
	if opErr != nil {
		if wouldBlock(opErr) {
			return 0, ErrWouldBlock
		}
		return 0, os.NewSyscallError("read", opErr)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (s *tcpSocket) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var (
		n     int
		opErr error
	)
	if err := s.raw.Write(func(fd uintptr) bool {
		n, opErr = unix.Write(int(fd), p)
		return true
	}); err != nil {
		return 0, err
	}
	if opErr != nil {
		if wouldBlock(opErr) {
			return 0, ErrWouldBlock
		}
		return 0, os.NewSyscallError("write", opErr)
	}
	return n, nil
}

func (s *tcpSocket) Close() error {
	return s.conn.Close()
}

func (s *tcpSocket) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func wouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR)
}
