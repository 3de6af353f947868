package connection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Delimiter terminates every request and reply line.
const Delimiter = '\r'

// DefaultTimeout bounds dialing and each request round trip.
const DefaultTimeout = 5 * time.Second

// ErrNotConnected is returned when a request is issued on a closed client.
var ErrNotConnected = errors.New("not connected")

// Client is a line-protocol client for a kvstore server.
type Client struct {
	addr    string
	timeout time.Duration

	conn   net.Conn
	reader *bufio.Reader
}

// NewClient creates a client for addr. A zero timeout uses DefaultTimeout.
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{addr: addr, timeout: timeout}
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Connect dials the server.
func (c *Client) Connect(ctx context.Context) error {
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.addr, err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// Execute sends one request line and returns the reply without its delimiter.
// The client connects on first use.
func (c *Client) Execute(ctx context.Context, line string) (string, error) {
	if strings.ContainsRune(line, Delimiter) {
		return "", fmt.Errorf("request contains a carriage return")
	}
	if c.conn == nil {
		if err := c.Connect(ctx); err != nil {
			return "", err
		}
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return "", err
	}

	if _, err := c.conn.Write([]byte(line + string(Delimiter))); err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}

	reply, err := c.reader.ReadString(Delimiter)
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return strings.TrimSuffix(reply, string(Delimiter)), nil
}
