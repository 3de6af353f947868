package kvserver

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// Manager owns the listener and the live connections.
//
// All methods must be called from the single tick loop goroutine.
type Manager struct {
	ln      Listener
	handler *CommandHandler
	cfg     Config
	logger  *slog.Logger
	metrics Metrics

	conns   map[ulid.ULID]*Conn
	order   []ulid.ULID // accept order
	pending []ulid.ULID // closed during the current pass
}

// NewManager creates a manager for ln.
func NewManager(ln Listener, handler *CommandHandler, cfg Config, logger *slog.Logger, metrics Metrics) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = DefaultReadBufferSize
	}

	return &Manager{
		ln:      ln,
		handler: handler,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		conns:   make(map[ulid.ULID]*Conn),
	}
}

// AcceptReady makes one non-blocking accept attempt. It reports whether a
// connection was registered. A non-nil error means the listener is broken.
func (m *Manager) AcceptReady(now time.Time) (bool, error) {
	sock, err := m.ln.Accept()
	if err != nil {
		if errors.Is(err, ErrWouldBlock) {
			return false, nil
		}
		return false, fmt.Errorf("accept: %w", err)
	}

	c := newConn(ulid.Make(), sock, m.handler, m.cfg, m.metrics, now)
	m.conns[c.id] = c
	m.order = append(m.order, c.id)
	m.metrics.ConnectionOpened()

	m.logger.Debug("connection accepted",
		"conn_id", c.id.String(),
		"remote_addr", addrString(sock))

	return true, nil
}

// ServiceTick advances every live connection by one step, then reaps the
// connections that reached StateClosed during the pass.
func (m *Manager) ServiceTick(now time.Time) {
	for _, id := range m.order {
		c := m.conns[id]
		if c.Step(now) == StateClosed {
			m.pending = append(m.pending, id)
			continue
		}
		if m.cfg.IdleTimeout > 0 && c.state == StateAwaitingRequest &&
			now.Sub(c.lastActive) > m.cfg.IdleTimeout {
			c.terminate(CloseReasonIdle)
			m.pending = append(m.pending, id)
		}
	}
	m.reap()
}

// CloseAll closes every live connection with reason.
func (m *Manager) CloseAll(reason string) {
	for _, id := range m.order {
		m.conns[id].terminate(reason)
		m.pending = append(m.pending, id)
	}
	m.reap()
}

// reap removes the pending connections. It runs after iteration so removals
// never disturb entries still to be visited.
func (m *Manager) reap() {
	if len(m.pending) == 0 {
		return
	}

	for _, id := range m.pending {
		c, ok := m.conns[id]
		if !ok {
			continue
		}
		if err := c.release(); err != nil {
			m.logger.Debug("close connection", "conn_id", id.String(), "error", err)
		}
		delete(m.conns, id)
		m.metrics.ConnectionClosed(c.closeReason)
		m.logger.Debug("connection closed",
			"conn_id", id.String(),
			"reason", c.closeReason)
	}

	live := m.order[:0]
	for _, id := range m.order {
		if _, ok := m.conns[id]; ok {
			live = append(live, id)
		}
	}
	clear(m.order[len(live):])
	m.order = live
	m.pending = m.pending[:0]
}

// Len returns the number of live connections.
func (m *Manager) Len() int {
	return len(m.conns)
}

// Conn returns the live connection with id.
func (m *Manager) Conn(id ulid.ULID) (*Conn, bool) {
	c, ok := m.conns[id]
	return c, ok
}

// IDs returns the live connection identifiers in accept order.
func (m *Manager) IDs() []ulid.ULID {
	return append([]ulid.ULID(nil), m.order...)
}

func addrString(sock Socket) string {
	if a := sock.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}
