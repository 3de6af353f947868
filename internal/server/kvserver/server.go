package kvserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/levkk/kvstore/internal/storage/memory"
)

// Defaults for Config.
const (
	DefaultAddress        = "127.0.0.1:7379"
	DefaultTickInterval   = time.Millisecond
	DefaultReadBufferSize = 4096
	DefaultMaxRequestSize = 64 << 10
)

// Config holds the key-value server configuration.
type Config struct {
	// Address is the TCP listen address.
	Address string
	// TickInterval is the pause between two ticks.
	TickInterval time.Duration
	// IdleTimeout closes connections waiting for a request longer than this.
	// Zero disables idle eviction.
	IdleTimeout time.Duration
	// ReadBufferSize is the size of a single read.
	ReadBufferSize int
	// MaxRequestSize bounds a request line. Zero disables the check.
	MaxRequestSize int
	// RateLimit is the maximum number of commands per second per connection.
	// Zero disables rate limiting.
	RateLimit float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:        DefaultAddress,
		TickInterval:   DefaultTickInterval,
		ReadBufferSize: DefaultReadBufferSize,
		MaxRequestSize: DefaultMaxRequestSize,
	}
}

// Server runs the single-threaded tick loop.
type Server struct {
	cfg     *Config
	handler *CommandHandler
	logger  *slog.Logger
	metrics Metrics

	mu    sync.Mutex
	addr  net.Addr
	ready atomic.Bool
}

// New creates a new server over store.
func New(cfg *Config, store *memory.Store, logger *slog.Logger, metrics Metrics) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &Server{
		cfg:     cfg,
		handler: NewCommandHandler(store, logger, metrics),
		logger:  logger,
		metrics: metrics,
	}
}

// Run binds the configured address and serves until ctx is cancelled.
// It returns nil on cancellation and the listener error otherwise.
func (s *Server) Run(ctx context.Context) error {
	ln, err := Listen(s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the tick loop on ln and closes ln before returning.
func (s *Server) Serve(ctx context.Context, ln Listener) error {
	defer func() {
		s.ready.Store(false)
		if err := ln.Close(); err != nil {
			s.logger.Debug("close listener", "error", err)
		}
	}()

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	mgr := NewManager(ln, s.handler, *s.cfg, s.logger, s.metrics)
	defer mgr.CloseAll(CloseReasonShutdown)

	interval := s.cfg.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("kv server listening", "address", ln.Addr().String())
	s.ready.Store(true)

	for {
		now := time.Now()
		if _, err := mgr.AcceptReady(now); err != nil {
			s.logger.Error("listener failed", "error", err)
			return err
		}
		mgr.ServiceTick(now)

		select {
		case <-ctx.Done():
			s.logger.Info("kv server stopping", "connections", mgr.Len())
			return nil
		case <-ticker.C:
		}
	}
}

// Addr returns the bound address, or nil before Serve starts.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Ready reports whether the tick loop is accepting connections.
func (s *Server) Ready() bool {
	return s.ready.Load()
}
