package gateserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tehnewb/admingate/internal/core/service"
	"github.com/tehnewb/admingate/internal/telemetry/metric"
	"github.com/tehnewb/admingate/pkg/cmap"
	"github.com/tehnewb/admingate/pkg/crypto/keyseal"
)

// Config holds the gate server configuration.
type Config struct {
	// Addr is the TCP bind address.
	Addr string
	// HandshakeTimeout bounds the window between accept and a
	// completed credential exchange.
	HandshakeTimeout time.Duration
	// ReadTimeout bounds reading an authorized frame body once its
	// length prefix has arrived.
	ReadTimeout time.Duration
	// WriteTimeout bounds the public-key frame write.
	WriteTimeout time.Duration
	// IdleTimeout closes authorized connections with no traffic.
	IdleTimeout time.Duration
	// MaxFrameSize caps inbound frame payloads.
	MaxFrameSize int
	// MaxMalformed is how many malformed credential frames a
	// connection may send before it is closed.
	MaxMalformed int
	// RatePerSecond and RateBurst bound per-address connection
	// attempts. Zero disables rate limiting.
	RatePerSecond float64
	RateBurst     int
}

// DefaultConfig returns the default gate server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:             "127.0.0.1:6343",
		HandshakeTimeout: 30 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
		IdleTimeout:      5 * time.Minute,
		MaxFrameSize:     64 * 1024,
		MaxMalformed:     3,
	}
}

// Server is the administrator authentication gateway.
type Server struct {
	cfg      *Config
	registry *service.Registry
	provider keyseal.Provider
	dispatch *Dispatcher
	metrics  *metric.Registry
	logger   *slog.Logger

	limiter *ipLimiter
	conns   *cmap.Map[net.Conn]

	ln      net.Listener
	running atomic.Bool
	wg      sync.WaitGroup
}

// New creates a gate server. The keyseal provider is injected so tests
// can substitute a deterministic implementation.
func New(cfg *Config, reg *service.Registry, provider keyseal.Provider, metrics *metric.Registry, log *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		registry: reg,
		provider: provider,
		dispatch: NewDispatcher(reg, metrics, log),
		metrics:  metrics,
		logger:   log,
		limiter:  newIPLimiter(cfg.RatePerSecond, cfg.RateBurst),
		conns:    cmap.New[net.Conn](),
	}
}

// Start binds the listener and begins accepting connections. It
// returns once the listener is bound; the accept loop runs in the
// background until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.running.Store(true)
	s.logger.Info("gate server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx); err != nil && s.running.Load() {
			s.logger.Error("gate server accept loop failed", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown closes the listener and all live connections, then waits
// for connection goroutines up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil {
			firstErr = err
		}
	}

	s.conns.Range(func(_ string, c net.Conn) bool {
		c.Close()
		return true
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		if !s.limiter.allow(c.RemoteAddr()) {
			s.metrics.Handshakes.WithLabelValues(metric.ResultRateLimited).Inc()
			s.logger.Warn("connection rate limited", "remote", c.RemoteAddr().String())
			c.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, c)
		}()
	}
}
