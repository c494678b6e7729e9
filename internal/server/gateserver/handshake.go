package gateserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/tehnewb/admingate/internal/core/domain"
	"github.com/tehnewb/admingate/internal/telemetry/logger"
	"github.com/tehnewb/admingate/internal/telemetry/metric"
	"github.com/tehnewb/admingate/pkg/wire"
)

// serveConn runs one connection through its lifecycle: key exchange,
// credential verification, then command dispatch until the peer
// disconnects or violates the protocol.
func (s *Server) serveConn(ctx context.Context, c net.Conn) {
	connID := logger.NewConnID()
	ctx = logger.WithConnID(ctx, connID)
	log := logger.L(ctx, s.logger).With("remote", c.RemoteAddr().String())

	s.metrics.ConnectionsTotal.Inc()
	s.metrics.ActiveConnections.Inc()
	defer s.metrics.ActiveConnections.Dec()

	s.conns.Set(connID, c)
	defer s.conns.Delete(connID)
	defer c.Close()

	admin, ok := s.handshake(ctx, c, log)
	if !ok {
		return
	}
	// Access lives exactly as long as the connection that earned it.
	// The clear reads admin.Token at close time: when the connection
	// rotates its own token, the dispatcher moves admin.Token to the
	// new value so the surviving record is the one cleared.
	defer func() { s.registry.ClearAccess(admin.Token) }()

	log = log.With("username", admin.Username)
	log.Info("administrator authorized")
	s.metrics.Handshakes.WithLabelValues(metric.ResultAuthorized).Inc()
	s.metrics.Administrators.Set(float64(s.registry.Count()))

	s.dispatchLoop(ctx, c, admin, log)
	s.metrics.Administrators.Set(float64(s.registry.Count()))
}

// handshake generates the connection's key pair, sends the public key,
// and waits for a sealed credential frame. It returns the authorized
// record, or ok=false after closing conditions: timeout,
// malformed-frame budget exhausted, unknown token, or username
// mismatch.
func (s *Server) handshake(ctx context.Context, c net.Conn, log *slog.Logger) (*domain.Administrator, bool) {
	session, err := s.provider.NewSession()
	if err != nil {
		log.Error("key generation failed", "error", err)
		return nil, false
	}

	deadline := time.Now().Add(s.cfg.HandshakeTimeout)

	// The key frame has its own write bound, capped by the handshake
	// deadline so the whole exchange still finishes inside it.
	writeDeadline := deadline
	if s.cfg.WriteTimeout > 0 {
		if d := time.Now().Add(s.cfg.WriteTimeout); d.Before(writeDeadline) {
			writeDeadline = d
		}
	}
	if err := c.SetWriteDeadline(writeDeadline); err != nil {
		return nil, false
	}
	if err := WriteFrame(c, session.PublicKeyDER(), s.cfg.MaxFrameSize); err != nil {
		log.Debug("public key send failed", "error", err)
		return nil, false
	}

	malformed := 0
	for {
		if err := c.SetReadDeadline(deadline); err != nil {
			return nil, false
		}
		frame, err := ReadFrame(c, s.cfg.MaxFrameSize)
		if err != nil {
			s.logHandshakeReadError(log, err)
			return nil, false
		}
		if frame == nil {
			// Zero-length frame; not a credential attempt.
			continue
		}

		// One decode attempt per frame while unauthorized.
		plaintext, err := session.Open(frame)
		if err != nil {
			malformed++
			s.metrics.Handshakes.WithLabelValues(metric.ResultMalformed).Inc()
			log.Warn("credential frame failed to decrypt",
				"attempt", malformed, "limit", s.cfg.MaxMalformed)
			if malformed >= s.cfg.MaxMalformed {
				return nil, false
			}
			continue
		}

		buf := wire.Wrap(plaintext)
		tok, err := buf.ReadString()
		if err != nil {
			malformed = s.countTruncated(log, malformed)
			if malformed >= s.cfg.MaxMalformed {
				return nil, false
			}
			continue
		}
		username, err := buf.ReadString()
		if err != nil {
			malformed = s.countTruncated(log, malformed)
			if malformed >= s.cfg.MaxMalformed {
				return nil, false
			}
			continue
		}

		admin, err := s.registry.Authorize(tok, username)
		switch {
		case errors.Is(err, domain.ErrUnknownToken):
			s.metrics.Handshakes.WithLabelValues(metric.ResultUnknownTok).Inc()
			log.Warn("attempted breach: unknown token presented")
			return nil, false
		case errors.Is(err, domain.ErrUsernameMismatch):
			s.metrics.Handshakes.WithLabelValues(metric.ResultUserMism).Inc()
			log.Warn("possible breach or missing packet information: username mismatch",
				"username", username)
			return nil, false
		case err != nil:
			log.Error("authorization failed", "error", err)
			return nil, false
		}
		return admin, true
	}
}

// countTruncated records a decrypted-but-truncated credential payload.
// The connection stays open awaiting a complete frame until the
// malformed budget runs out.
func (s *Server) countTruncated(log *slog.Logger, malformed int) int {
	malformed++
	s.metrics.Handshakes.WithLabelValues(metric.ResultMalformed).Inc()
	log.Debug("truncated credential payload discarded",
		"attempt", malformed, "limit", s.cfg.MaxMalformed)
	return malformed
}

func (s *Server) logHandshakeReadError(log *slog.Logger, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		log.Debug("peer closed during handshake")
	case errors.As(err, &netErr) && netErr.Timeout():
		s.metrics.Handshakes.WithLabelValues(metric.ResultTimeout).Inc()
		log.Warn("handshake timed out")
	case errors.Is(err, domain.ErrFrameTooLarge):
		log.Warn("oversized handshake frame", "error", err)
	default:
		log.Debug("handshake read failed", "error", err)
	}
}

// dispatchLoop reads authorized frames and routes them through the
// opcode table until the connection ends. Waiting for a frame to start
// is bounded by IdleTimeout; once the length prefix arrives, the body
// must finish inside ReadTimeout.
func (s *Server) dispatchLoop(ctx context.Context, c net.Conn, admin *domain.Administrator, log *slog.Logger) {
	for {
		frame, err := s.readAuthorizedFrame(c)
		if err != nil {
			var netErr net.Error
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
				log.Debug("connection closed")
			case errors.As(err, &netErr) && netErr.Timeout():
				log.Debug("connection idle timeout")
			case errors.Is(err, domain.ErrFrameTooLarge):
				log.Warn("oversized frame, closing", "error", err)
			default:
				log.Debug("read failed", "error", err)
			}
			return
		}
		if frame == nil {
			continue
		}
		s.dispatch.Dispatch(ctx, admin, frame)
	}
}

// readAuthorizedFrame reads one frame with the post-handshake
// deadlines applied to each phase.
func (s *Server) readAuthorizedFrame(c net.Conn) ([]byte, error) {
	if err := c.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
		return nil, err
	}
	n, err := readFrameLen(c, s.cfg.MaxFrameSize)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if s.cfg.ReadTimeout > 0 {
		if err := c.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			return nil, err
		}
	}
	return readFrameBody(c, n)
}
