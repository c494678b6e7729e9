package gateserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tehnewb/admingate/internal/core/domain"
	"github.com/tehnewb/admingate/internal/core/service"
	"github.com/tehnewb/admingate/internal/telemetry/logger"
	"github.com/tehnewb/admingate/internal/telemetry/metric"
	"github.com/tehnewb/admingate/pkg/token"
	"github.com/tehnewb/admingate/pkg/wire"
)

// Opcodes. The table is built once at startup; there is no dynamic
// handler registration.
const (
	OpAdminChange byte = 0x00
)

// Admin-change subtypes.
const (
	SubAddAdmin    byte = 0
	SubRemoveAdmin byte = 1
	SubChangeToken byte = 2
)

// HandlerFunc processes one authorized frame body. The opcode byte has
// already been consumed from buf. Handlers return errors for logging
// only; nothing is ever reported to the peer.
type HandlerFunc func(ctx context.Context, caller *domain.Administrator, buf *wire.Buffer) error

// Dispatcher routes authorized frames by their leading opcode byte.
type Dispatcher struct {
	handlers [256]HandlerFunc
	registry *service.Registry
	metrics  *metric.Registry
	logger   *slog.Logger
}

// NewDispatcher builds the static opcode table.
func NewDispatcher(reg *service.Registry, metrics *metric.Registry, log *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		metrics:  metrics,
		logger:   log,
	}
	d.handlers[OpAdminChange] = d.handleAdminChange
	return d
}

// Dispatch decodes the opcode and invokes its handler. Unknown opcodes
// and empty frames are silently dropped; the peer learns nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, caller *domain.Administrator, payload []byte) {
	log := logger.L(ctx, d.logger)

	buf := wire.Wrap(payload)
	op, err := buf.ReadUint8()
	if err != nil {
		d.metrics.DroppedFrames.Inc()
		log.Debug("empty frame dropped")
		return
	}

	h := d.handlers[op]
	if h == nil {
		d.metrics.DroppedFrames.Inc()
		log.Debug("unknown opcode dropped", "opcode", op)
		return
	}

	if err := h(ctx, caller, buf); err != nil {
		log.Debug("command failed", "opcode", op, "error", err)
	}
}

// handleAdminChange services opcode 0x00: administrator lifecycle.
// Body: [subtype byte][string username][string token], the token field
// present for remove and change-token. Results are never acknowledged.
func (d *Dispatcher) handleAdminChange(ctx context.Context, caller *domain.Administrator, buf *wire.Buffer) error {
	log := logger.L(ctx, d.logger)

	sub, err := buf.ReadUint8()
	if err != nil {
		d.metrics.DroppedFrames.Inc()
		return domain.ErrFraming.WithDetails("admin change without subtype")
	}
	username, err := buf.ReadString()
	if err != nil {
		d.metrics.DroppedFrames.Inc()
		return domain.ErrFraming.WithDetails("admin change without username")
	}

	switch sub {
	case SubAddAdmin:
		d.metrics.AdminCommands.WithLabelValues("add_admin").Inc()
		tok, err := d.registry.Create(ctx, username)
		if err != nil {
			return err
		}
		// Logged raw under a sensitive key: the logging pipeline masks
		// well-formed tokens down to a short hint before emission.
		log.Info("administrator added",
			"username", username,
			"by", caller.Username,
			"token", tok,
		)
		return nil

	case SubRemoveAdmin:
		d.metrics.AdminCommands.WithLabelValues("remove_admin").Inc()
		tok, err := buf.ReadString()
		if err != nil {
			d.metrics.DroppedFrames.Inc()
			return domain.ErrFraming.WithDetails("remove admin without token")
		}
		if err := d.registry.Remove(ctx, tok, username); err != nil {
			if errors.Is(err, domain.ErrRegistryMiss) {
				log.Debug("remove admin miss", "username", username)
				return nil
			}
			return err
		}
		log.Info("administrator removed", "username", username, "by", caller.Username)
		return nil

	case SubChangeToken:
		d.metrics.AdminCommands.WithLabelValues("change_token").Inc()
		tok, err := buf.ReadString()
		if err != nil {
			d.metrics.DroppedFrames.Inc()
			return domain.ErrFraming.WithDetails("change token without token")
		}
		newTok, err := d.registry.Rotate(ctx, tok, username)
		if err != nil {
			if errors.Is(err, domain.ErrRegistryMiss) {
				log.Debug("change token miss", "username", username)
				return nil
			}
			return err
		}
		// A connection that rotates its own token keeps operating
		// under the new one; the close-time access clear must target
		// the surviving key, not the retired one.
		if token.Equal(tok, caller.Token) {
			caller.Token = newTok
		}
		log.Info("administrator token rotated",
			"username", username,
			"by", caller.Username,
			"token", newTok,
		)
		return nil

	default:
		d.metrics.DroppedFrames.Inc()
		log.Debug("unknown admin change subtype dropped", "subtype", sub)
		return nil
	}
}
