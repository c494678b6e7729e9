// Package logger provides structured logging for AdminGate.
package logger

import (
	"context"
	"crypto/rand"
	"log/slog"

	"github.com/oklog/ulid/v2"
)

type contextKey string

const connIDKey contextKey = "admingate.conn_id"

// NewConnID mints a ULID identifying one accepted connection across all
// of its log lines and metrics.
func NewConnID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// WithConnID attaches a connection ID to ctx.
func WithConnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, connIDKey, id)
}

// ConnIDFromContext extracts the connection ID, or "" when absent.
func ConnIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(connIDKey).(string); ok {
		return id
	}
	return ""
}

// L enriches log with the connection ID carried by ctx, if any.
func L(ctx context.Context, log *slog.Logger) *slog.Logger {
	if id := ConnIDFromContext(ctx); id != "" {
		return log.With("conn_id", id)
	}
	return log
}
