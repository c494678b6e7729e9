package client

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/tehnewb/admingate/internal/core/domain"
	"github.com/tehnewb/admingate/internal/server/gateserver"
	"github.com/tehnewb/admingate/pkg/crypto/keyseal"
	"github.com/tehnewb/admingate/pkg/wire"
)

// Options configures a Client.
type Options struct {
	// Addr is the server address.
	Addr string
	// Token and Username are the credentials presented during the
	// handshake.
	Token    string
	Username string
	// DialTimeout bounds connection establishment. Zero means 10s.
	DialTimeout time.Duration
	// FrameTimeout bounds individual frame reads and writes. Zero
	// means 10s.
	FrameTimeout time.Duration
	// MaxFrameSize caps inbound frames. Zero means 64 KiB.
	MaxFrameSize int
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func (o *Options) fill() {
	if o.DialTimeout == 0 {
		o.DialTimeout = 10 * time.Second
	}
	if o.FrameTimeout == 0 {
		o.FrameTimeout = 10 * time.Second
	}
	if o.MaxFrameSize == 0 {
		o.MaxFrameSize = 64 * 1024
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Client is an authenticated connection to the gate server.
type Client struct {
	opts   Options
	conn   net.Conn
	logger *slog.Logger
	closed atomic.Bool
}

// Dial connects and completes the credential handshake. Malformed key
// material from the server fails fast with domain.ErrBadPublicKey; the
// server never acknowledges credentials, so a returned client may
// still be closed asynchronously if they were rejected.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	opts.fill()

	d := net.Dialer{Timeout: opts.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.Addr, err)
	}

	c := &Client{opts: opts, conn: conn, logger: opts.Logger}
	if err := c.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) handshake() error {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.opts.FrameTimeout)); err != nil {
		return err
	}
	der, err := gateserver.ReadFrame(c.conn, c.opts.MaxFrameSize)
	if err != nil {
		return domain.ErrHandshake.WithDetails("public key frame").WithCause(err)
	}
	pub, err := keyseal.ParsePublicKey(der)
	if err != nil {
		return domain.ErrBadPublicKey.WithCause(err)
	}

	buf := wire.NewBuffer()
	if err := buf.WriteString(c.opts.Token); err != nil {
		return domain.ErrHandshake.WithCause(err)
	}
	if err := buf.WriteString(c.opts.Username); err != nil {
		return domain.ErrHandshake.WithCause(err)
	}
	sealed, err := keyseal.Seal(pub, buf.Bytes())
	if err != nil {
		return domain.ErrHandshake.WithDetails("seal credentials").WithCause(err)
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.FrameTimeout)); err != nil {
		return err
	}
	if err := gateserver.WriteFrame(c.conn, sealed, c.opts.MaxFrameSize); err != nil {
		return domain.ErrHandshake.WithDetails("send credentials").WithCause(err)
	}
	return nil
}

// Close ends the connection. Safe to call more than once.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}

// send writes one opcode frame. Commands are fire-and-forget; the
// server reports nothing back by design.
func (c *Client) send(payload []byte) error {
	if c.closed.Load() {
		return net.ErrClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.FrameTimeout)); err != nil {
		return err
	}
	return gateserver.WriteFrame(c.conn, payload, c.opts.MaxFrameSize)
}

// AddAdmin asks the server to create an administrator record for
// username. The generated token is distributed out of band; it is
// never returned over this channel.
func (c *Client) AddAdmin(username string) error {
	buf := wire.NewBuffer()
	buf.WriteUint8(gateserver.OpAdminChange)
	buf.WriteUint8(gateserver.SubAddAdmin)
	if err := buf.WriteString(username); err != nil {
		return err
	}
	return c.send(buf.Bytes())
}

// RemoveAdmin asks the server to delete the record under token when
// its username matches.
func (c *Client) RemoveAdmin(username, token string) error {
	buf := wire.NewBuffer()
	buf.WriteUint8(gateserver.OpAdminChange)
	buf.WriteUint8(gateserver.SubRemoveAdmin)
	if err := buf.WriteString(username); err != nil {
		return err
	}
	if err := buf.WriteString(token); err != nil {
		return err
	}
	return c.send(buf.Bytes())
}

// RotateToken asks the server to re-key the record under token.
func (c *Client) RotateToken(username, token string) error {
	buf := wire.NewBuffer()
	buf.WriteUint8(gateserver.OpAdminChange)
	buf.WriteUint8(gateserver.SubChangeToken)
	if err := buf.WriteString(username); err != nil {
		return err
	}
	if err := buf.WriteString(token); err != nil {
		return err
	}
	return c.send(buf.Bytes())
}
