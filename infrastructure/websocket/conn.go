package websocket

import (
	"chat-relay/domain"
	"context"
	"log/slog"
	"sync"
	"time"

	gows "github.com/gorilla/websocket"
)

const closeGracePeriod = time.Second

type Options struct {
	// MaxMessageSize bounds a single inbound frame. Zero means no limit.
	MaxMessageSize int64
	// PingInterval is how often a ping is sent. The peer has two intervals to answer
	// with any frame before reads fail. Zero disables keepalive.
	PingInterval time.Duration
}

// Conn wraps a gorilla connection into a contract.Conn.
// One goroutine may read while another writes; pings go through WriteControl.
type Conn struct {
	conn      *gows.Conn
	log       *slog.Logger
	options   Options
	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func NewConn(conn *gows.Conn, log *slog.Logger, options Options) *Conn {
	c := &Conn{
		conn:    conn,
		log:     log.With("remote", conn.RemoteAddr().String()),
		options: options,
		done:    make(chan struct{}),
	}

	if options.MaxMessageSize > 0 {
		conn.SetReadLimit(options.MaxMessageSize)
	}
	if options.PingInterval > 0 {
		c.extendReadDeadline()
		conn.SetPongHandler(func(string) error {
			c.extendReadDeadline()
			return nil
		})
		go c.keepalive()
	}
	return c
}

// ReadFrame blocks until the next data or close frame.
// ctx is not observed by gorilla reads; Close unblocks a pending read.
func (c *Conn) ReadFrame(_ context.Context) (domain.Frame, error) {
	messageType, data, err := c.conn.ReadMessage()
	if err != nil {
		if gows.IsCloseError(err, gows.CloseNormalClosure, gows.CloseGoingAway, gows.CloseNoStatusReceived) {
			return domain.CloseFrame(), nil
		}
		return domain.Frame{}, err
	}
	c.extendReadDeadline()

	switch messageType {
	case gows.TextMessage:
		return domain.TextFrame(string(data)), nil
	case gows.BinaryMessage:
		return domain.Frame{Kind: domain.FrameBinary, Payload: string(data)}, nil
	default:
		return domain.Frame{Kind: domain.FrameBinary}, nil
	}
}

// WriteText sends one text frame, bounded by the ctx deadline if any.
func (c *Conn) WriteText(ctx context.Context, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(gows.TextMessage, []byte(payload))
}

// Close says goodbye to the peer and releases the socket. Safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		message := gows.FormatCloseMessage(gows.CloseNormalClosure, "")
		_ = c.conn.WriteControl(gows.CloseMessage, message, time.Now().Add(closeGracePeriod))
		err = c.conn.Close()
	})
	return err
}

func (c *Conn) extendReadDeadline() {
	if c.options.PingInterval <= 0 {
		return
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * c.options.PingInterval))
}

func (c *Conn) keepalive() {
	ticker := time.NewTicker(c.options.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.options.PingInterval)
			if err := c.conn.WriteControl(gows.PingMessage, nil, deadline); err != nil {
				c.log.Debug("Ping failed, closing connection", "error", err)
				_ = c.Close()
				return
			}
		}
	}
}
