package runtime

import (
	"chat-relay/domain"
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errConnClosed = stderrors.New("connection closed")

// pipeConn is an in-memory client connection.
// The test plays the peer: it pushes frames in and reads what the session wrote.
type pipeConn struct {
	frames    chan domain.Frame
	readErrs  chan error
	written   chan string
	writeErr  error
	closed    chan struct{}
	closeOnce sync.Once
	closes    atomic.Int32
}

func newPipeConn() *pipeConn {
	return &pipeConn{
		frames:   make(chan domain.Frame, 16),
		readErrs: make(chan error, 1),
		written:  make(chan string, 256),
		closed:   make(chan struct{}),
	}
}

func (c *pipeConn) ReadFrame(ctx context.Context) (domain.Frame, error) {
	select {
	case <-c.closed:
		return domain.Frame{}, errConnClosed
	case err := <-c.readErrs:
		return domain.Frame{}, err
	case frame := <-c.frames:
		return frame, nil
	}
}

func (c *pipeConn) WriteText(ctx context.Context, payload string) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	select {
	case <-c.closed:
		return errConnClosed
	case <-ctx.Done():
		return ctx.Err()
	case c.written <- payload:
		return nil
	}
}

func (c *pipeConn) Close() error {
	c.closes.Add(1)
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *pipeConn) send(body string) {
	c.frames <- domain.TextFrame(body)
}

// receive returns the next frame written by the session, decoded.
func (c *pipeConn) receive(t *testing.T) domain.Envelope {
	t.Helper()
	select {
	case frame := <-c.written:
		envelope, err := domain.DecodeFrame(frame)
		require.NoError(t, err)
		return envelope
	case <-time.After(time.Second):
		require.Fail(t, "nothing written to the connection")
		return domain.Envelope{}
	}
}
