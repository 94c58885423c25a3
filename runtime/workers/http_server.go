package workers

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

const readHeaderTimeout = 10 * time.Second

// HTTPServerWorker serves the relay until its context is canceled.
// Requests, and the sessions they carry, derive their context from Run's ctx,
// so canceling it also ends hijacked WebSocket sessions.
type HTTPServerWorker struct {
	log             *slog.Logger
	addr            string
	handler         http.Handler
	shutdownTimeout time.Duration
	bound           atomic.Value
}

func NewHTTPServerWorker(log *slog.Logger, addr string, handler http.Handler, shutdownTimeout time.Duration) *HTTPServerWorker {
	return &HTTPServerWorker{log: log, addr: addr, handler: handler, shutdownTimeout: shutdownTimeout}
}

// Addr is the bound address once Run is listening, empty before.
func (w *HTTPServerWorker) Addr() string {
	addr, _ := w.bound.Load().(string)
	return addr
}

func (w *HTTPServerWorker) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", w.addr)
	if err != nil {
		return err
	}
	w.bound.Store(listener.Addr().String())

	server := &http.Server{
		Handler:           w.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		w.log.Info("HTTP server listening", "addr", listener.Addr().String())
		errChan <- server.Serve(listener)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			w.log.Warn("HTTP server shutdown incomplete", "error", err)
		}
		if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		w.log.Info("HTTP server stopped")
		return nil
	}
}
