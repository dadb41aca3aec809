// Copyright 2024 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"cloudeng.io/logging/ctxlog"
)

// NewHTTPServer listens on addr and returns an *http.Server for handler
// whose errors are logged via ctxlog. Request contexts carry the values
// of ctx but are not canceled with it, so in-flight requests may complete
// within the grace period allowed by ServeWithShutdown.
func NewHTTPServer(ctx context.Context, addr string, handler http.Handler) (net.Listener, *http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          ctxlog.NewLogLogger(ctx, slog.LevelError),
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}
	return ln, srv, nil
}

// ServeWithShutdown serves requests on ln until ctx is canceled and then
// shuts down the server allowing in-flight requests up to grace to complete.
func ServeWithShutdown(ctx context.Context, ln net.Listener, srv *http.Server, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	ctxlog.Logger(ctx).Info("serving", "addr", srv.Addr)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server %v: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
		ctxlog.Logger(ctx).Info("shutting down", "addr", srv.Addr, "grace", grace)
	}

	// The original context is already canceled.
	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server %v: shutdown failed after %v: %w", srv.Addr, grace, err)
	}
	return <-errCh
}
