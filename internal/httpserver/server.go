// Package httpserver runs HTTP handlers until the process is signalled.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownTimeout bounds how long in-flight requests may take to finish.
const ShutdownTimeout = 5 * time.Second

// Config represents common HTTP server configuration
type Config interface {
	GetListenAddress() string
	GetListenPort() int
}

// Address returns the host:port listen address of cfg.
func Address(cfg Config) string {
	return net.JoinHostPort(cfg.GetListenAddress(), fmt.Sprint(cfg.GetListenPort()))
}

// StartWithGracefulShutdown serves handler on addr until SIGINT or SIGTERM.
// Every cleanup function runs after the server has stopped accepting
// requests.
func StartWithGracefulShutdown(addr string, handler http.Handler, cleanup ...func() error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return Serve(ctx, ln, handler, cleanup...)
}

// StartFromConfig starts an HTTP server using a Config interface
func StartFromConfig(cfg Config, handler http.Handler, cleanup ...func() error) error {
	return StartWithGracefulShutdown(Address(cfg), handler, cleanup...)
}

// Serve serves handler on ln until ctx is cancelled, then shuts the server
// down gracefully and runs the cleanup functions.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, cleanup ...func() error) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("starting server on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown failed: %w", err))
	}
	for _, fn := range cleanup {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	log.Println("server gracefully stopped")
	return nil
}
