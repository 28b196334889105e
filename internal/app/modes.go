package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"toolbench/pkg/logging"
)

const shutdownGrace = 5 * time.Second

// runServeMode binds the HTTP listener, starts the wrapper watcher and blocks
// until the context is canceled, a termination signal arrives, or the server
// fails. Shutdown drains in-flight requests for up to shutdownGrace.
func runServeMode(ctx context.Context, services *Services) error {
	listener, err := net.Listen("tcp", services.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", services.Addr, err)
	}

	if err := services.Watcher.Start(); err != nil {
		logging.Warn("Serve", "Wrapper watcher failed to start: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := services.HTTP.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	logging.Info("Serve", "Listening on http://%s", listener.Addr())
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logging.Debug("Serve", "sd_notify not available: %v", err)
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-signalCtx.Done():
	}

	logging.Info("Serve", "Shutting down")
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		logging.Debug("Serve", "sd_notify not available: %v", err)
	}
	if err := services.Watcher.Stop(); err != nil {
		logging.Warn("Serve", "Wrapper watcher failed to stop: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := services.HTTP.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
