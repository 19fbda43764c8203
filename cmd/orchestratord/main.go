// Command orchestratord runs the session orchestrator's HTTP server:
// it mediates between solvers/users and the upstream oracle, enforcing
// single-active-session semantics.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/negainoido/icfpc2025/internal/config"
	"github.com/negainoido/icfpc2025/internal/httpapi"
	"github.com/negainoido/icfpc2025/internal/logging"
	"github.com/negainoido/icfpc2025/internal/oracle"
	"github.com/negainoido/icfpc2025/internal/session"
	"github.com/negainoido/icfpc2025/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadOrchestrator()
	if err != nil {
		return err
	}
	log := logging.New(os.Getenv("LOG_LEVEL"))

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	oc := oracle.New(cfg.UpstreamBaseURL, cfg.UpstreamToken)
	orchestrator := session.New(st, oc)
	server := httpapi.New(orchestrator, log)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	httpServer := &http.Server{Addr: addr, Handler: server.Handler()}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info("orchestrator listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serving: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
	}
	return nil
}
