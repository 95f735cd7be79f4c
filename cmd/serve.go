package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"packtrack/internal/server"

	"github.com/urfave/cli/v3"
)

// Serve runs the reconciliation HTTP API until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureDatabase(); err != nil {
		return err
	}

	host := r.config.Server.Host
	if h := cmd.String("host"); h != "" {
		host = h
	}
	port := r.config.Server.Port
	if p := cmd.Int("port"); p != 0 {
		port = int(p)
	}

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(server.NewTracklistHandler(r.engine, r.logger))
	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	r.logger.Info("server listening", "addr", addr)
	r.writePlain("Listening on http://%s\n", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}
