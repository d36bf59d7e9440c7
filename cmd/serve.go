package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizsolver/internal/server"
)

const shutdownGrace = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Run the HTTP front door",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(a.orchestrator, cfg.Identity(), server.WithLogger(a.logger))
		httpSrv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("listening", "addr", httpSrv.Addr, "renderer", cfg.Renderer, "llm", cfg.LLM.Provider)
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("http shutdown", "error", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("sessions still running at exit", "error", err)
		}
		return nil
	},
}
