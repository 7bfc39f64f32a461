package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"history-graph/internal/handlers"
	"history-graph/internal/logger"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var buildOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve graph queries over MCP JSON-RPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			manager, err := newManager(cfg)
			if err != nil {
				return err
			}
			src, cleanup, err := newSource(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if buildOnStart {
				if _, err := manager.Rebuild(ctx, src); err != nil {
					logger.Warn("Initial build failed; serving without a graph", "err", err)
				}
			}

			router := handlers.NewRouter(handlers.NewMCPHandler(manager, src, version))
			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			server := &http.Server{
				Addr:         addr,
				Handler:      router,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 5 * time.Minute,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("History graph server running", "addr", "http://"+addr, "version", version)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
			case <-ctx.Done():
			}

			logger.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server shutdown error", "err", err)
			}
			logger.Info("Server stopped")
			return nil
		},
	}
	cmd.Flags().Int("server.port", 3001, "Port to bind to")
	cmd.Flags().String("server.host", "0.0.0.0", "Host to bind to")
	cmd.Flags().BoolVar(&buildOnStart, "build-on-start", true, "Build the graph from the configured source at startup")
	return cmd
}
