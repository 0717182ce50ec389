package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hearings/internal/httpapi"
	"hearings/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

var listenAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the latest snapshot over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		if listenAddress != "" {
			cfg.Server.ListenAddress = listenAddress
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		m := metrics.NewAPI()
		store := httpapi.NewStore(cfg.ServerSnapshotPath(), m, log)

		if err := store.Reload(); err != nil {
			log.Warn("⚠️ initial snapshot load failed, serving empty", "path", cfg.ServerSnapshotPath(), "err", err)
		}

		if cfg.Server.Watch {
			go func() {
				if err := store.Watch(ctx); err != nil {
					log.Error("❌ snapshot watch stopped", "err", err)
				}
			}()
		}

		app := httpapi.NewApp(store, m)

		errCh := make(chan error, 1)
		go func() {
			log.Info("🚀 serving snapshot", "addr", cfg.Server.ListenAddress, "path", cfg.ServerSnapshotPath())
			errCh <- app.Listen(cfg.Server.ListenAddress)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}

		log.Info("✅ server stopped")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&listenAddress, "listen", "l", "", "Listen address (overrides server.listen_address)")
}
