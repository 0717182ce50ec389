// Package main provides the harvester worker: one-shot harvest runs, the
// read-only snapshot API and run history inspection.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hearings/internal/config"
	"hearings/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "worker",
	Short:         "Harvest congressional committee meeting schedules",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config (defaults when empty)")
}

// loadConfig reads the shared config and builds the logger it describes.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(cfg.Harvester.Logging.Level, cfg.Harvester.Logging.Format, os.Stderr)

	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
