package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hearings/internal/harvest"
	"hearings/internal/history"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Run one harvest and write the snapshot",
	Long: `Fetch every enabled source, merge with the previous snapshot and write it.
Source failures keep that source's previous records and exit zero; only a
snapshot that cannot be read or written exits non-zero.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runner := harvest.NewRunnerFromConfig(cfg, log)

		if cfg.History.Enabled {
			store, err := history.Open(cfg.History.DBPath)
			if err != nil {
				// Harvest without history.
				log.Warn("⚠️ run history unavailable", "path", cfg.History.DBPath, "err", err)
			} else {
				defer store.Close()

				runner = runner.WithHistory(store)
			}
		}

		report, err := runner.Run(ctx)
		if report != nil {
			fmt.Fprint(cmd.OutOrStdout(), report.Table())
		}

		return err
	},
}

func init() {
	rootCmd.AddCommand(harvestCmd)
}
