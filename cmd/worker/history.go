package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hearings/internal/formatter"
	"hearings/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent harvest runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := history.Open(cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")

			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, []string{
				run.ID,
				run.StartedAt.UTC().Format(time.RFC3339),
				run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
				strconv.Itoa(run.Records),
				sourceSummary(run.Sources),
				shortDigest(run.Digest),
				run.Error,
			})
		}

		fmt.Fprint(cmd.OutOrStdout(), formatter.Table(
			[]string{"Run", "Started", "Duration", "Records", "Sources", "Digest", "Error"}, rows))

		return nil
	},
}

func sourceSummary(srcs []history.SourceRun) string {
	parts := make([]string, 0, len(srcs))
	for _, s := range srcs {
		parts = append(parts, fmt.Sprintf("%s:%s(%d)", s.Source, s.Status, s.Count))
	}

	return strings.Join(parts, " ")
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}

	return d
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
}
