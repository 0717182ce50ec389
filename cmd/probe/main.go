// Package main provides probe, a diagnostic that lists the House event IDs
// each calendar week page exposes without fetching any event.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hearings/internal/config"
	"hearings/internal/crawler"
	"hearings/internal/formatter"
	"hearings/internal/logger"
	"hearings/internal/sources"
)

const previewIDs = 10

var (
	configPath string
	baseURL    string
	weeksBack  int
	weeksAhead int
	asJSON     bool
)

// weekProbe is one line of probe output.
type weekProbe struct {
	Week  string   `json:"week"`
	URL   string   `json:"url"`
	Error string   `json:"error,omitempty"`
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

var rootCmd = &cobra.Command{
	Use:           "probe",
	Short:         "List House event IDs per calendar week",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		if baseURL == "" {
			baseURL = cfg.Harvester.Sources.House.BaseURL
		}

		log := logger.New(cfg.Harvester.Logging.Level, cfg.Harvester.Logging.Format, os.Stderr)
		client := crawler.NewClientWithFetcher(crawler.NewScraperWithConfig(&cfg.Harvester.Retry, cfg.Harvester.HTTP))
		d := sources.NewDiscoverer(client, baseURL, log)

		var probes []weekProbe

		for _, w := range sources.Window(time.Now().In(sources.Eastern), weeksBack, weeksAhead) {
			res := d.DiscoverWeek(cmd.Context(), w)

			p := weekProbe{Week: w.String(), URL: res.URL, IDs: res.IDs, Count: len(res.IDs)}
			if p.IDs == nil {
				p.IDs = []string{}
			}

			if res.Err != nil {
				p.Error = res.Err.Error()
			}

			probes = append(probes, p)
		}

		if asJSON {
			return writeJSON(cmd.OutOrStdout(), probes)
		}

		fmt.Fprint(cmd.OutOrStdout(), render(probes))

		return nil
	},
}

func writeJSON(w io.Writer, probes []weekProbe) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(probes)
}

func render(probes []weekProbe) string {
	rows := make([][]string, 0, len(probes))

	for _, p := range probes {
		ids := p.IDs
		if len(ids) > previewIDs {
			ids = ids[:previewIDs]
		}

		preview := strings.Join(ids, " ")
		if p.Error != "" {
			preview = "error: " + p.Error
		}

		rows = append(rows, []string{p.Week, p.URL, strconv.Itoa(p.Count), preview})
	}

	return formatter.Table([]string{"Week", "URL", "IDs", "First IDs"}, rows)
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "Path to YAML config")
	f.StringVar(&baseURL, "base-url", "", "House docs base URL (defaults to config)")
	f.IntVar(&weeksBack, "weeks-back", 1, "Weeks before the current week")
	f.IntVar(&weeksAhead, "weeks-ahead", 2, "Weeks after the current week")
	f.BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
