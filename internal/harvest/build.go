package harvest

import (
	"golang.org/x/time/rate"

	"hearings/internal/config"
	"hearings/internal/crawler"
	"hearings/internal/logger"
	"hearings/internal/snapshot"
	"hearings/internal/sources"
)

// NewSources builds the enabled adapters from cfg. Every scraper records
// into the returned attempt log.
func NewSources(cfg *config.Config, log *logger.Logger) ([]sources.Source, *crawler.AttemptLog) {
	h := cfg.Harvester
	attempts := crawler.NewAttemptLog()

	var srcs []sources.Source

	if h.Sources.House.Enabled {
		srcs = append(srcs, NewHouseSource(cfg, attempts, log))
	}

	if h.Sources.Senate.Enabled {
		// The feed is a single document; a bad status fails the source outright.
		scraper := crawler.NewScraperWithConfig(&h.Retry, h.HTTP).
			WithAttemptLog(attempts).
			WithoutStatusRetry()

		srcs = append(srcs, sources.NewSenate(
			crawler.NewClientWithFetcher(scraper),
			h.Sources.Senate.URL,
			h.Sources.Senate.DefaultDetailURL,
			log,
		))
	}

	return srcs, attempts
}

// NewHouseSource builds the House adapter with the configured rate limit.
func NewHouseSource(cfg *config.Config, attempts *crawler.AttemptLog, log *logger.Logger) *sources.House {
	h := cfg.Harvester

	scraper := crawler.NewScraperWithConfig(&h.Retry, h.HTTP).WithAttemptLog(attempts)
	if h.Crawl.RatePerSecond > 0 {
		scraper = scraper.WithLimiter(rate.NewLimiter(rate.Limit(h.Crawl.RatePerSecond), h.Crawl.Burst))
	}

	return sources.NewHouse(crawler.NewClientWithFetcher(scraper), sources.HouseOptions{
		BaseURL:     h.Sources.House.BaseURL,
		WeeksBack:   h.Sources.House.WeeksBack,
		WeeksAhead:  h.Sources.House.WeeksAhead,
		Concurrency: h.Crawl.Concurrency,
	}, log)
}

// NewRunnerFromConfig wires a runner for cfg without history.
func NewRunnerFromConfig(cfg *config.Config, log *logger.Logger) *Runner {
	srcs, attempts := NewSources(cfg, log)

	return NewRunner(srcs, Options{
		SnapshotPath: cfg.Harvester.Output.SnapshotPath,
		MetricsPath:  cfg.Metrics.TextfilePath,
		Snapshot: snapshot.Options{
			PrettyPrint:  cfg.Harvester.Output.PrettyPrint,
			CreateBackup: cfg.Harvester.Output.CreateBackup,
		},
	}, log).WithAttemptLog(attempts)
}
