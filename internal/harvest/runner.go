// Package harvest sequences one harvest run: load the prior snapshot, fetch
// every source concurrently, merge and write.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hearings/internal/crawler"
	"hearings/internal/history"
	"hearings/internal/logger"
	"hearings/internal/merge"
	"hearings/internal/metrics"
	"hearings/internal/models"
	"hearings/internal/snapshot"
	"hearings/internal/sources"
)

// Options configures a Runner.
type Options struct {
	Now func() time.Time
	// Load reads the prior snapshot. Defaults to snapshot.Load.
	Load         func(path string) (*models.Snapshot, error)
	SnapshotPath string
	MetricsPath  string
	Snapshot     snapshot.Options
}

// Runner executes harvest runs.
type Runner struct {
	log      *logger.Logger
	metrics  *metrics.Harvest
	history  *history.Store
	attempts *crawler.AttemptLog
	sources  []sources.Source
	opts     Options
}

// NewRunner creates a runner over srcs.
func NewRunner(srcs []sources.Source, opts Options, log *logger.Logger) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Load == nil {
		opts.Load = snapshot.Load
	}

	return &Runner{
		sources: srcs,
		opts:    opts,
		log:     log,
		metrics: metrics.NewHarvest(),
	}
}

// WithMetrics replaces the metric collectors.
func (r *Runner) WithMetrics(m *metrics.Harvest) *Runner {
	r.metrics = m

	return r
}

// WithHistory records every run in store.
func (r *Runner) WithHistory(store *history.Store) *Runner {
	r.history = store

	return r
}

// WithAttemptLog reports fetch attempts from log after each run.
func (r *Runner) WithAttemptLog(log *crawler.AttemptLog) *Runner {
	r.attempts = log

	return r
}

// Metrics returns the runner's collectors.
func (r *Runner) Metrics() *metrics.Harvest {
	return r.metrics
}

// Run performs one harvest. Source failures are logged and reported; only a
// snapshot that cannot be read (other than corrupt) or written returns an
// error. A missing or corrupt prior snapshot starts the run empty.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     history.NewRunID(),
		StartedAt: r.opts.Now().UTC(),
		Path:      r.opts.SnapshotPath,
	}

	log := r.log.With("run_id", report.RunID)
	log.Info("🚀 Starting harvest", "sources", len(r.sources), "snapshot", r.opts.SnapshotPath)

	prior, err := r.opts.Load(r.opts.SnapshotPath)

	switch {
	case err == nil:
	case errors.Is(err, snapshot.ErrCorrupt):
		report.PriorCorrupt = true
		log.Warn("prior snapshot corrupt, starting empty", "path", r.opts.SnapshotPath, "err", err)
	default:
		// An unreadable prior snapshot is never overwritten.
		report.Err = err
		report.FinishedAt = r.opts.Now().UTC()
		log.Error("❌ Prior snapshot unreadable, leaving it in place", "path", r.opts.SnapshotPath, "err", err)
		r.record(ctx, log, report)

		return report, fmt.Errorf("harvest %s: %w", report.RunID, err)
	}

	if prior == nil {
		prior = &models.Snapshot{}
	}

	report.Sources = r.fetchAll(ctx, log)

	batches := make([]models.Batch, 0, len(report.Sources))

	for _, sr := range report.Sources {
		if sr.Err == nil {
			batches = append(batches, models.Batch{Source: sr.Source, Meetings: sr.meetings})
		}
	}

	merged := merge.Merge(prior.Meetings, batches)

	snap, err := snapshot.Write(r.opts.SnapshotPath, merged, r.opts.Now(), r.opts.Snapshot)
	report.FinishedAt = r.opts.Now().UTC()

	if err != nil {
		report.Err = err
		log.Error("❌ Snapshot write failed", "path", r.opts.SnapshotPath, "err", err)
		r.record(ctx, log, report)

		return report, fmt.Errorf("harvest %s: %w", report.RunID, err)
	}

	report.Records = snap.Count
	report.Digest = snapshot.Digest(snap.Meetings)
	report.Counts = merge.Counts(snap.Meetings)

	r.observe(report)
	r.record(ctx, log, report)

	if r.attempts != nil {
		r.attempts.LogSummary(log)
	}

	log.Info("✅ Harvest complete",
		"records", report.Records,
		"failed_sources", len(report.Failed()),
		"digest", report.Digest,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)

	return report, nil
}

// fetchAll runs every source concurrently. Results keep source order.
func (r *Runner) fetchAll(ctx context.Context, log *logger.Logger) []SourceReport {
	reports := make([]SourceReport, len(r.sources))

	var wg sync.WaitGroup

	for i, src := range r.sources {
		wg.Add(1)

		go func(i int, src sources.Source) {
			defer wg.Done()

			reports[i] = r.fetch(ctx, log, src)
		}(i, src)
	}

	wg.Wait()

	return reports
}

func (r *Runner) fetch(ctx context.Context, log *logger.Logger, src sources.Source) SourceReport {
	start := time.Now()
	sr := SourceReport{Source: src.Name()}

	res, err := src.Fetch(ctx)
	sr.Duration = time.Since(start)

	if err == nil && res == nil {
		err = fmt.Errorf("%s returned no result", src.Name())
	}

	if err != nil {
		sr.Err = err
		log.Warn("⚠️  Source failed, keeping prior records", "source", src.Name(), "err", err, "duration", sr.Duration)

		return sr
	}

	sr.meetings = res.Meetings
	sr.Count = len(res.Meetings)
	sr.Diagnostics = res.Diagnostics
	sr.Outcomes = res.OutcomeCounts()

	if sr.Count == 0 {
		log.Warn("source returned no records, keeping prior records", "source", src.Name())
	} else {
		log.Info("source fetched", "source", src.Name(), "records", sr.Count, "duration", sr.Duration)
	}

	return sr
}

func (r *Runner) observe(report *Report) {
	if r.metrics == nil {
		return
	}

	outcomes := make(map[string]int)

	for _, sr := range report.Sources {
		r.metrics.ObserveSource(string(sr.Source), sr.Diagnostics.UnresolvedCommittee, sr.Duration, sr.Err)

		for o, n := range sr.Outcomes {
			outcomes[string(o)] += n
		}
	}

	counts := make(map[string]int, len(report.Counts))
	for s, n := range report.Counts {
		counts[string(s)] = n
	}

	r.metrics.ObserveRecords(counts)
	r.metrics.ObserveOutcomes(outcomes)
	r.metrics.MarkSuccess(report.FinishedAt)

	if r.attempts != nil {
		stats := r.attempts.Stats()
		r.metrics.ObserveAttempts(stats.SuccessfulAttempts, stats.FailedAttempts)
	}

	if r.opts.MetricsPath == "" {
		return
	}

	if err := r.metrics.WriteTextfile(r.opts.MetricsPath); err != nil {
		r.log.Warn("metrics export failed", "path", r.opts.MetricsPath, "err", err)
	}
}

func (r *Runner) record(ctx context.Context, log *logger.Logger, report *Report) {
	if r.history == nil {
		return
	}

	if err := r.history.Record(ctx, report.HistoryRun()); err != nil {
		log.Warn("history record failed", "err", err)
	}
}
