package harvest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"hearings/internal/formatter"
	"hearings/internal/history"
	"hearings/internal/models"
	"hearings/internal/normalizer"
	"hearings/internal/sources"
)

// SourceReport is the outcome of one source in a run.
type SourceReport struct {
	Err         error
	Outcomes    map[sources.Outcome]int
	Source      models.Source
	meetings    []models.Meeting
	Diagnostics normalizer.Diagnostics
	Count       int
	Duration    time.Duration
}

// Status is "ok" or "failed".
func (s SourceReport) Status() string {
	if s.Err != nil {
		return history.StatusFailed
	}

	return history.StatusOK
}

// Report summarizes one run.
type Report struct {
	StartedAt    time.Time
	FinishedAt   time.Time
	Err          error
	Counts       map[models.Source]int
	RunID        string
	Path         string
	Digest       string
	Sources      []SourceReport
	Records      int
	PriorCorrupt bool
}

// Failed returns the sources that failed this run.
func (r *Report) Failed() []models.Source {
	var out []models.Source

	for _, s := range r.Sources {
		if s.Err != nil {
			out = append(out, s.Source)
		}
	}

	return out
}

// HistoryRun converts the report for the history store.
func (r *Report) HistoryRun() history.Run {
	run := history.Run{
		ID:         r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Records:    r.Records,
		Digest:     r.Digest,
	}

	if r.Err != nil {
		run.Error = r.Err.Error()
	}

	for _, s := range r.Sources {
		sr := history.SourceRun{
			Source:   string(s.Source),
			Status:   s.Status(),
			Count:    s.Count,
			Duration: s.Duration,
		}

		if s.Err != nil {
			sr.Error = s.Err.Error()
		}

		run.Sources = append(run.Sources, sr)
	}

	return run
}

// Table renders the per-source summary.
func (r *Report) Table() string {
	rows := make([][]string, 0, len(r.Sources))

	for _, s := range r.Sources {
		errText := ""
		if s.Err != nil {
			errText = s.Err.Error()
		}

		rows = append(rows, []string{
			string(s.Source),
			s.Status(),
			fmt.Sprint(s.Count),
			fmt.Sprint(s.Diagnostics.UnresolvedCommittee),
			formatOutcomes(s.Outcomes),
			s.Duration.Round(time.Millisecond).String(),
			errText,
		})
	}

	return formatter.Table([]string{"Source", "Status", "Fetched", "Unresolved", "Events", "Duration", "Error"}, rows)
}

func formatOutcomes(counts map[sources.Outcome]int) string {
	if len(counts) == 0 {
		return ""
	}

	keys := make([]string, 0, len(counts))
	for o := range counts {
		keys = append(keys, string(o))
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[sources.Outcome(k)]))
	}

	return strings.Join(parts, " ")
}
