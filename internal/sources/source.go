// Package sources implements the upstream adapters: the Senate hearings XML
// feed and the House committee calendar crawl.
package sources

import (
	"context"
	"errors"

	"hearings/internal/models"
	"hearings/internal/normalizer"
)

// Adapter errors.
var (
	// ErrNoEntries means no known container path matched the document.
	ErrNoEntries = errors.New("no meeting entries found")
	// ErrNoXMLLink means an event page links no XML attachment.
	ErrNoXMLLink = errors.New("event page has no XML attachment link")
	// ErrIncomplete means a resolution produced no title or no committee.
	ErrIncomplete = errors.New("resolved meeting is missing title or committee")
	// ErrAllWeeksFailed means every week listing failed to load.
	ErrAllWeeksFailed = errors.New("all week listings failed")
)

// Source fetches one upstream origin end to end.
type Source interface {
	Name() models.Source
	Fetch(ctx context.Context) (*Result, error)
}

// Result is the output of one successful source fetch.
type Result struct {
	Meetings    []models.Meeting
	Events      []EventResult
	Diagnostics normalizer.Diagnostics
}

// Outcome tags how a single crawled event was resolved.
type Outcome string

// Event outcomes.
const (
	OutcomeXML         Outcome = "xml"
	OutcomeHTML        Outcome = "html"
	OutcomePlaceholder Outcome = "placeholder"
	OutcomeSkipped     Outcome = "skipped"
)

// EventResult is the tagged result of resolving one event. Meeting is nil
// only for OutcomeSkipped.
type EventResult struct {
	Meeting *models.Meeting
	EventID string
	Outcome Outcome
	Errors  []error
}

// OutcomeCounts tallies event results by outcome.
func (r *Result) OutcomeCounts() map[Outcome]int {
	counts := make(map[Outcome]int, 4)
	for _, e := range r.Events {
		counts[e.Outcome]++
	}

	return counts
}
