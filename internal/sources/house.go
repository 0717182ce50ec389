package sources

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hearings/internal/crawler"
	"hearings/internal/logger"
	"hearings/internal/models"
	"hearings/internal/normalizer"
	"hearings/internal/tree"
)

// DefaultConcurrency bounds parallel event resolution.
const DefaultConcurrency = 4

// strategy is one way of turning an event page into a meeting.
type strategy struct {
	resolve func(ctx context.Context, ev *eventPage) (models.Meeting, error)
	outcome Outcome
}

// eventPage caches the detail page of one event across strategies.
type eventPage struct {
	err  error
	doc  *tree.Node
	id   string
	url  string
	once sync.Once
}

// HouseOptions configures the House adapter.
type HouseOptions struct {
	Now         func() time.Time
	BaseURL     string
	WeeksBack   int
	WeeksAhead  int
	Concurrency int
}

// House is the crawl adapter for the House committee calendar.
type House struct {
	client     *crawler.Client
	discoverer *Discoverer
	processor  *normalizer.Processor
	log        *logger.Logger
	strategies []strategy
	opts       HouseOptions
}

// NewHouse creates the House adapter.
func NewHouse(client *crawler.Client, opts HouseOptions, log *logger.Logger) *House {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	log = log.With("source", models.SourceHouse)

	h := &House{
		client:     client,
		discoverer: NewDiscoverer(client, opts.BaseURL, log),
		processor:  normalizer.NewProcessor(models.ChamberHouse, models.SourceHouse, normalizer.DefaultHouseCommittees()),
		log:        log,
		opts:       opts,
	}

	h.strategies = []strategy{
		{outcome: OutcomeXML, resolve: h.resolveXML},
		{outcome: OutcomeHTML, resolve: h.resolveHTML},
	}

	return h
}

// WithProcessor replaces the processor. Used by tests to pin the clock.
func (h *House) WithProcessor(p *normalizer.Processor) *House {
	h.processor = p

	return h
}

// Name implements Source.
func (h *House) Name() models.Source {
	return models.SourceHouse
}

// Weeks returns the discovery window for this run.
func (h *House) Weeks() []Week {
	return Window(h.opts.Now().In(Eastern), h.opts.WeeksBack, h.opts.WeeksAhead)
}

// Fetch implements Source. Only a total discovery failure fails the source;
// individual events resolve to a record or a placeholder.
func (h *House) Fetch(ctx context.Context) (*Result, error) {
	ids, _, err := h.discoverer.Discover(ctx, h.Weeks())
	if err != nil {
		return nil, fmt.Errorf("house discovery: %w", err)
	}

	h.log.Info("discovered events", "count", len(ids))

	res := &Result{Events: h.resolveAll(ctx, ids)}

	for _, ev := range res.Events {
		if ev.Meeting != nil {
			res.Meetings = append(res.Meetings, *ev.Meeting)
		}
	}

	res.Diagnostics = h.processor.Diagnose(res.Meetings)

	counts := res.OutcomeCounts()
	h.log.Info("events resolved",
		"xml", counts[OutcomeXML],
		"html", counts[OutcomeHTML],
		"placeholder", counts[OutcomePlaceholder],
		"skipped", counts[OutcomeSkipped],
	)

	return res, nil
}

// resolveAll resolves events with bounded concurrency. Results keep
// discovery order.
func (h *House) resolveAll(ctx context.Context, ids []string) []EventResult {
	results := make([]EventResult, len(ids))

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, h.opts.Concurrency)
	)

	for i, id := range ids {
		wg.Add(1)

		go func(i int, id string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = EventResult{EventID: id, Outcome: OutcomeSkipped, Errors: []error{ctx.Err()}}

				return
			}
			defer func() { <-sem }()

			results[i] = h.ResolveEvent(ctx, id)
		}(i, id)
	}

	wg.Wait()

	return results
}

// ResolveEvent tries each strategy in order and stops at the first complete
// record. A record that parsed but lacks a title or committee is kept unless
// a later strategy fills more of the two. Only when every strategy fails outright does
// the event become a placeholder record.
func (h *House) ResolveEvent(ctx context.Context, id string) EventResult {
	if err := ctx.Err(); err != nil {
		return EventResult{EventID: id, Outcome: OutcomeSkipped, Errors: []error{err}}
	}

	ev := &eventPage{id: id, url: EventURL(h.opts.BaseURL, id)}
	result := EventResult{EventID: id}

	var (
		partial        *models.Meeting
		partialOutcome Outcome
	)

	for _, s := range h.strategies {
		m, err := s.resolve(ctx, ev)
		if err == nil {
			result.Meeting = &m
			result.Outcome = s.outcome

			return result
		}

		result.Errors = append(result.Errors, fmt.Errorf("%s: %w", s.outcome, err))

		if errors.Is(err, ErrIncomplete) && (partial == nil || completeness(m) > completeness(*partial)) {
			partial, partialOutcome = &m, s.outcome
		}
	}

	if partial != nil {
		h.log.Warn("event partially resolved", "event_id", id, "url", ev.url, "outcome", partialOutcome,
			"committee", partial.CommitteeName, "title", partial.OfficialTitle)

		result.Meeting = partial
		result.Outcome = partialOutcome

		return result
	}

	h.log.Warn("event unresolved, emitting placeholder", "event_id", id, "url", ev.url, "err", result.Errors[len(result.Errors)-1])

	m := h.placeholder(ev)
	result.Meeting = &m
	result.Outcome = OutcomePlaceholder

	return result
}

// page fetches the event detail page once.
func (h *House) page(ctx context.Context, ev *eventPage) (*tree.Node, error) {
	ev.once.Do(func() {
		ev.doc, _, ev.err = h.client.GetHTML(ctx, ev.url)
	})

	return ev.doc, ev.err
}

// process runs fields through the normalizer. A record without a title or a
// resolved committee is returned with ErrIncomplete.
func (h *House) process(f normalizer.Fields) (models.Meeting, error) {
	m, err := h.processor.Process(f)
	if m.OfficialTitle == "" || m.CommitteeName == models.UnknownCommittee {
		return m, fmt.Errorf("%w: event %s", ErrIncomplete, f.ID)
	}

	if err != nil {
		h.log.Debug("record breaks invariants", "meeting_id", m.MeetingID, "err", err)
	}

	return m, nil
}

// completeness counts which of title and committee m has.
func completeness(m models.Meeting) int {
	n := 0
	if m.OfficialTitle != "" {
		n++
	}

	if m.CommitteeName != models.UnknownCommittee {
		n++
	}

	return n
}

func (h *House) placeholder(ev *eventPage) models.Meeting {
	return models.Meeting{
		MeetingID:     ev.id,
		Chamber:       models.ChamberHouse,
		CommitteeName: models.UnknownCommittee,
		DetailPageURL: ev.url,
		Source:        models.SourceHouse,
		LastSeenAt:    h.processor.Now().UTC(),
	}
}
