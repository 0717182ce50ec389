package sources

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // House calendar weeks are in Eastern time.

	"hearings/internal/crawler"
	"hearings/internal/logger"
	"hearings/internal/tree"
)

const (
	weekListingPath = "/Committee/Calendar/ByWeek.aspx?WeekOf="
	eventPagePath   = "/Committee/Calendar/ByEvent.aspx?EventID="
	eventLinkMarker = "ByEvent.aspx?EventID="
)

var eventIDPattern = regexp.MustCompile(`EventID=(\d{5,})`)

// Eastern is the House calendar's time zone, or UTC when zone data is missing.
var Eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}

	return loc
}

// Week is one Sunday to Saturday calendar window.
type Week struct {
	Start time.Time
	End   time.Time
}

// WeekOf returns the week containing d, in d's location.
func WeekOf(d time.Time) Week {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	start := day.AddDate(0, 0, -int(day.Weekday()))

	return Week{Start: start, End: start.AddDate(0, 0, 6)}
}

// String renders the week as MMDDYYYY_MMDDYYYY.
func (w Week) String() string {
	return w.Start.Format("01022006") + "_" + w.End.Format("01022006")
}

// Window returns the weeks from back weeks before now to ahead weeks after,
// in order.
func Window(now time.Time, back, ahead int) []Week {
	current := WeekOf(now)
	weeks := make([]Week, 0, back+ahead+1)

	for i := -back; i <= ahead; i++ {
		start := current.Start.AddDate(0, 0, 7*i)
		weeks = append(weeks, Week{Start: start, End: start.AddDate(0, 0, 6)})
	}

	return weeks
}

// WeekURL is the listing URL for w.
func WeekURL(baseURL string, w Week) string {
	return strings.TrimRight(baseURL, "/") + weekListingPath + w.String()
}

// EventURL is the detail page URL for an event.
func EventURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + eventPagePath + id
}

// ExtractEventIDs returns the event IDs referenced by a listing page, from
// detail-page links first and then a raw scan of the markup. IDs are
// de-duplicated in first-seen order.
func ExtractEventIDs(doc *tree.Node, raw []byte) []string {
	seen := make(map[string]bool)

	var ids []string

	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, a := range tree.Select(doc, tree.ByName("a")) {
		href := a.Attr("href")
		if !strings.Contains(strings.ToLower(href), strings.ToLower(eventLinkMarker)) {
			continue
		}

		if m := eventIDPattern.FindStringSubmatch(href); m != nil {
			add(m[1])
		}
	}

	for _, m := range eventIDPattern.FindAllSubmatch(raw, -1) {
		add(string(m[1]))
	}

	return ids
}

// WeekResult is the discovery result for one week.
type WeekResult struct {
	Err  error
	Week Week
	URL  string
	IDs  []string
}

// Discoverer finds House event IDs from week listing pages.
type Discoverer struct {
	client  *crawler.Client
	log     *logger.Logger
	baseURL string
}

// NewDiscoverer creates a discoverer against baseURL.
func NewDiscoverer(client *crawler.Client, baseURL string, log *logger.Logger) *Discoverer {
	return &Discoverer{client: client, baseURL: baseURL, log: log}
}

// DiscoverWeek loads one week listing.
func (d *Discoverer) DiscoverWeek(ctx context.Context, w Week) WeekResult {
	res := WeekResult{Week: w, URL: WeekURL(d.baseURL, w)}

	doc, raw, err := d.client.GetHTML(ctx, res.URL)
	if err != nil && raw == nil {
		res.Err = err

		return res
	}

	// A parse failure still leaves the raw scan.
	res.IDs = ExtractEventIDs(doc, raw)

	return res
}

// Discover loads every week and returns the merged IDs in discovery order.
// Failing weeks are logged and skipped; if all fail, ErrAllWeeksFailed.
func (d *Discoverer) Discover(ctx context.Context, weeks []Week) ([]string, []WeekResult, error) {
	seen := make(map[string]bool)
	results := make([]WeekResult, 0, len(weeks))

	var (
		ids    []string
		failed int
	)

	for _, w := range weeks {
		res := d.DiscoverWeek(ctx, w)
		results = append(results, res)

		if res.Err != nil {
			failed++

			d.log.Warn("week listing failed", "week", w.String(), "url", res.URL, "err", res.Err)

			continue
		}

		d.log.Debug("week listing loaded", "week", w.String(), "ids", len(res.IDs))

		for _, id := range res.IDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	if len(weeks) > 0 && failed == len(weeks) {
		return nil, results, fmt.Errorf("%w: %d weeks", ErrAllWeeksFailed, failed)
	}

	return ids, results, nil
}
