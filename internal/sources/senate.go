package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"hearings/internal/crawler"
	"hearings/internal/logger"
	"hearings/internal/models"
	"hearings/internal/normalizer"
	"hearings/internal/tree"
	"hearings/pkg/utils"
)

// NoHearingsSentinel is the title the Senate feed uses for an empty schedule.
const NoHearingsSentinel = "No committee hearings scheduled"

// senateContainers are the entry paths the feed has used, tried in order.
var senateContainers = [][]string{
	{"css_meetings_scheduled", "meeting"},
	{"calendar", "meeting"},
	{"calendar", "meetings", "meeting"},
	{"Calendar", "meeting"},
	{"Calendar", "Meeting"},
	{"rss", "channel", "item"},
}

// Field aliases for Senate entries.
var (
	senateCodeFields         = []string{"cmte_code"}
	senateCommitteeFields    = []string{"committee"}
	senateSubcommitteeFields = []string{"sub_cmte", "subcommittee", "subcmte", "subcmte_name"}
	senateTitleFields        = []string{"matter"}
	senateISODateFields      = []string{"date_iso_8601"}
	senateDateFields         = []string{"date", "hearingDate"}
	senateTimeFields         = []string{"time", "time_et"}
	senateLocationFields     = []string{"room", "location", "building"}
	senateTypeFields         = []string{"meetingType", "type"}
	senateLinkFields         = []string{"url", "meetingURL", "link"}
	senateIDFields           = []string{"identifier", "meetingID", "id", "guid"}
	senateVideoFields        = []string{"video", "video_url", "webcast"}
)

// Senate is the feed adapter for the Senate committee hearings XML.
type Senate struct {
	client           *crawler.Client
	processor        *normalizer.Processor
	log              *logger.Logger
	feedURL          string
	defaultDetailURL string
}

// NewSenate creates the Senate adapter.
func NewSenate(client *crawler.Client, feedURL, defaultDetailURL string, log *logger.Logger) *Senate {
	return &Senate{
		client:           client,
		processor:        normalizer.NewProcessor(models.ChamberSenate, models.SourceSenate, normalizer.DefaultSenateCommittees()),
		log:              log.With("source", models.SourceSenate),
		feedURL:          feedURL,
		defaultDetailURL: defaultDetailURL,
	}
}

// WithProcessor replaces the processor. Used by tests to pin the clock.
func (s *Senate) WithProcessor(p *normalizer.Processor) *Senate {
	s.processor = p

	return s
}

// Name implements Source.
func (s *Senate) Name() models.Source {
	return models.SourceSenate
}

// Fetch implements Source. Any transport or status failure fails the source.
func (s *Senate) Fetch(ctx context.Context) (*Result, error) {
	doc, err := s.client.GetXML(ctx, s.feedURL)
	if err != nil {
		return nil, fmt.Errorf("senate feed: %w", err)
	}

	return s.Map(doc)
}

// Map converts a parsed feed document into meetings.
func (s *Senate) Map(doc *tree.Node) (*Result, error) {
	entries := senateEntries(doc)
	if len(entries) == 0 {
		return nil, fmt.Errorf("senate feed: %w", ErrNoEntries)
	}

	res := &Result{}
	ids := make(map[string]int, len(entries))

	for idx, entry := range entries {
		f := s.extract(entry)

		if isSentinel(f.Title) {
			continue
		}

		if f.ID == "" {
			f.ID = compositeID(f, idx+1)
		}

		f.ID = uniqueID(ids, f.ID)

		m, err := s.processor.Process(f)
		if err != nil {
			s.log.Debug("record breaks invariants", "meeting_id", m.MeetingID, "err", err)
		}

		res.Meetings = append(res.Meetings, m)
	}

	res.Diagnostics = s.processor.Diagnose(res.Meetings)

	if res.Diagnostics.UnresolvedCommittee > 0 {
		s.log.Warn("unresolved committees", "count", res.Diagnostics.UnresolvedCommittee)
	}

	return res, nil
}

func (s *Senate) extract(entry *tree.Node) normalizer.Fields {
	return normalizer.Fields{
		ID:            tree.FindString(entry, senateIDFields...),
		CommitteeCode: tree.FindString(entry, senateCodeFields...),
		Committee:     tree.FindString(entry, senateCommitteeFields...),
		Subcommittee:  tree.FindString(entry, senateSubcommitteeFields...),
		Title:         tree.FindString(entry, senateTitleFields...),
		MeetingType:   tree.FindString(entry, senateTypeFields...),
		DateISO:       tree.FindString(entry, senateISODateFields...),
		DateRaw:       tree.FindString(entry, senateDateFields...),
		Time:          tree.FindString(entry, senateTimeFields...),
		Location:      tree.FindString(entry, senateLocationFields...),
		DetailURL:     utils.FirstNonEmpty(tree.FindString(entry, senateLinkFields...), s.defaultDetailURL),
		VideoURL:      tree.FindString(entry, senateVideoFields...),
	}
}

// senateEntries collects entries from every known container path.
func senateEntries(doc *tree.Node) []*tree.Node {
	var entries []*tree.Node
	for _, path := range senateContainers {
		entries = append(entries, tree.Path(doc, path...)...)
	}

	return entries
}

func isSentinel(title string) bool {
	t := strings.TrimRight(utils.Normalize(title), ". ")

	return strings.EqualFold(t, NoHearingsSentinel)
}

// compositeID builds senate-<date>-<committee>-<index> for entries without
// an upstream identifier.
func compositeID(f normalizer.Fields, index int) string {
	date := "nodate"
	if t, _, ok := normalizer.ParseDate(utils.FirstNonEmpty(f.DateISO, f.DateRaw)); ok {
		date = t.Format("2006-01-02")
	}

	committee := strings.ToLower(normalizer.NormalizeCode(f.CommitteeCode))
	if committee == "" {
		committee = utils.Slug(f.Committee)
	}

	if committee == "" {
		committee = "unknown"
	}

	return fmt.Sprintf("senate-%s-%s-%d", date, committee, index)
}

// uniqueID returns id, suffixed with -n when it was already used in the batch.
func uniqueID(seen map[string]int, id string) string {
	seen[id]++
	if seen[id] == 1 {
		return id
	}

	for n := seen[id]; ; n++ {
		candidate := id + "-" + strconv.Itoa(n)
		if seen[candidate] == 0 {
			seen[candidate] = 1

			return candidate
		}
	}
}
