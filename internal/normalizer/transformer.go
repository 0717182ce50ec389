package normalizer

import (
	"time"

	"hearings/internal/models"
	"hearings/pkg/utils"
)

// Fields holds the values an adapter extracted for one meeting, before any
// canonicalization. Every field is optional.
type Fields struct {
	ID            string
	CommitteeCode string
	Committee     string
	Subcommittee  string
	Title         string
	MeetingType   string
	DateISO       string
	DateRaw       string
	Time          string
	Location      string
	Status        string
	DetailURL     string
	VideoURL      string
	Witnesses     []string
	Legislation   []string
}

// Transformer maps extracted fields onto the canonical meeting record.
type Transformer struct {
	chamber  models.Chamber
	source   models.Source
	resolver *CommitteeResolver
	now      func() time.Time
}

// NewTransformer creates a transformer for one chamber.
func NewTransformer(chamber models.Chamber, source models.Source, resolver *CommitteeResolver) *Transformer {
	return &Transformer{
		chamber:  chamber,
		source:   source,
		resolver: resolver,
		now:      time.Now,
	}
}

// Transform builds the meeting record. An unresolved committee becomes
// models.UnknownCommittee so the record stays visible.
func (t *Transformer) Transform(f Fields) models.Meeting {
	title := utils.Normalize(f.Title)
	meetingType := CanonicalMeetingType(f.MeetingType)

	committee := t.resolver.ResolveName(f.Committee, f.CommitteeCode, title)
	if committee == "" {
		committee = models.UnknownCommittee
	}

	date, clock := NormalizeDate(f.DateISO, f.DateRaw)

	startTime := NormalizeClock(f.Time)
	if startTime == "" {
		startTime = clock
	}

	m := models.Meeting{
		MeetingID:          utils.Normalize(f.ID),
		Chamber:            t.chamber,
		CommitteeName:      committee,
		SubcommitteeName:   utils.Normalize(f.Subcommittee),
		OfficialTitle:      title,
		TitleOrSubject:     title,
		MeetingType:        meetingType,
		Date:               date,
		StartTime:          startTime,
		Location:           utils.Normalize(f.Location),
		Status:             CanonicalStatus(f.Status),
		DetailPageURL:      utils.Normalize(f.DetailURL),
		VideoURL:           utils.Normalize(f.VideoURL),
		Witnesses:          normalizeList(f.Witnesses),
		RelatedLegislation: normalizeList(f.Legislation),
		Source:             t.source,
		LastSeenAt:         t.now().UTC(),
	}

	summaryCommittee := committee
	if committee == models.UnknownCommittee {
		summaryCommittee = ""
	}

	m.ColloquialTitle = Summarize(title, summaryCommittee, meetingType)

	return m
}

// normalizeList normalizes and de-duplicates values, keeping first-seen order.
func normalizeList(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))

	for _, v := range values {
		v = utils.Normalize(v)
		if v == "" || seen[v] {
			continue
		}

		seen[v] = true
		out = append(out, v)
	}

	if len(out) == 0 {
		return nil
	}

	return out
}
