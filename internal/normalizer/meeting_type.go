package normalizer

import (
	"strings"
	"unicode"

	"hearings/pkg/utils"
)

// DefaultMeetingType is used when a source gives no meeting type.
const DefaultMeetingType = "Hearing"

var meetingTypes = map[string]string{
	"hearing":          "Hearing",
	"hearings":         "Hearing",
	"hhrg":             "Hearing",
	"markup":           "Markup",
	"hmkp":             "Markup",
	"business meeting": "Business Meeting",
	"business":         "Business Meeting",
	"meeting":          "Business Meeting",
	"hmtg":             "Business Meeting",
	"field hearing":    "Field Hearing",
	"closed briefing":  "Closed Briefing",
	"briefing":         "Briefing",
	"roundtable":       "Roundtable",
}

// CanonicalMeetingType maps a source meeting type to its display form.
func CanonicalMeetingType(raw string) string {
	v := utils.Normalize(raw)
	if v == "" {
		return DefaultMeetingType
	}

	if canon, ok := meetingTypes[strings.ToLower(v)]; ok {
		return canon
	}

	return titleCase(v)
}

var statuses = map[string]string{
	"scheduled":   "scheduled",
	"postponed":   "postponed",
	"canceled":    "canceled",
	"cancelled":   "canceled",
	"concluded":   "concluded",
	"completed":   "concluded",
	"rescheduled": "scheduled",
}

// CanonicalStatus maps a source status to one of scheduled, postponed,
// canceled or concluded. Anything else is "".
func CanonicalStatus(raw string) string {
	return statuses[strings.ToLower(utils.Normalize(raw))]
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}

	return strings.Join(words, " ")
}
