package normalizer

import (
	"regexp"
	"strings"
	"time"

	"hearings/pkg/utils"
)

// LongDateLayout is the canonical human-readable date form.
const LongDateLayout = "January 2, 2006"

var (
	isoDatePattern   = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?:[T ].*)?$`)
	dayMonPattern    = regexp.MustCompile(`^(\d{1,2}-[A-Za-z]{3}-\d{4})(?:\s+(\d{1,2}:\d{2}\s*[AaPp][Mm]))?$`)
	longDateInText   = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})\b`)
	clockInText      = regexp.MustCompile(`\b(\d{1,2}:\d{2})\s*([AaPp])\.?\s*[Mm]\.?`)
	extraDateLayouts = []string{
		LongDateLayout,
		"Monday, January 2, 2006",
		"Jan 2, 2006",
		"1/2/2006",
		"2 January 2006",
	}
	clockLayouts = []string{"15:04:05", "15:04", "3:04 PM", "3:04PM", "3:04 pm", "3:04pm"}
)

// ParseDate parses the raw date representations the sources supply.
// The clock return is non-empty when the raw value carried a time of day.
func ParseDate(raw string) (time.Time, string, bool) {
	raw = utils.Normalize(raw)
	if raw == "" {
		return time.Time{}, "", false
	}

	if m := isoDatePattern.FindStringSubmatch(raw); m != nil {
		t, err := time.Parse("2006-01-02", m[1])

		return t, "", err == nil
	}

	if m := dayMonPattern.FindStringSubmatch(raw); m != nil {
		t, err := time.Parse("2-Jan-2006", m[1])
		if err != nil {
			return time.Time{}, "", false
		}

		return t, NormalizeClock(m[2]), true
	}

	for _, layout := range extraDateLayouts {
		if t, err := time.Parse(layout, strings.ReplaceAll(raw, "  ", " ")); err == nil {
			return t, "", true
		}
	}

	return time.Time{}, "", false
}

// NormalizeDate converts the ISO value (preferred) or the raw value into the
// long form. Values that are not absolute calendar dates yield "".
func NormalizeDate(iso, raw string) (string, string) {
	if t, _, ok := ParseDate(iso); ok && isoDatePattern.MatchString(utils.Normalize(iso)) {
		_, clock, _ := ParseDate(raw)

		return t.Format(LongDateLayout), clock
	}

	if t, clock, ok := ParseDate(raw); ok {
		return t.Format(LongDateLayout), clock
	}

	return "", ""
}

// FindDate returns the first "Month D, YYYY" date in free text, in long form.
func FindDate(text string) string {
	m := longDateInText.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	t, err := time.Parse(LongDateLayout, m[1]+" "+m[2]+", "+m[3])
	if err != nil {
		return ""
	}

	return t.Format(LongDateLayout)
}

// FindClock returns the first 12-hour clock time in free text.
func FindClock(text string) string {
	m := clockInText.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	return NormalizeClock(m[1] + " " + strings.ToUpper(m[2]) + "M")
}

// NormalizeClock renders a source time as "3:04 PM". Midnight is how feeds
// spell "no time given", so it maps to "". Unparseable input is returned
// normalized.
func NormalizeClock(raw string) string {
	raw = utils.Normalize(raw)
	if raw == "" {
		return ""
	}

	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}

		if t.Hour() == 0 && t.Minute() == 0 {
			return ""
		}

		return t.Format("3:04 PM")
	}

	return raw
}
