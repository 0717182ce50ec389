package normalizer

import (
	"regexp"
	"strings"

	"hearings/pkg/utils"
)

const (
	// titleTruncateAbove is the length above which titles are shortened.
	titleTruncateAbove = 140
	// titleTruncateTo is the length a long title is cut to.
	titleTruncateTo = 120
	// nominationCommaThreshold is the comma count that marks a nominee list.
	nominationCommaThreshold = 8
)

// summaryRule rewrites a title when pattern matches. Rules are tried in order.
type summaryRule struct {
	pattern *regexp.Regexp
	rewrite func(match []string) string
}

var summaryRules = []summaryRule{
	{
		pattern: regexp.MustCompile(`(?i)^business meeting to consider (?:the )?nominations?\b`),
		rewrite: func([]string) string { return "Business meeting: nominations" },
	},
	{
		pattern: regexp.MustCompile(`(?i)^business meeting to consider (.+)$`),
		rewrite: func(m []string) string { return "Business meeting: " + firstClause(m[1]) },
	},
	{
		pattern: regexp.MustCompile(`(?i)^an? oversight hearing to examine (.+)$`),
		rewrite: func(m []string) string { return "Oversight hearing on " + trimClause(m[1]) },
	},
	{
		pattern: regexp.MustCompile(`(?i)^hearings? to examine (.+)$`),
		rewrite: func(m []string) string { return "Examining " + trimClause(m[1]) },
	},
	{
		pattern: regexp.MustCompile(`(?i)^to receive a closed briefing on (.+)$`),
		rewrite: func(m []string) string { return "Closed briefing on " + trimClause(m[1]) },
	},
}

var clauseSplit = regexp.MustCompile(`[.;]`)

// Summarize produces a short colloquial title from an official one.
// It is a readability aid: inputs that fit no rule fall through to the
// (possibly truncated) title itself, or to "<committee> <type>" when empty.
func Summarize(official, committee, meetingType string) string {
	title := utils.Normalize(official)
	if title == "" {
		return strings.TrimSpace(utils.Normalize(committee) + " " + utils.Normalize(meetingType))
	}

	for _, rule := range summaryRules {
		if m := rule.pattern.FindStringSubmatch(title); m != nil {
			if out := rule.rewrite(m); strings.TrimSpace(out) != "" {
				return strings.TrimSpace(out)
			}
		}
	}

	if strings.Count(title, ",") >= nominationCommaThreshold && strings.Contains(strings.ToLower(title), "nomination") {
		return "Nominations hearing"
	}

	if len([]rune(title)) > titleTruncateAbove {
		return utils.Truncate(title, titleTruncateTo)
	}

	return title
}

func firstClause(s string) string {
	return trimClause(clauseSplit.Split(s, 2)[0])
}

func trimClause(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), " .;:,")
}
