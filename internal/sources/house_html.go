package sources

import (
	"context"
	"regexp"
	"strings"

	"hearings/internal/models"
	"hearings/internal/normalizer"
	"hearings/internal/tree"
	"hearings/pkg/utils"
)

const houseBuildings = `Rayburn|Longworth|Cannon|Capitol Visitor Center|Capitol|CVC|HVC|RHOB|LHOB|CHOB|Ford`

var (
	// A building hint directly followed by "Washington, D.C.".
	locationWithCity = regexp.MustCompile(`((?:(?:Room\s+)?[A-Z]{0,3}-?\d{1,5}[A-Z]?,?\s+)?(?:` + houseBuildings + `)(?:\s+(?:House\s+)?Office\s+Building|\s+HOB|\s+Building)?(?:,?\s+Room\s+[A-Z]{0,3}-?\d{1,5}[A-Z]?)?),?\s+Washington,?\s+D\.?\s?C\.?`)
	// The same hint without the city.
	locationBare = regexp.MustCompile(`((?:(?:Room\s+)?[A-Z]{0,3}-?\d{1,5}[A-Z]?,?\s+)?(?:` + houseBuildings + `)(?:\s+(?:House\s+)?Office\s+Building|\s+HOB))`)

	titleIDs     = []string{"previewTitle", "meetingTitle", "title"}
	subcommittee = regexp.MustCompile(`\bSubcommittee on [A-Z][^();\n]*?(?:\s*[);]|\.(?:\s|$)|\s[-–|]\s|$)`)
)

// resolveHTML scrapes the event detail page itself.
func (h *House) resolveHTML(ctx context.Context, ev *eventPage) (models.Meeting, error) {
	page, err := h.page(ctx, ev)
	if err != nil {
		return models.Meeting{}, err
	}

	return h.process(houseHTMLFields(page, ev))
}

// houseHTMLFields extracts meeting fields from an event detail page.
func houseHTMLFields(page *tree.Node, ev *eventPage) normalizer.Fields {
	text := page.Content()
	leaves := leafTexts(page)

	f := normalizer.Fields{
		ID:        ev.id,
		Title:     pageTitle(page),
		DateRaw:   normalizer.FindDate(text),
		Time:      normalizer.FindClock(text),
		Location:  FindLocation(text),
		DetailURL: ev.url,
	}

	for _, t := range leaves {
		if f.Committee == "" {
			f.Committee = normalizer.FromText(t)
		}

		if f.Subcommittee == "" {
			if m := subcommittee.FindString(t); m != "" {
				f.Subcommittee = strings.TrimRight(strings.TrimSpace(m), " ).;-–|")
			}
		}
	}

	for _, t := range leaves {
		if s := normalizer.CanonicalStatus(t); s != "" {
			f.Status = s

			break
		}
	}

	return f
}

// pageTitle picks the meeting title from the usual title holders.
func pageTitle(page *tree.Node) string {
	for _, id := range titleIDs {
		nodes := tree.Select(page, func(n *tree.Node) bool {
			return strings.EqualFold(n.Attr("id"), id) || hasClass(n, id)
		})

		for _, n := range nodes {
			if t := n.Content(); t != "" {
				return t
			}
		}
	}

	if t := tree.FindString(page, "h1"); t != "" {
		return t
	}

	return tree.FindString(page, "h2")
}

// FindLocation returns the room and building mentioned in text, preferring
// a hint followed by "Washington, D.C.".
func FindLocation(text string) string {
	if m := locationWithCity.FindStringSubmatch(text); m != nil {
		return strings.TrimRight(utils.Normalize(m[1]), ", ")
	}

	if m := locationBare.FindStringSubmatch(text); m != nil {
		return utils.Normalize(m[1])
	}

	return ""
}

func hasClass(n *tree.Node, class string) bool {
	for _, c := range strings.Fields(n.Attr("class")) {
		if strings.EqualFold(c, class) {
			return true
		}
	}

	return false
}

// leafTexts returns the content of elements that hold only text, in
// document order.
func leafTexts(page *tree.Node) []string {
	var out []string

	tree.Walk(page, func(n *tree.Node) bool {
		if n.Kind != tree.ElementNode || len(n.Children) == 0 {
			return true
		}

		for _, c := range n.Children {
			if c.Kind != tree.TextNode {
				return true
			}
		}

		if t := n.Content(); t != "" {
			out = append(out, t)
		}

		return false
	})

	return out
}
