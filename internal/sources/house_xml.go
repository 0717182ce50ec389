package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"hearings/internal/models"
	"hearings/internal/normalizer"
	"hearings/internal/tree"
	"hearings/pkg/utils"
)

// Field aliases for docs.house.gov meeting XML.
var (
	houseTitleFields     = []string{"meeting-title", "title", "hearing-title"}
	houseISODateFields   = []string{"calendar-date"}
	houseDateFields      = []string{"meeting-date", "date"}
	houseTimeFields      = []string{"start-time", "time"}
	houseRoomFields      = []string{"room"}
	houseBuildingFields  = []string{"building"}
	houseLocationFields  = []string{"meeting-location", "location"}
	houseStatusFields    = []string{"meeting-status", "status"}
	houseTypeFields      = []string{"meeting-type", "type"}
	houseVideoFields     = []string{"video-url", "webcast-url", "video"}
	houseWitnessName     = []string{"name", "witness-name"}
	houseLegislationAttr = "legis-num"
)

// findXMLLink returns the absolute URL of the first XML attachment linked
// from an event page.
func findXMLLink(doc *tree.Node, pageURL string) (string, error) {
	var fallback string

	for _, a := range tree.Select(doc, tree.ByName("a")) {
		href := strings.TrimSpace(a.Attr("href"))
		if href == "" {
			continue
		}

		if isXMLHref(href) {
			return utils.ResolveURL(pageURL, href), nil
		}

		if fallback == "" && strings.Contains(strings.ToUpper(a.Content()), "XML") {
			fallback = utils.ResolveURL(pageURL, href)
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", ErrNoXMLLink
}

func isXMLHref(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}

	return strings.HasSuffix(strings.ToLower(u.Path), ".xml")
}

// resolveXML follows the event page's XML attachment and maps it.
func (h *House) resolveXML(ctx context.Context, ev *eventPage) (models.Meeting, error) {
	page, err := h.page(ctx, ev)
	if err != nil {
		return models.Meeting{}, err
	}

	link, err := findXMLLink(page, ev.url)
	if err != nil {
		return models.Meeting{}, err
	}

	doc, err := h.client.GetXML(ctx, link)
	if err != nil {
		return models.Meeting{}, fmt.Errorf("event %s xml: %w", ev.id, err)
	}

	return h.process(houseXMLFields(doc, ev))
}

// houseXMLFields extracts meeting fields from a meeting XML document.
func houseXMLFields(doc *tree.Node, ev *eventPage) normalizer.Fields {
	committee, code := firstCommittee(doc, "committees")
	subcommittee, subCode := firstCommittee(doc, "subcommittees")

	location := strings.TrimSpace(tree.FindString(doc, houseRoomFields...) + " " + tree.FindString(doc, houseBuildingFields...))
	if location == "" {
		location = tree.FindString(doc, houseLocationFields...)
	}

	return normalizer.Fields{
		ID:            ev.id,
		CommitteeCode: utils.FirstNonEmpty(code, subCode),
		Committee:     committee,
		Subcommittee:  subcommittee,
		Title:         tree.FindString(doc, houseTitleFields...),
		MeetingType:   tree.FindString(doc, houseTypeFields...),
		DateISO:       tree.FindString(doc, houseISODateFields...),
		DateRaw:       tree.FindString(doc, houseDateFields...),
		Time:          tree.FindString(doc, houseTimeFields...),
		Location:      location,
		Status:        tree.FindString(doc, houseStatusFields...),
		DetailURL:     ev.url,
		VideoURL:      tree.FindString(doc, houseVideoFields...),
		Witnesses:     witnesses(doc),
		Legislation:   legislation(doc),
	}
}

// firstCommittee returns the name and id attribute of the first
// committee-name element under the named group.
func firstCommittee(doc *tree.Node, group string) (string, string) {
	for _, g := range tree.Select(doc, tree.ByName(group)) {
		for _, c := range tree.Select(g, tree.ByName("committee-name", "committee")) {
			if name := c.Content(); name != "" || c.Attr("id") != "" {
				return name, c.Attr("id")
			}
		}
	}

	return "", ""
}

func witnesses(doc *tree.Node) []string {
	var out []string

	for _, w := range tree.Select(doc, tree.ByName("witness")) {
		if name := utils.FirstNonEmpty(tree.FindString(w, houseWitnessName...), w.Content()); name != "" {
			out = append(out, name)
		}
	}

	return out
}

func legislation(doc *tree.Node) []string {
	var out []string

	for _, n := range tree.Select(doc, func(n *tree.Node) bool { return n.Attr(houseLegislationAttr) != "" }) {
		out = append(out, n.Attr(houseLegislationAttr))
	}

	return append(out, tree.FindAll(doc, "legis-num", "bill-number")...)
}
