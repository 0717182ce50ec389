package sources

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"hearings/internal/models"
	"hearings/internal/tree"
)

const houseMeetingXML = `<?xml version="1.0" encoding="UTF-8"?>
<committee-meeting meeting-type="HHRG" meeting-status="Scheduled">
  <meeting-details>
    <meeting-title>Hearing on Pipeline Safety</meeting-title>
    <committees><committee-name id="IF00">Committee on Energy and Commerce</committee-name></committees>
    <subcommittees><committee-name id="IF03">Subcommittee on Energy</committee-name></subcommittees>
    <meeting-date><calendar-date>2025-03-13</calendar-date><start-time>10:00:00</start-time></meeting-date>
    <meeting-location><room>2123</room><building>Rayburn House Office Building</building></meeting-location>
  </meeting-details>
  <witnesses><witness><name>Jane Doe</name></witness><witness><name>John Roe</name></witness></witnesses>
  <meeting-documents><committee-document legis-num="H.R. 100" type="BR"/></meeting-documents>
</committee-meeting>`

const houseHTMLPage = `<html><head><title>Event page</title></head><body>
<a href="/Calendar/Missing.xml">Meeting XML</a>
<h1 id="previewTitle">Markup of Various Measures</h1>
<p>Committee on Ways and Means</p>
<p>Thursday, March 13, 2025 (2:00 PM)</p>
<p>1100 Longworth House Office Building, Washington, D.C. 20515</p>
</body></html>`

const (
	xmlAttachment = "https://docs.house.gov/meetings/IF/IF03/20250313/118001/HHRG-119-IF03-20250313.xml"
)

func houseFixture() *mockFetcher {
	week := WeekURL(houseBase, WeekOf(fixedNow.In(Eastern)))

	return newMockFetcher(map[string]string{
		week: `<html><body>
			<a href="/Committee/Calendar/ByEvent.aspx?EventID=118001">Pipeline safety</a>
			<a href="/Committee/Calendar/ByEvent.aspx?EventID=118002">Markup</a>
			<a href="/Committee/Calendar/ByEvent.aspx?EventID=118003">Gone</a>
		</body></html>`,
		EventURL(houseBase, "118001"): `<html><body><a href="/meetings/IF/IF03/20250313/118001/HHRG-119-IF03-20250313.xml">XML</a><h1>ignored</h1></body></html>`,
		xmlAttachment:                 houseMeetingXML,
		EventURL(houseBase, "118002"): houseHTMLPage,
	})
}

func TestHouse_Fetch(t *testing.T) {
	f := houseFixture()
	h := newTestHouse(f, 2)

	res, err := h.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	outcomes := make([]Outcome, 0, len(res.Events))
	for _, ev := range res.Events {
		outcomes = append(outcomes, ev.Outcome)
	}

	if want := []Outcome{OutcomeXML, OutcomeHTML, OutcomePlaceholder}; !reflect.DeepEqual(outcomes, want) {
		t.Fatalf("Outcomes = %v, expected %v", outcomes, want)
	}

	if len(res.Meetings) != 3 {
		t.Fatalf("Expected 3 meetings, got %d", len(res.Meetings))
	}

	for i, id := range []string{"118001", "118002", "118003"} {
		if res.Meetings[i].MeetingID != id {
			t.Errorf("Expected meeting %d to be %s, got %s", i, id, res.Meetings[i].MeetingID)
		}
	}

	if res.Diagnostics.UnresolvedCommittee != 1 {
		t.Errorf("Expected the placeholder to be the only unresolved record, got %+v", res.Diagnostics)
	}

	// Each event page is fetched once across strategies.
	if n := f.Calls(EventURL(houseBase, "118002")); n != 1 {
		t.Errorf("Expected one fetch of the event page, got %d", n)
	}

	if n := f.Calls(EventURL(houseBase, "118003")); n != 1 {
		t.Errorf("Expected one fetch of the failing event page, got %d", n)
	}
}

func TestHouse_XMLStrategy(t *testing.T) {
	h := newTestHouse(houseFixture(), 1)

	ev := h.ResolveEvent(context.Background(), "118001")
	if ev.Outcome != OutcomeXML {
		t.Fatalf("Expected xml outcome, got %s (%v)", ev.Outcome, ev.Errors)
	}

	m := ev.Meeting

	checks := map[string][2]string{
		"title":        {m.OfficialTitle, "Hearing on Pipeline Safety"},
		"committee":    {m.CommitteeName, "Committee on Energy and Commerce"},
		"subcommittee": {m.SubcommitteeName, "Subcommittee on Energy"},
		"date":         {m.Date, "March 13, 2025"},
		"time":         {m.StartTime, "10:00 AM"},
		"location":     {m.Location, "2123 Rayburn House Office Building"},
		"type":         {m.MeetingType, "Hearing"},
		"status":       {m.Status, "scheduled"},
		"detail":       {m.DetailPageURL, EventURL(houseBase, "118001")},
	}

	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, expected %q", name, c[0], c[1])
		}
	}

	if !reflect.DeepEqual(m.Witnesses, []string{"Jane Doe", "John Roe"}) {
		t.Errorf("Unexpected witnesses %v", m.Witnesses)
	}

	if !reflect.DeepEqual(m.RelatedLegislation, []string{"H.R. 100"}) {
		t.Errorf("Unexpected legislation %v", m.RelatedLegislation)
	}

	if m.Chamber != models.ChamberHouse || m.Source != models.SourceHouse {
		t.Errorf("Unexpected chamber/source %q/%q", m.Chamber, m.Source)
	}
}

func TestHouse_HTMLFallback(t *testing.T) {
	h := newTestHouse(houseFixture(), 1)

	ev := h.ResolveEvent(context.Background(), "118002")
	if ev.Outcome != OutcomeHTML {
		t.Fatalf("Expected html outcome, got %s (%v)", ev.Outcome, ev.Errors)
	}

	if len(ev.Errors) != 1 {
		t.Errorf("Expected the xml failure to be recorded, got %v", ev.Errors)
	}

	m := ev.Meeting
	if m.OfficialTitle != "Markup of Various Measures" {
		t.Errorf("Unexpected title %q", m.OfficialTitle)
	}

	if m.CommitteeName != "Committee on Ways and Means" {
		t.Errorf("Unexpected committee %q", m.CommitteeName)
	}

	if m.Date != "March 13, 2025" || m.StartTime != "2:00 PM" {
		t.Errorf("Unexpected date/time %q %q", m.Date, m.StartTime)
	}

	if m.Location != "1100 Longworth House Office Building" {
		t.Errorf("Unexpected location %q", m.Location)
	}
}

func TestHouse_Placeholder(t *testing.T) {
	h := newTestHouse(houseFixture(), 1)

	ev := h.ResolveEvent(context.Background(), "118003")
	if ev.Outcome != OutcomePlaceholder {
		t.Fatalf("Expected placeholder outcome, got %s", ev.Outcome)
	}

	m := ev.Meeting
	if m.CommitteeName != models.UnknownCommittee || m.MeetingID != "118003" {
		t.Errorf("Unexpected placeholder %+v", m)
	}

	if m.DetailPageURL != EventURL(houseBase, "118003") {
		t.Errorf("Expected event URL on placeholder, got %q", m.DetailPageURL)
	}

	if m.OfficialTitle != "" {
		t.Errorf("Expected no title on placeholder, got %q", m.OfficialTitle)
	}

	if len(ev.Errors) != 2 {
		t.Errorf("Expected both strategy errors, got %v", ev.Errors)
	}

	if !errors.Is(ev.Errors[0], errNotFound) {
		t.Errorf("Expected fetch error, got %v", ev.Errors[0])
	}
}

func TestHouse_PartialHTMLKept(t *testing.T) {
	page := `<html><body>
<h1 id="previewTitle">Oversight of the Federal Aviation Administration</h1>
<p>House Energy and Commerce</p>
<p>Thursday, March 13, 2025 (2:00 PM)</p>
<p>2123 Rayburn House Office Building, Washington, D.C.</p>
</body></html>`

	h := newTestHouse(newMockFetcher(map[string]string{EventURL(houseBase, "118004"): page}), 1)

	ev := h.ResolveEvent(context.Background(), "118004")
	if ev.Outcome != OutcomeHTML {
		t.Fatalf("Expected html outcome for a partial page, got %s (%v)", ev.Outcome, ev.Errors)
	}

	m := ev.Meeting
	if m.OfficialTitle != "Oversight of the Federal Aviation Administration" {
		t.Errorf("Unexpected title %q", m.OfficialTitle)
	}

	if m.Date != "March 13, 2025" || m.StartTime != "2:00 PM" {
		t.Errorf("Unexpected date/time %q %q", m.Date, m.StartTime)
	}

	if m.Location != "2123 Rayburn House Office Building" {
		t.Errorf("Unexpected location %q", m.Location)
	}

	if m.CommitteeName != models.UnknownCommittee {
		t.Errorf("Expected %q, got %q", models.UnknownCommittee, m.CommitteeName)
	}

	if !errors.Is(ev.Errors[len(ev.Errors)-1], ErrIncomplete) {
		t.Errorf("Expected the incomplete resolution recorded, got %v", ev.Errors)
	}

	if d := h.processor.Diagnose([]models.Meeting{*m}); d.UnresolvedCommittee != 1 {
		t.Errorf("Expected the record counted as unresolved, got %+v", d)
	}
}

func TestHouse_PartialXMLPreferred(t *testing.T) {
	xmlDoc := `<committee-meeting>
  <meeting-details><meeting-title>Member Day Hearing</meeting-title></meeting-details>
  <witnesses><witness><name>Jane Doe</name></witness></witnesses>
</committee-meeting>`
	page := `<html><body><a href="/meetings/x/118005.xml">XML</a><h1 id="previewTitle">Member Day</h1></body></html>`

	h := newTestHouse(newMockFetcher(map[string]string{
		EventURL(houseBase, "118005"):                  page,
		"https://docs.house.gov/meetings/x/118005.xml": xmlDoc,
	}), 1)

	ev := h.ResolveEvent(context.Background(), "118005")
	if ev.Outcome != OutcomeXML {
		t.Fatalf("Expected the equally complete xml record kept, got %s", ev.Outcome)
	}

	if ev.Meeting.OfficialTitle != "Member Day Hearing" || !reflect.DeepEqual(ev.Meeting.Witnesses, []string{"Jane Doe"}) {
		t.Errorf("Expected xml fields kept, got %+v", ev.Meeting)
	}
}

func TestHouse_CanceledContext(t *testing.T) {
	h := newTestHouse(houseFixture(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := h.resolveAll(ctx, []string{"118001", "118002"})
	for _, r := range results {
		if r.Outcome != OutcomeSkipped || r.Meeting != nil {
			t.Errorf("Expected skipped without a meeting, got %+v", r)
		}
	}

	if _, err := h.Fetch(ctx); !errors.Is(err, ErrAllWeeksFailed) {
		t.Errorf("Expected discovery failure on canceled context, got %v", err)
	}
}

func TestFindLocation(t *testing.T) {
	tests := map[string]string{
		"Held in 2123 Rayburn House Office Building, Washington, D.C. 20515": "2123 Rayburn House Office Building",
		"Room HVC-210, Capitol Visitor Center Washington, DC":                "Room HVC-210, Capitol Visitor Center",
		"Location: 1334 Longworth HOB":                                       "1334 Longworth HOB",
		"Remote hearing via Webex":                                           "",
	}

	for in, want := range tests {
		if got := FindLocation(in); got != want {
			t.Errorf("FindLocation(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestFindXMLLink(t *testing.T) {
	doc, err := tree.ParseHTMLString(`<a href="/a.pdf">PDF</a><a href="/b.htm">Download XML</a><a href="/c.XML?v=1">file</a>`)
	if err != nil {
		t.Fatal(err)
	}

	got, err := findXMLLink(doc, "https://docs.house.gov/Committee/Calendar/ByEvent.aspx?EventID=1")
	if err != nil {
		t.Fatal(err)
	}

	if got != "https://docs.house.gov/c.XML?v=1" {
		t.Errorf("Expected the .xml attachment, got %q", got)
	}

	doc, _ = tree.ParseHTMLString(`<a href="/a.pdf">PDF</a>`)
	if _, err := findXMLLink(doc, houseBase); !errors.Is(err, ErrNoXMLLink) {
		t.Errorf("Expected ErrNoXMLLink, got %v", err)
	}
}
