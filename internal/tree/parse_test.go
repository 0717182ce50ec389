package tree

import (
	"errors"
	"strings"
	"testing"
)

func TestParseXML(t *testing.T) {
	doc, err := ParseXMLString(`<?xml version="1.0" encoding="UTF-8"?>
<css_meetings_scheduled>
  <meeting>
    <identifier>12345</identifier>
    <committee code="JUD">Committee on the Judiciary</committee>
    <matter><![CDATA[Hearings to examine &amp; review]]></matter>
    <room>SD&nbsp;226</room>
  </meeting>
</css_meetings_scheduled>`)
	if err != nil {
		t.Fatalf("ParseXMLString: %v", err)
	}

	meetings := Path(doc, "css_meetings_scheduled", "meeting")
	if len(meetings) != 1 {
		t.Fatalf("expected 1 meeting, got %d", len(meetings))
	}

	m := meetings[0]

	if got := FindString(m, "identifier"); got != "12345" {
		t.Errorf("identifier = %q", got)
	}

	if got := FindString(m, "code"); got != "JUD" {
		t.Errorf("attribute code = %q", got)
	}

	if got := FindString(m, "matter"); got != "Hearings to examine &amp; review" {
		t.Errorf("matter = %q", got)
	}

	if got := FindString(m, "room"); got != "SD 226" {
		t.Errorf("room = %q", got)
	}
}

func TestParseXML_Malformed(t *testing.T) {
	if _, err := ParseXMLString(`<meetings><meeting>`); err == nil {
		t.Error("expected error for truncated XML")
	}

	if _, err := ParseXMLString(`   `); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestParseHTML(t *testing.T) {
	doc, err := ParseHTMLString(`<html><head><script>var EventID=99999;</script></head>
<body><h1 class="title">Markup of H.R. 1</h1>
<a href="ByEvent.aspx?EventID=118001">one</a>
<A HREF="XML.xml">xml</A></body></html>`)
	if err != nil {
		t.Fatalf("ParseHTMLString: %v", err)
	}

	links := Select(doc, ByName("a"))
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}

	if links[1].Attr("href") != "XML.xml" {
		t.Errorf("href = %q", links[1].Attr("href"))
	}

	if got := FindString(doc, "h1"); got != "Markup of H.R. 1" {
		t.Errorf("h1 = %q", got)
	}

	if got := doc.Content(); got == "" || strings.Contains(got, "99999") {
		t.Errorf("script content should be dropped, got %q", got)
	}
}
