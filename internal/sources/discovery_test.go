package sources

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"hearings/internal/crawler"
	"hearings/internal/logger"
	"hearings/internal/tree"
)

const houseBase = "https://docs.house.gov"

func TestWeekOf(t *testing.T) {
	tests := []struct {
		day  time.Time
		want string
	}{
		{time.Date(2025, 3, 12, 11, 0, 0, 0, Eastern), "03092025_03152025"},
		{time.Date(2025, 3, 9, 0, 0, 0, 0, Eastern), "03092025_03152025"},
		{time.Date(2025, 3, 15, 23, 59, 0, 0, Eastern), "03092025_03152025"},
		{time.Date(2024, 12, 31, 8, 0, 0, 0, Eastern), "12292024_01042025"},
	}

	for _, tt := range tests {
		if got := WeekOf(tt.day).String(); got != tt.want {
			t.Errorf("WeekOf(%v) = %q, expected %q", tt.day, got, tt.want)
		}
	}
}

func TestWindow(t *testing.T) {
	weeks := Window(time.Date(2025, 3, 12, 11, 0, 0, 0, Eastern), 1, 2)

	want := []string{"03022025_03082025", "03092025_03152025", "03162025_03222025", "03232025_03292025"}
	if len(weeks) != len(want) {
		t.Fatalf("Expected %d weeks, got %d", len(want), len(weeks))
	}

	for i, w := range weeks {
		if w.String() != want[i] {
			t.Errorf("Week %d = %q, expected %q", i, w.String(), want[i])
		}
	}
}

func TestWeekAndEventURL(t *testing.T) {
	w := WeekOf(time.Date(2025, 3, 12, 0, 0, 0, 0, Eastern))

	if got := WeekURL(houseBase+"/", w); got != "https://docs.house.gov/Committee/Calendar/ByWeek.aspx?WeekOf=03092025_03152025" {
		t.Errorf("Unexpected week URL %q", got)
	}

	if got := EventURL(houseBase, "118001"); got != "https://docs.house.gov/Committee/Calendar/ByEvent.aspx?EventID=118001" {
		t.Errorf("Unexpected event URL %q", got)
	}
}

func TestExtractEventIDs(t *testing.T) {
	raw := []byte(`<html><body>
		<a href="/Committee/Calendar/ByEvent.aspx?EventID=118002">B</a>
		<a href="ByEvent.aspx?EventID=118001">A</a>
		<a href="/Committee/Calendar/ByEvent.aspx?EventID=118002">B again</a>
		<a href="/Other.aspx?EventID=999999">not a detail link</a>
		<script>var next = "EventID=118009";</script>
	</body></html>`)

	doc, err := tree.ParseHTML(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}

	// Links come first; the raw scan adds IDs links missed.
	want := []string{"118002", "118001", "999999", "118009"}
	if got := ExtractEventIDs(doc, raw); !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractEventIDs = %v, expected %v", got, want)
	}
}

func TestDiscoverer_Discover(t *testing.T) {
	weeks := Window(time.Date(2025, 3, 12, 11, 0, 0, 0, Eastern), 1, 1)

	f := newMockFetcher(map[string]string{
		WeekURL(houseBase, weeks[0]): `<a href="ByEvent.aspx?EventID=110001">x</a><a href="ByEvent.aspx?EventID=110002">y</a>`,
		WeekURL(houseBase, weeks[2]): `<a href="ByEvent.aspx?EventID=110002">y</a><a href="ByEvent.aspx?EventID=110003">z</a>`,
	})

	d := NewDiscoverer(crawler.NewClientWithFetcher(f), houseBase, logger.Discard())

	ids, results, err := d.Discover(context.Background(), weeks)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if want := []string{"110001", "110002", "110003"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("Discover ids = %v, expected %v", ids, want)
	}

	if len(results) != 3 || results[1].Err == nil {
		t.Errorf("Expected the middle week to fail, got %+v", results)
	}
}

func TestDiscoverer_AllWeeksFailed(t *testing.T) {
	weeks := Window(time.Date(2025, 3, 12, 11, 0, 0, 0, Eastern), 0, 1)
	d := NewDiscoverer(crawler.NewClientWithFetcher(newMockFetcher(nil)), houseBase, logger.Discard())

	if _, _, err := d.Discover(context.Background(), weeks); !errors.Is(err, ErrAllWeeksFailed) {
		t.Errorf("Expected ErrAllWeeksFailed, got %v", err)
	}
}
