package utils

import "testing"

func TestBuildHeaders(t *testing.T) {
	h := BuildHeaders("", map[string]string{"X-Run": "1"})
	if h.Get("User-Agent") != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want default", h.Get("User-Agent"))
	}

	if h.Get("X-Run") != "1" {
		t.Errorf("custom header missing")
	}

	h = BuildHeaders("probe/1.0", nil)
	if h.Get("User-Agent") != "probe/1.0" {
		t.Errorf("User-Agent = %q", h.Get("User-Agent"))
	}
}

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "https://docs.house.gov/Committee/Calendar/ByEvent.aspx?EventID=118000", want: true},
		{in: "http://localhost:8080/x", want: true},
		{in: "/Committee/Calendar/ByEvent.aspx", want: false},
		{in: "ftp://example.com", want: false},
		{in: "", want: false},
	}

	for _, tt := range tests {
		if got := IsValidURL(tt.in); got != tt.want {
			t.Errorf("IsValidURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolveURL(t *testing.T) {
	got := ResolveURL("https://docs.house.gov/Committee/Calendar/ByEvent.aspx?EventID=1", "/meetings/AP/AP00/20250315/118000/HHRG.xml")
	want := "https://docs.house.gov/meetings/AP/AP00/20250315/118000/HHRG.xml"

	if got != want {
		t.Errorf("ResolveURL = %q, want %q", got, want)
	}
}
