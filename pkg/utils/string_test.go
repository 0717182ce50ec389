package utils

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: " \t\n ", want: ""},
		{name: "nbsp", in: "Dirksen\u00a0Senate\u00a0\u00a0Office", want: "Dirksen Senate Office"},
		{name: "collapse runs", in: "  Hearing   to\n\texamine  ", want: "Hearing to examine"},
		{name: "control chars", in: "Room\x00 SD-106\x07", want: "Room SD-106"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", " ", " second ", "third"); got != "second" {
		t.Errorf("FirstNonEmpty = %q, want second", got)
	}

	if got := FirstNonEmpty(); got != "" {
		t.Errorf("FirstNonEmpty() = %q, want empty", got)
	}

	if got := FirstNonEmpty("", " "); got != "" {
		t.Errorf("FirstNonEmpty all blank = %q, want empty", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}

	if got := Truncate("abcdefghij", 4); got != "abcd"+Ellipsis {
		t.Errorf("Truncate = %q, want abcd…", got)
	}

	if got := Truncate("héllo wörld", 5); got != "héllo"+Ellipsis {
		t.Errorf("Truncate runes = %q", got)
	}
}

func TestSlug(t *testing.T) {
	if got := Slug("Committee on the Judiciary"); got != "committee-on-the-judiciary" {
		t.Errorf("Slug = %q", got)
	}

	if got := Slug("  --Energy & Commerce!! "); got != "energy-commerce" {
		t.Errorf("Slug = %q", got)
	}
}
