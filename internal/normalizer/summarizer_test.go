package normalizer

import (
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		official  string
		committee string
		mtgType   string
		want      string
	}{
		{
			name:     "Business meeting on a nomination",
			official: "Business meeting to consider the nomination of Jane Doe",
			want:     "Business meeting: nominations",
		},
		{
			name:     "Business meeting keeps first clause",
			official: "Business meeting to consider pending legislation; and other matters.",
			want:     "Business meeting: pending legislation",
		},
		{
			name:     "Oversight hearing",
			official: "An oversight hearing to examine fraud in federal contracting.",
			want:     "Oversight hearing on fraud in federal contracting",
		},
		{
			name:     "Hearings to examine, any case",
			official: "HEARINGS TO EXAMINE the state of rural broadband.",
			want:     "Examining the state of rural broadband",
		},
		{
			name:     "Closed briefing",
			official: "To receive a closed briefing on certain intelligence matters",
			want:     "Closed briefing on certain intelligence matters",
		},
		{
			name:     "Nominee list",
			official: "Hearings on the nomination of A, B, C, D, E, F, G, H, and I",
			want:     "Nominations hearing",
		},
		{
			name:     "Plain title passes through normalized",
			official: "  Markup of  H.R. 1234 ",
			want:     "Markup of H.R. 1234",
		},
		{
			name:      "Empty title falls back to committee and type",
			committee: "Committee on Finance",
			mtgType:   "Hearing",
			want:      "Committee on Finance Hearing",
		},
		{
			name: "Empty everything",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.official, tt.committee, tt.mtgType); got != tt.want {
				t.Errorf("Summarize(%q) = %q, want %q", tt.official, got, tt.want)
			}
		})
	}
}

func TestSummarize_Truncation(t *testing.T) {
	exact := strings.Repeat("a", titleTruncateAbove)
	if got := Summarize(exact, "", ""); got != exact {
		t.Errorf("Expected a %d-char title unchanged, got %d chars", titleTruncateAbove, len(got))
	}

	long := strings.Repeat("word ", 40)

	got := Summarize(long, "", "")
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Expected ellipsis suffix, got %q", got)
	}

	if n := len([]rune(got)); n > titleTruncateTo+1 {
		t.Errorf("Expected at most %d runes, got %d", titleTruncateTo+1, n)
	}
}
