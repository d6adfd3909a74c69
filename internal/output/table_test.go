package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/sevahub/volunteer-shortlister/internal/matching"
	"github.com/sevahub/volunteer-shortlister/internal/volunteer"
)

func TestTableRender(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	table := NewShortlistTableWithWriter(&buf)
	table.AddResults([]matching.MatchResult{
		{
			Volunteer:      &volunteer.Volunteer{Name: "Asha Rao", Email: "asha@example.org"},
			Score:          87.5,
			MatchingSkills: []string{"python", "sql"},
			Rank:           1,
		},
		{
			Volunteer: nil,
		},
	})
	table.Render()

	out := buf.String()
	for _, want := range []string{"Asha Rao", "asha@example.org", "87.50", "python, sql"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatScoreBands(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		score float64
		want  string
	}{
		{92.31, "92.31"},
		{55.0, "55.00"},
		{12.5, "12.50"},
		{0, "0.00"},
	}

	for _, tt := range tests {
		if got := FormatScore(tt.score); got != tt.want {
			t.Fatalf("FormatScore(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
