package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/sevahub/volunteer-shortlister/internal/matching"
)

// Score bands used to colorize the shortlist table.
const (
	strongMatchScore   = 70.0
	moderateMatchScore = 40.0
)

var (
	strongMatch   = color.New(color.FgGreen).SprintFunc()
	moderateMatch = color.New(color.FgYellow).SprintFunc()
	weakMatch     = color.New(color.FgRed).SprintFunc()
)

// Table renders shortlist entries for the terminal.
type Table struct {
	table  *tablewriter.Table
	header []string
	rows   [][]string
}

// NewShortlistTable creates a table wired to stdout.
func NewShortlistTable() *Table {
	return NewShortlistTableWithWriter(os.Stdout)
}

// NewShortlistTableWithWriter creates a shortlist table with a custom writer.
func NewShortlistTableWithWriter(w io.Writer) *Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	return &Table{
		table:  table,
		header: []string{"rank", "name", "email", "score", "matching skills"},
	}
}

// AddResults appends shortlist entries as table rows.
func (t *Table) AddResults(results []matching.MatchResult) {
	for _, result := range results {
		if result.Volunteer == nil {
			continue
		}
		t.rows = append(t.rows, []string{
			fmt.Sprintf("%d", result.Rank),
			result.Volunteer.Name,
			result.Volunteer.Email,
			FormatScore(result.Score),
			strings.Join(result.MatchingSkills, ", "),
		})
	}
}

// Render outputs the table.
func (t *Table) Render() {
	t.table.Header(t.header)
	t.table.Bulk(t.rows)
	t.table.Render()
}

// FormatScore colorizes a match score by band.
func FormatScore(score float64) string {
	formatted := fmt.Sprintf("%.2f", score)
	switch {
	case score >= strongMatchScore:
		return strongMatch(formatted)
	case score >= moderateMatchScore:
		return moderateMatch(formatted)
	default:
		return weakMatch(formatted)
	}
}
