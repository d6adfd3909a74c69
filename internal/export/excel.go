package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sevahub/volunteer-shortlister/internal/matching"
)

const (
	summarySheet   = "Summary"
	shortlistSheet = "Shortlist"
)

// ToExcel writes the shortlist into an xlsx workbook with a summary sheet and
// a ranked shortlist sheet.
func ToExcel(outputPath, jobDescription string, results []matching.MatchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(shortlistSheet); err != nil {
		return fmt.Errorf("creating shortlist sheet: %w", err)
	}

	if err := writeSummarySheet(f, jobDescription, results); err != nil {
		return fmt.Errorf("writing summary sheet: %w", err)
	}
	if err := writeShortlistSheet(f, results); err != nil {
		return fmt.Errorf("writing shortlist sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}

	return nil
}

func writeSummarySheet(f *excelize.File, jobDescription string, results []matching.MatchResult) error {
	f.SetColWidth(summarySheet, "A", "A", 25)
	f.SetColWidth(summarySheet, "B", "B", 60)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	row := 1
	f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Volunteer Shortlist Report")
	f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	f.MergeCell(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row += 2

	setLabeled := func(label string, value any) {
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), label)
		f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), value)
		row++
	}

	setLabeled("Job Description:", jobDescription)
	setLabeled("Generated:", time.Now().Format("2006-01-02 15:04:05"))
	setLabeled("Shortlisted Volunteers:", len(results))

	if len(results) > 0 {
		total := 0.0
		for _, r := range results {
			total += r.Score
		}
		setLabeled("Top Score:", results[0].Score)
		setLabeled("Average Score:", total/float64(len(results)))
	}

	return nil
}

func writeShortlistSheet(f *excelize.File, results []matching.MatchResult) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	headers := []string{"Rank", "Name", "Email", "Score", "Matching Skills", "Availability"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(shortlistSheet, cell, header)
		f.SetCellStyle(shortlistSheet, cell, cell, headerStyle)
	}

	f.SetColWidth(shortlistSheet, "B", "C", 30)
	f.SetColWidth(shortlistSheet, "E", "F", 40)

	for i, result := range results {
		if result.Volunteer == nil {
			continue
		}
		values := []any{
			result.Rank,
			result.Volunteer.Name,
			result.Volunteer.Email,
			result.Score,
			strings.Join(result.MatchingSkills, ", "),
			result.Volunteer.Availability,
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			f.SetCellValue(shortlistSheet, cell, value)
		}
	}

	return nil
}
