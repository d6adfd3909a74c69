package roster

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sevahub/volunteer-shortlister/internal/volunteer"
)

// Column headers recognized in roster workbooks. Matching is case-insensitive
// and ignores surrounding whitespace.
var knownColumns = map[string]func(v *volunteer.Volunteer, value string){
	"name":           func(v *volunteer.Volunteer, s string) { v.Name = s },
	"email":          func(v *volunteer.Volunteer, s string) { v.Email = s },
	"phone":          func(v *volunteer.Volunteer, s string) { v.Phone = s },
	"skills":         func(v *volunteer.Volunteer, s string) { v.Skills = s },
	"experience":     func(v *volunteer.Volunteer, s string) { v.Experience = s },
	"education":      func(v *volunteer.Volunteer, s string) { v.Education = s },
	"certifications": func(v *volunteer.Volunteer, s string) { v.Certifications = s },
	"interests":      func(v *volunteer.Volunteer, s string) { v.Interests = s },
	"languages":      func(v *volunteer.Volunteer, s string) { v.Languages = s },
	"availability":   func(v *volunteer.Volunteer, s string) { v.Availability = s },
}

// Import reads volunteer records from the first sheet of an xlsx workbook.
// The first row must carry column headers. Rows without both a name and an
// email are skipped.
func Import(path string, logger *zap.Logger) (*volunteer.Volunteers, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("roster workbook %q has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &volunteer.Volunteers{}, nil
	}

	columns := headerIndex(rows[0])
	if len(columns) == 0 {
		return nil, fmt.Errorf("sheet %q has no recognized columns", sheets[0])
	}

	volunteers := &volunteer.Volunteers{}
	skipped := 0
	for i, row := range rows[1:] {
		v := &volunteer.Volunteer{}
		for idx, assign := range columns {
			if idx < len(row) {
				assign(v, strings.TrimSpace(row[idx]))
			}
		}

		if strings.TrimSpace(v.Name) == "" || strings.TrimSpace(v.Email) == "" {
			skipped++
			continue
		}

		// Row number doubles as a stable id until the record is persisted.
		v.ID = strconv.Itoa(i + 2)
		volunteers.Items = append(volunteers.Items, v)
	}

	if logger != nil {
		logger.Info("roster imported",
			zap.String("path", path),
			zap.String("sheet", sheets[0]),
			zap.Int("volunteers", volunteers.Len()),
			zap.Int("skipped_rows", skipped),
		)
	}

	return volunteers, nil
}

func headerIndex(header []string) map[int]func(v *volunteer.Volunteer, value string) {
	columns := make(map[int]func(v *volunteer.Volunteer, value string))
	for idx, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if assign, ok := knownColumns[name]; ok {
			columns[idx] = assign
		}
	}
	return columns
}
