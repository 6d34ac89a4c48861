package sheet

import "strings"

// Export file metadata.
const (
	ExportFileName = "job-requests-data.csv"
	ExportMIMEType = "text/csv"
)

const (
	fieldSeparator = ","
	lineSeparator  = "\n"
)

// Export renders rows as comma-separated text: a header of column labels, then
// one line per row in the given order. Values are written verbatim; a value
// containing a comma or newline shifts the columns after it.
func Export(rows []Row) string {
	cols := Columns()
	lines := make([]string, 0, len(rows)+1)

	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Label()
	}

	lines = append(lines, strings.Join(header, fieldSeparator))

	for _, row := range rows {
		fields := make([]string, len(cols))
		for i, col := range cols {
			fields[i] = col.Get(row)
		}

		lines = append(lines, strings.Join(fields, fieldSeparator))
	}

	return strings.Join(lines, lineSeparator)
}

// ImportDefaults fills fields an import line leaves empty or missing.
type ImportDefaults struct {
	Today     string // day-month-year, used for submitted and dueDate
	CreatedBy string
}

// ParseImport reads text in the [Export] layout. The first line is skipped.
// Each following line is split positionally on commas; empty or missing
// fields take their defaults. Lines whose job request ends up empty are
// dropped. Returned rows have no id.
func ParseImport(text string, defaults ImportDefaults) []Row {
	lines := strings.Split(text, lineSeparator)
	if len(lines) <= 1 {
		return []Row{}
	}

	rows := make([]Row, 0, len(lines)-1)

	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		values := strings.Split(line, fieldSeparator)

		field := func(i int, fallback string) string {
			if i < len(values) && values[i] != "" {
				return values[i]
			}

			return fallback
		}

		row := Row{
			JobRequest:  field(0, ""),
			Submitted:   field(1, defaults.Today),
			Status:      Status(field(2, string(StatusSubmitted))),
			Submitter:   field(3, ""),
			URL:         field(4, ""),
			Assignee:    field(5, ""),
			Priority:    Priority(field(6, string(PriorityMedium))),
			DueDate:     field(7, defaults.Today),
			Budget:      field(8, "0"),
			EstValue:    field(9, "0"),
			Description: field(10, ""),
			CreatedBy:   defaults.CreatedBy,
		}

		if row.JobRequest == "" {
			continue
		}

		rows = append(rows, row)
	}

	return rows
}
