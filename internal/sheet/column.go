package sheet

import (
	"fmt"
	"slices"
)

// Column identifies one editable field of a [Row]. The zero value is not a
// column; use [ParseColumn] to turn a key into one.
type Column int

// Columns in export order.
const (
	ColumnJobRequest Column = iota + 1
	ColumnSubmitted
	ColumnStatus
	ColumnSubmitter
	ColumnURL
	ColumnAssignee
	ColumnPriority
	ColumnDueDate
	ColumnBudget
	ColumnEstValue
	ColumnDescription
)

type columnSpec struct {
	key        string
	label      string
	searchable bool
	get        func(*Row) string
	set        func(*Row, string)
}

var columnSpecs = map[Column]columnSpec{
	ColumnJobRequest: {
		key: "jobRequest", label: "Job Request", searchable: true,
		get: func(r *Row) string { return r.JobRequest },
		set: func(r *Row, v string) { r.JobRequest = v },
	},
	ColumnSubmitted: {
		key: "submitted", label: "Submitted",
		get: func(r *Row) string { return r.Submitted },
		set: func(r *Row, v string) { r.Submitted = v },
	},
	ColumnStatus: {
		key: "status", label: "Status", searchable: true,
		get: func(r *Row) string { return string(r.Status) },
		set: func(r *Row, v string) { r.Status = Status(v) },
	},
	ColumnSubmitter: {
		key: "submitter", label: "Submitter", searchable: true,
		get: func(r *Row) string { return r.Submitter },
		set: func(r *Row, v string) { r.Submitter = v },
	},
	ColumnURL: {
		key: "url", label: "URL", searchable: true,
		get: func(r *Row) string { return r.URL },
		set: func(r *Row, v string) { r.URL = v },
	},
	ColumnAssignee: {
		key: "assignee", label: "Assignee", searchable: true,
		get: func(r *Row) string { return r.Assignee },
		set: func(r *Row, v string) { r.Assignee = v },
	},
	ColumnPriority: {
		key: "priority", label: "Priority", searchable: true,
		get: func(r *Row) string { return string(r.Priority) },
		set: func(r *Row, v string) { r.Priority = Priority(v) },
	},
	ColumnDueDate: {
		key: "dueDate", label: "Due Date",
		get: func(r *Row) string { return r.DueDate },
		set: func(r *Row, v string) { r.DueDate = v },
	},
	ColumnBudget: {
		key: "budget", label: "Budget", searchable: true,
		get: func(r *Row) string { return r.Budget },
		set: func(r *Row, v string) { r.Budget = v },
	},
	ColumnEstValue: {
		key: "estValue", label: "Est.Value", searchable: true,
		get: func(r *Row) string { return r.EstValue },
		set: func(r *Row, v string) { r.EstValue = v },
	},
	ColumnDescription: {
		key: "description", label: "Description", searchable: true,
		get: func(r *Row) string { return r.Description },
		set: func(r *Row, v string) { r.Description = v },
	},
}

var columnsByKey = func() map[string]Column {
	byKey := make(map[string]Column, len(columnSpecs))
	for col, spec := range columnSpecs {
		byKey[spec.key] = col
	}

	return byKey
}()

// Columns returns every column in export order.
func Columns() []Column {
	return []Column{
		ColumnJobRequest, ColumnSubmitted, ColumnStatus, ColumnSubmitter, ColumnURL, ColumnAssignee,
		ColumnPriority, ColumnDueDate, ColumnBudget, ColumnEstValue, ColumnDescription,
	}
}

// GridColumns returns the columns shown in the grid, in display order.
// Description is only shown in the row detail.
func GridColumns() []Column {
	return []Column{
		ColumnJobRequest, ColumnSubmitted, ColumnStatus, ColumnSubmitter, ColumnAssignee,
		ColumnPriority, ColumnDueDate, ColumnBudget, ColumnEstValue, ColumnURL,
	}
}

// ParseColumn resolves a column key such as "dueDate".
func ParseColumn(key string) (Column, error) {
	col, ok := columnsByKey[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, key)
	}

	return col, nil
}

// Valid reports whether c names a column.
func (c Column) Valid() bool {
	_, ok := columnSpecs[c]

	return ok
}

// Key is the field name used in storage and on the command line.
func (c Column) Key() string {
	return columnSpecs[c].key
}

// Label is the header text.
func (c Column) Label() string {
	return columnSpecs[c].label
}

func (c Column) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Column(%d)", int(c))
	}

	return c.Key()
}

// Searchable reports whether search and filter text is matched against c.
func (c Column) Searchable() bool {
	return columnSpecs[c].searchable
}

// Choices returns the closed set of values c accepts, or nil for free text.
func (c Column) Choices() []string {
	switch c {
	case ColumnStatus:
		choices := make([]string, 0, len(statuses))
		for _, s := range statuses {
			choices = append(choices, string(s))
		}

		return choices
	case ColumnPriority:
		choices := make([]string, 0, len(priorities))
		for _, p := range priorities {
			choices = append(choices, string(p))
		}

		return choices
	default:
		return nil
	}
}

// Validate checks value against the column's choices.
func (c Column) Validate(value string) error {
	choices := c.Choices()
	if choices == nil || slices.Contains(choices, value) {
		return nil
	}

	return fmt.Errorf("%w: %s %q (want one of %v)", ErrInvalidChoice, c.Key(), value, choices)
}

// Get returns the field of row that c names. Invalid columns read as "".
func (c Column) Get(row Row) string {
	spec, ok := columnSpecs[c]
	if !ok {
		return ""
	}

	return spec.get(&row)
}

// Set replaces the field of row that c names, leaving all others untouched.
func (c Column) Set(row *Row, value string) error {
	spec, ok := columnSpecs[c]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, c)
	}

	spec.set(row, value)

	return nil
}

func (c Column) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownColumn, int(c))
	}

	return []byte(c.Key()), nil
}

func (c *Column) UnmarshalText(text []byte) error {
	col, err := ParseColumn(string(text))
	if err != nil {
		return err
	}

	*c = col

	return nil
}
