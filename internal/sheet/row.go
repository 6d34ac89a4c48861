package sheet

import (
	"fmt"
	"slices"
	"time"
)

// DateLayout is the day-month-year form dates are displayed and stored in.
const DateLayout = "02-01-2006"

// FormatDate renders t the way row dates are stored.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Status is the workflow state of a row. Imported rows may carry values
// outside the known set; they are kept as-is.
type Status string

// Status constants.
const (
	StatusSubmitted   Status = "Submitted"
	StatusNeedToStart Status = "Need to start"
	StatusInProgress  Status = "In-progress"
	StatusComplete    Status = "Complete"
	StatusBlocked     Status = "Blocked"
)

var statuses = []Status{
	StatusSubmitted,
	StatusNeedToStart,
	StatusInProgress,
	StatusComplete,
	StatusBlocked,
}

// Statuses returns the known statuses in choice order.
func Statuses() []Status {
	return slices.Clone(statuses)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return slices.Contains(statuses, s)
}

// ParseStatus returns the status named by s, matched exactly.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: status %q", ErrInvalidChoice, s)
	}

	return status, nil
}

// Priority ranks a row.
type Priority string

// Priority constants.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

var priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Priorities returns the known priorities in choice order.
func Priorities() []Priority {
	return slices.Clone(priorities)
}

func (p Priority) Valid() bool {
	return slices.Contains(priorities, p)
}

// ParsePriority returns the priority named by s, matched exactly.
func ParsePriority(s string) (Priority, error) {
	priority := Priority(s)
	if !priority.Valid() {
		return "", fmt.Errorf("%w: priority %q", ErrInvalidChoice, s)
	}

	return priority, nil
}

// Row is one job request. ID is assigned by the [RowStore] and never changes.
//
// JSON names match the stored layout under [RowsKey].
type Row struct {
	ID          int      `json:"id"`
	JobRequest  string   `json:"jobRequest"`
	Submitted   string   `json:"submitted"`
	Status      Status   `json:"status"`
	Submitter   string   `json:"submitter"`
	URL         string   `json:"url"`
	Assignee    string   `json:"assignee"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"dueDate"`
	Budget      string   `json:"budget"`
	EstValue    string   `json:"estValue"`
	CreatedBy   string   `json:"createdBy"`
	Description string   `json:"description"`
}

// nextID returns max(ids, 0) + 1.
func nextID(rows []Row) int {
	maxID := 0

	for _, row := range rows {
		if row.ID > maxID {
			maxID = row.ID
		}
	}

	return maxID + 1
}
