package sheet

import (
	"fmt"
	"slices"
	"strings"
)

// Built-in tabs.
const (
	TabAllOrders = "All Orders"
	TabPending   = "Pending"
	TabReviewed  = "Reviewed"
	TabArrived   = "Arrived"
)

// MinDisplayRows is the number of rows the grid always shows; short results
// are padded with placeholders.
const MinDisplayRows = 11

// DefaultTabs returns the tabs every session starts with.
func DefaultTabs() []string {
	return []string{TabAllOrders, TabPending, TabReviewed, TabArrived}
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection accepts "asc" and "desc"; empty means ascending.
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(s))) {
	case SortAsc, "":
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSortOrder, s)
	}
}

type SortConfig struct {
	Column    Column
	Direction SortDirection
}

// ViewState is the per-session, unpersisted state that shapes the visible
// sequence.
type ViewState struct {
	SearchText string
	FilterText string
	Tab        string
	Tabs       []string
	Sort       *SortConfig
	Hidden     map[Column]bool
}

// NewViewState returns the state a fresh session starts in.
func NewViewState() ViewState {
	return ViewState{
		Tab:    TabAllOrders,
		Tabs:   DefaultTabs(),
		Hidden: map[Column]bool{},
	}
}

// SetSort is the header-click behaviour: the same column while ascending
// flips to descending, anything else sorts ascending.
func (v *ViewState) SetSort(col Column) {
	dir := SortAsc
	if v.Sort != nil && v.Sort.Column == col && v.Sort.Direction == SortAsc {
		dir = SortDesc
	}

	v.Sort = &SortConfig{Column: col, Direction: dir}
}

// SortBy sets column and direction explicitly.
func (v *ViewState) SortBy(col Column, dir SortDirection) {
	v.Sort = &SortConfig{Column: col, Direction: dir}
}

func (v *ViewState) ClearSort() {
	v.Sort = nil
}

// AddTab appends a tab named "Tab N" and returns the name. User tabs filter
// nothing.
func (v *ViewState) AddTab() string {
	name := fmt.Sprintf("Tab %d", len(v.Tabs)+1)
	v.Tabs = append(v.Tabs, name)

	return name
}

// SetHidden replaces the hidden column set.
func (v *ViewState) SetHidden(cols []Column) {
	v.Hidden = make(map[Column]bool, len(cols))
	for _, col := range cols {
		v.Hidden[col] = true
	}
}

// ToggleColumn flips the visibility of col.
func (v *ViewState) ToggleColumn(col Column) {
	if v.Hidden == nil {
		v.Hidden = map[Column]bool{}
	}

	if v.Hidden[col] {
		delete(v.Hidden, col)

		return
	}

	v.Hidden[col] = true
}

// HiddenColumns returns the hidden set in export order.
func (v ViewState) HiddenColumns() []Column {
	var hidden []Column

	for _, col := range Columns() {
		if v.Hidden[col] {
			hidden = append(hidden, col)
		}
	}

	return hidden
}

// VisibleColumns returns the grid columns that are not hidden.
func (v ViewState) VisibleColumns() []Column {
	var cols []Column

	for _, col := range GridColumns() {
		if !v.Hidden[col] {
			cols = append(cols, col)
		}
	}

	return cols
}

// Visible derives the visible sequence: search, then filter, then the tab
// predicate, then the optional sort. Rows are never modified.
func Visible(rows []Row, view ViewState) []Row {
	visible := make([]Row, 0, len(rows))

	for _, row := range rows {
		if !MatchesText(row, view.SearchText) {
			continue
		}

		if !MatchesText(row, view.FilterText) {
			continue
		}

		if !TabAccepts(view.Tab, row) {
			continue
		}

		visible = append(visible, row)
	}

	if view.Sort != nil && view.Sort.Column.Valid() {
		sortRows(visible, *view.Sort)
	}

	return visible
}

// MatchesText reports whether any searchable field contains text, ignoring
// case. Blank text matches every row.
func MatchesText(row Row, text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}

	needle := strings.ToLower(text)

	for _, col := range Columns() {
		if !col.Searchable() {
			continue
		}

		if strings.Contains(strings.ToLower(col.Get(row)), needle) {
			return true
		}
	}

	return false
}

// TabAccepts applies the named tab's predicate. Unknown tabs accept all rows.
func TabAccepts(tab string, row Row) bool {
	switch tab {
	case TabPending:
		return row.Status == StatusNeedToStart || row.Status == StatusInProgress
	case TabReviewed:
		return row.Status == StatusComplete
	case TabArrived:
		return row.Status == StatusSubmitted
	default:
		return true
	}
}

// sortRows compares the column's text byte-wise; "10,000" sorts before "9".
func sortRows(rows []Row, cfg SortConfig) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		c := strings.Compare(cfg.Column.Get(a), cfg.Column.Get(b))
		if cfg.Direction == SortDesc {
			return -c
		}

		return c
	})
}

// DisplayRow is one grid line. Placeholder lines have no backing row.
type DisplayRow struct {
	Number      int
	Row         Row
	Placeholder bool
}

// Display numbers the visible rows from 1 and pads with placeholders up to
// [MinDisplayRows].
func Display(visible []Row) []DisplayRow {
	total := max(len(visible), MinDisplayRows)
	out := make([]DisplayRow, 0, total)

	for i, row := range visible {
		out = append(out, DisplayRow{Number: i + 1, Row: row})
	}

	for i := len(visible); i < total; i++ {
		out = append(out, DisplayRow{Number: i + 1, Placeholder: true})
	}

	return out
}
