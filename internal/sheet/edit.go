package sheet

import "fmt"

// EditState is the state of the [CellEditor].
type EditState int

const (
	EditIdle EditState = iota
	EditSelected
	EditEditing
)

func (s EditState) String() string {
	switch s {
	case EditIdle:
		return "idle"
	case EditSelected:
		return "selected"
	case EditEditing:
		return "editing"
	default:
		return fmt.Sprintf("EditState(%d)", int(s))
	}
}

// Cell addresses a grid cell by its index in the displayed sequence, which
// includes placeholder rows, and a column.
type Cell struct {
	Row    int    `json:"row"`
	Column Column `json:"column"`
}

// EditResult describes a committed edit. RowID is the identity captured when
// the edit began; Backed is false for placeholder rows, which have nothing
// to write to. Applied is set by the caller once the store accepted it.
type EditResult struct {
	RowID   int    `json:"rowId"`
	Column  Column `json:"column"`
	Value   string `json:"value"`
	Backed  bool   `json:"backed"`
	Applied bool   `json:"applied"`
}

// CellEditor tracks at most one selected and at most one editing cell.
//
// The editor never touches the store. Commit hands back the row id captured
// by Begin so the caller can update by identity; the visible index is only
// used to find that id.
type CellEditor struct {
	state  EditState
	cell   Cell
	draft  string
	rowID  int
	backed bool
}

// State returns the current state.
func (e *CellEditor) State() EditState {
	return e.state
}

// Selected returns the selected cell. A cell being edited is also selected.
func (e *CellEditor) Selected() (Cell, bool) {
	if e.state == EditIdle {
		return Cell{}, false
	}

	return e.cell, true
}

// Editing returns the cell being edited and its draft.
func (e *CellEditor) Editing() (Cell, string, bool) {
	if e.state != EditEditing {
		return Cell{}, "", false
	}

	return e.cell, e.draft, true
}

// Select moves to Selected. Any draft is dropped; callers wanting
// focus-loss-commits commit first.
func (e *CellEditor) Select(cell Cell, visible []Row) error {
	err := checkCell(cell, visible)
	if err != nil {
		return err
	}

	*e = CellEditor{state: EditSelected, cell: cell}

	return nil
}

// Begin moves to Editing with the draft seeded from the visible row. On a
// placeholder row the draft starts empty and the edit is unbacked.
func (e *CellEditor) Begin(cell Cell, visible []Row) error {
	err := checkCell(cell, visible)
	if err != nil {
		return err
	}

	*e = CellEditor{state: EditEditing, cell: cell}

	if cell.Row < len(visible) {
		row := visible[cell.Row]
		e.rowID = row.ID
		e.backed = true
		e.draft = cell.Column.Get(row)
	}

	return nil
}

// SetDraft replaces the draft. Status and priority drafts must be one of the
// column's choices.
func (e *CellEditor) SetDraft(value string) error {
	if e.state != EditEditing {
		return ErrNoEdit
	}

	err := e.cell.Column.Validate(value)
	if err != nil {
		return err
	}

	e.draft = value

	return nil
}

// Commit ends the edit and returns what should be written.
func (e *CellEditor) Commit() (EditResult, error) {
	if e.state != EditEditing {
		return EditResult{}, ErrNoEdit
	}

	result := EditResult{
		RowID:  e.rowID,
		Column: e.cell.Column,
		Value:  e.draft,
		Backed: e.backed,
	}

	*e = CellEditor{}

	return result, nil
}

// Cancel discards the draft. It reports whether an edit was in progress.
func (e *CellEditor) Cancel() bool {
	editing := e.state == EditEditing
	*e = CellEditor{}

	return editing
}

// Reset returns to Idle.
func (e *CellEditor) Reset() {
	*e = CellEditor{}
}

func checkCell(cell Cell, visible []Row) error {
	if !cell.Column.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, cell.Column)
	}

	limit := max(len(visible), MinDisplayRows)
	if cell.Row < 0 || cell.Row >= limit {
		return fmt.Errorf("%w: row %d of %d", ErrCellOutOfRange, cell.Row, limit)
	}

	return nil
}
