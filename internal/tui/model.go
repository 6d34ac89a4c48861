// Package tui is the interactive grid for a [sheet.App].
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/calvinalkan/jobsheet/internal/sheet"
)

type mode int

const (
	modeGrid mode = iota
	modeEdit
	modePrompt
)

type promptKind int

const (
	promptSearch promptKind = iota
	promptFilter
	promptNewRow
)

func (p promptKind) label() string {
	switch p {
	case promptSearch:
		return "search: "
	case promptFilter:
		return "filter: "
	default:
		return "new job request: "
	}
}

// Model is the bubbletea model of the grid. The cursor addresses the
// displayed rows (placeholders included) and the visible columns.
type Model struct {
	ctx    context.Context //nolint:containedctx // App calls need the program context.
	app    *sheet.App
	width  int
	height int

	row int
	col int

	mode   mode
	prompt promptKind
	input  textinput.Model

	status string
	err    error
}

// New returns a model over app with the first cell selected.
func New(ctx context.Context, app *sheet.App) Model {
	input := textinput.New()
	input.CharLimit = 256
	input.Prompt = ""

	m := Model{ctx: ctx, app: app, input: input}
	m.selectCurrent()

	return m
}

// Run shows the grid until the user quits or ctx is cancelled.
func Run(ctx context.Context, app *sheet.App, in io.Reader, out io.Writer) error {
	program := tea.NewProgram(New(ctx, app),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	_, err := program.Run()
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("sheet: %w", err)
	}

	return nil
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-24, 10)

		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modePrompt:
			return m.updatePrompt(msg)
		default:
			return m.updateGrid(msg)
		}
	}

	return m, nil
}

// --- Grid ---

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	key := msg.String()

	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.move(-1, 0)
	case "down", "j":
		m.move(1, 0)
	case "left", "h":
		m.move(0, -1)
	case "right", "l":
		m.move(0, 1)
	case "enter", "e":
		return m.beginEdit()
	case "s":
		col, ok := m.currentColumn()
		if ok {
			m.app.SetSort(col)
			m.status = "sorted by " + col.Label() + " " + string(m.app.View().Sort.Direction)
			m.clamp()
		}
	case "/":
		return m.openPrompt(promptSearch, m.app.View().SearchText)
	case "f":
		return m.openPrompt(promptFilter, m.app.View().FilterText)
	case "n":
		return m.openPrompt(promptNewRow, "")
	case "+":
		m.status = "added " + m.app.AddTab()
	case "H":
		m.hideCurrent()
	case "U":
		m.app.SetHiddenColumns(nil)
		m.status = "all columns shown"
		m.selectCurrent()
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 9 {
			m.switchTab(n - 1)
		}
	}

	return m, nil
}

func (m *Model) move(dRow, dCol int) {
	m.row += dRow
	m.col += dCol
	m.clamp()
	m.selectCurrent()
}

// clamp keeps the cursor inside the displayed grid after the view changed.
func (m *Model) clamp() {
	rows := len(m.app.DisplayRows())
	cols := len(m.app.VisibleColumns())

	m.row = min(max(m.row, 0), rows-1)
	m.col = min(max(m.col, 0), max(cols-1, 0))
}

func (m Model) currentColumn() (sheet.Column, bool) {
	cols := m.app.VisibleColumns()
	if m.col < 0 || m.col >= len(cols) {
		return 0, false
	}

	return cols[m.col], true
}

func (m Model) currentCell() (sheet.Cell, bool) {
	col, ok := m.currentColumn()
	if !ok {
		return sheet.Cell{}, false
	}

	return sheet.Cell{Row: m.row, Column: col}, true
}

func (m *Model) selectCurrent() {
	m.clamp()

	cell, ok := m.currentCell()
	if !ok {
		return
	}

	err := m.app.SelectCell(m.ctx, cell)
	if err != nil {
		m.err = err
	}
}

func (m *Model) switchTab(index int) {
	tabs := m.app.View().Tabs
	if index >= len(tabs) {
		return
	}

	m.app.SetActiveTab(tabs[index])
	m.status = "tab " + tabs[index]
	m.selectCurrent()
}

func (m *Model) hideCurrent() {
	col, ok := m.currentColumn()
	if !ok {
		return
	}

	if len(m.app.VisibleColumns()) == 1 {
		m.err = errors.New("cannot hide the last column")

		return
	}

	m.app.ToggleColumn(col)
	m.status = "hid " + col.Label() + " (U shows all)"
	m.selectCurrent()
}

// --- Edit ---

func (m Model) beginEdit() (tea.Model, tea.Cmd) {
	cell, ok := m.currentCell()
	if !ok {
		return m, nil
	}

	err := m.app.BeginEdit(m.ctx, cell)
	if err != nil {
		m.err = err

		return m, nil
	}

	_, draft, _ := m.app.Editor().Editing()

	m.mode = modeEdit
	m.input.SetValue(draft)
	m.input.CursorEnd()

	if isChoice(cell.Column) {
		m.input.Blur()
		m.status = "left/right to choose, enter to save, esc to cancel"

		return m, nil
	}

	m.status = "enter to save, esc to cancel"
	cmd := m.input.Focus()

	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cell, _, _ := m.app.Editor().Editing()

	switch msg.String() {
	case "esc":
		m.app.CancelEdit()
		m.endEdit()
		m.status = "edit cancelled"
		m.selectCurrent()

		return m, nil
	case "enter":
		return m.commitEdit()
	case "left", "right":
		if isChoice(cell.Column) {
			step := 1
			if msg.String() == "left" {
				step = -1
			}

			m.cycleChoice(cell.Column, step)

			return m, nil
		}
	}

	if isChoice(cell.Column) {
		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	err := m.app.SetDraft(m.input.Value())
	if err != nil {
		m.err = err
	}

	return m, cmd
}

func (m *Model) cycleChoice(col sheet.Column, step int) {
	choices := col.Choices()
	current := slices.Index(choices, m.input.Value())
	next := (current + step + len(choices)) % len(choices)

	if current < 0 && step < 0 {
		next = len(choices) - 1
	}

	err := m.app.SetDraft(choices[next])
	if err != nil {
		m.err = err

		return
	}

	m.input.SetValue(choices[next])
}

func (m Model) commitEdit() (tea.Model, tea.Cmd) {
	result, err := m.app.CommitEdit(m.ctx)
	m.endEdit()

	switch {
	case err != nil:
		m.err = err
	case !result.Backed:
		m.status = "placeholder row: nothing saved"
	case !result.Applied:
		m.status = fmt.Sprintf("row #%d no longer exists", result.RowID)
	default:
		m.status = fmt.Sprintf("saved #%d %s", result.RowID, result.Column.Label())
	}

	if warning := m.app.StorageWarning(); warning != nil {
		m.err = warning
	}

	m.selectCurrent()

	return m, nil
}

func (m *Model) endEdit() {
	m.mode = modeGrid
	m.input.Blur()
	m.input.SetValue("")
}

func isChoice(col sheet.Column) bool {
	return len(col.Choices()) > 0
}

// --- Prompt ---

func (m Model) openPrompt(kind promptKind, value string) (tea.Model, tea.Cmd) {
	m.mode = modePrompt
	m.prompt = kind
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.status = ""
	cmd := m.input.Focus()

	return m, cmd
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.endEdit()
		m.status = ""

		return m, nil
	case "enter":
		value := m.input.Value()
		m.endEdit()
		m.applyPrompt(value)

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m *Model) applyPrompt(value string) {
	switch m.prompt {
	case promptSearch:
		m.app.SetSearchText(value)
		m.status = fmt.Sprintf("%d rows", len(m.app.VisibleRows()))
	case promptFilter:
		m.app.SetFilterText(value)
		m.status = fmt.Sprintf("%d rows", len(m.app.VisibleRows()))
	case promptNewRow:
		row, err := m.app.CreateRow(m.ctx, sheet.NewRow{JobRequest: value})
		if err != nil {
			m.err = err

			return
		}

		m.status = fmt.Sprintf("created #%d", row.ID)

		if warning := m.app.StorageWarning(); warning != nil {
			m.err = warning
		}
	}

	m.selectCurrent()
}
