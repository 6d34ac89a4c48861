package sheet

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/calvinalkan/jobsheet/internal/kv"
)

// New-row defaults.
const (
	DefaultURL      = "www.example.com"
	DefaultAssignee = "Unassigned"
	DefaultAmount   = "0"
)

// Options configures [Open].
type Options struct {
	Storage    kv.Storage
	Logger     logrus.FieldLogger
	Clock      Clock
	LoginDelay time.Duration
}

// App is the application state every presentation layer drives: the
// session, the row store, the view state and the cell editor.
//
// App is not safe for concurrent use.
type App struct {
	store   *RowStore
	session *Session
	view    ViewState
	editor  CellEditor
	clock   Clock
	log     logrus.FieldLogger
}

// Open loads the rows (seeding a new store) and restores a persisted session
// if there is one.
func Open(ctx context.Context, opts Options) (*App, error) {
	if opts.Storage == nil {
		return nil, errors.New("sheet.Open: storage is nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}

	app := &App{
		store:   NewRowStore(opts.Storage, logger),
		session: NewSession(opts.Storage, opts.LoginDelay, logger),
		view:    NewViewState(),
		clock:   clock,
		log:     logger,
	}

	_, err := app.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	_, err = app.session.Current(ctx)
	if err != nil && !errors.Is(err, ErrNotLoggedIn) {
		return nil, err
	}

	return app, nil
}

// Today returns the current date in [DateLayout].
func (a *App) Today() string {
	return FormatDate(a.clock.Now())
}

// StorageWarning reports the last failed row write, if it has not been
// followed by a successful one.
func (a *App) StorageWarning() error {
	return a.store.StorageWarning()
}

// Session

// Login establishes the user from the login form.
func (a *App) Login(ctx context.Context, email, name string) (User, error) {
	return a.session.Login(ctx, email, name)
}

// QuickLogin establishes one of the preset users.
func (a *App) QuickLogin(ctx context.Context, preset string) (User, error) {
	return a.session.QuickLogin(ctx, preset)
}

// User returns the logged-in user.
func (a *App) User(ctx context.Context) (User, error) {
	return a.session.Current(ctx)
}

// Logout ends the session and discards all view and edit state.
func (a *App) Logout(ctx context.Context) error {
	a.view = NewViewState()
	a.editor.Reset()

	return a.session.Logout(ctx)
}

// Rows

// Rows returns every row in store order.
func (a *App) Rows() []Row {
	return a.store.Rows()
}

// Row returns the row with id.
func (a *App) Row(id int) (Row, error) {
	row, ok := a.store.Get(id)
	if !ok {
		return Row{}, fmt.Errorf("%w: %d", ErrRowNotFound, id)
	}

	return row, nil
}

// VisibleRows applies the view pipeline to the store.
func (a *App) VisibleRows() []Row {
	return Visible(a.store.Rows(), a.view)
}

// DisplayRows is VisibleRows padded for the grid.
func (a *App) DisplayRows() []DisplayRow {
	return Display(a.VisibleRows())
}

// NewRow is the input of [App.CreateRow]. Empty optional fields take the
// defaults of the new-task form.
type NewRow struct {
	JobRequest  string `json:"jobRequest"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Assignee    string `json:"assignee"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
	Budget      string `json:"budget"`
	EstValue    string `json:"estValue"`
}

// CreateRow appends a new row owned by the logged-in user.
func (a *App) CreateRow(ctx context.Context, in NewRow) (Row, error) {
	user, err := a.session.Current(ctx)
	if err != nil {
		return Row{}, err
	}

	jobRequest := strings.TrimSpace(in.JobRequest)
	if jobRequest == "" {
		return Row{}, ErrJobRequestRequired
	}

	priority := PriorityMedium
	if in.Priority != "" {
		priority, err = ParsePriority(in.Priority)
		if err != nil {
			return Row{}, err
		}
	}

	today := a.Today()

	row := a.store.Append(ctx, Row{
		JobRequest:  jobRequest,
		Description: strings.TrimSpace(in.Description),
		Submitted:   today,
		Status:      StatusSubmitted,
		Submitter:   user.Name,
		URL:         orDefault(strings.TrimSpace(in.URL), DefaultURL),
		Assignee:    orDefault(strings.TrimSpace(in.Assignee), DefaultAssignee),
		Priority:    priority,
		DueDate:     orDefault(in.DueDate, today),
		Budget:      orDefault(in.Budget, DefaultAmount),
		EstValue:    orDefault(in.EstValue, DefaultAmount),
		CreatedBy:   user.Email,
	})

	return row, nil
}

// CanEditStatus reports whether the logged-in user created row.
func (a *App) CanEditStatus(ctx context.Context, row Row) bool {
	user, err := a.session.Current(ctx)
	if err != nil {
		return false
	}

	return row.CreatedBy == user.Email
}

// UpdateStatus changes a row's status if the logged-in user created it. An
// unknown id is a no-op reported as false.
func (a *App) UpdateStatus(ctx context.Context, id int, status Status) (bool, error) {
	_, err := ParseStatus(string(status))
	if err != nil {
		return false, err
	}

	return a.UpdateField(ctx, id, ColumnStatus, string(status))
}

// UpdateField sets one field by row id. Choice columns are validated and
// status changes are limited to the row's creator. An unknown id is a no-op
// reported as false.
func (a *App) UpdateField(ctx context.Context, id int, col Column, value string) (bool, error) {
	_, err := a.session.Current(ctx)
	if err != nil {
		return false, err
	}

	if !col.Valid() {
		return false, fmt.Errorf("%w: %s", ErrUnknownColumn, col)
	}

	err = col.Validate(value)
	if err != nil {
		return false, err
	}

	return a.applyField(ctx, id, col, value)
}

// applyField writes value unless it changes the status of a row someone else
// created. Writing a status back unchanged is accepted without a write.
func (a *App) applyField(ctx context.Context, id int, col Column, value string) (bool, error) {
	row, ok := a.store.Get(id)
	if !ok {
		return false, nil
	}

	if col == ColumnStatus && row.Status == Status(value) {
		return true, nil
	}

	if col == ColumnStatus && !a.CanEditStatus(ctx, row) {
		return false, fmt.Errorf("%w: row %d belongs to %s", ErrNotCreator, id, row.CreatedBy)
	}

	return a.store.UpdateField(ctx, id, col, value), nil
}

// Import and export

// ImportCSV parses text and appends the surviving rows, owned by the
// logged-in user.
func (a *App) ImportCSV(ctx context.Context, text string) ([]Row, error) {
	user, err := a.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	rows := ParseImport(text, ImportDefaults{Today: a.Today(), CreatedBy: user.Email})

	return a.AppendImported(ctx, rows), nil
}

// AppendImported appends already-parsed rows, assigning new ids.
func (a *App) AppendImported(ctx context.Context, rows []Row) []Row {
	return a.store.AppendImported(ctx, rows)
}

// ExportAll renders every row, in store order, as CSV.
func (a *App) ExportAll() string {
	return Export(a.store.Rows())
}

// Cell editing

// Editor exposes the editor state for rendering.
func (a *App) Editor() *CellEditor {
	return &a.editor
}

// SelectCell selects cell, committing any edit in progress first.
func (a *App) SelectCell(ctx context.Context, cell Cell) error {
	err := a.commitPending(ctx)
	if err != nil {
		return err
	}

	return a.editor.Select(cell, a.VisibleRows())
}

// BeginEdit starts editing cell, committing any other edit first.
func (a *App) BeginEdit(ctx context.Context, cell Cell) error {
	err := a.commitPending(ctx)
	if err != nil {
		return err
	}

	return a.editor.Begin(cell, a.VisibleRows())
}

// SetDraft replaces the draft of the edit in progress.
func (a *App) SetDraft(value string) error {
	return a.editor.SetDraft(value)
}

// CommitEdit ends the edit and writes the draft to the row captured when the
// edit began. Placeholder edits are returned but not written. Without a
// session the draft is dropped so the editor does not stay stuck in Editing.
func (a *App) CommitEdit(ctx context.Context) (EditResult, error) {
	_, err := a.session.Current(ctx)
	if err != nil {
		a.editor.Reset()

		return EditResult{}, err
	}

	result, err := a.editor.Commit()
	if err != nil {
		return EditResult{}, err
	}

	if !result.Backed {
		return result, nil
	}

	applied, err := a.applyField(ctx, result.RowID, result.Column, result.Value)
	if err != nil {
		return result, err
	}

	result.Applied = applied

	return result, nil
}

// CancelEdit discards the draft without writing.
func (a *App) CancelEdit() bool {
	return a.editor.Cancel()
}

func (a *App) commitPending(ctx context.Context) error {
	if a.editor.State() != EditEditing {
		return nil
	}

	_, err := a.CommitEdit(ctx)

	return err
}

// View state

// View returns a copy of the view state.
func (a *App) View() ViewState {
	view := a.view
	view.Tabs = slices.Clone(a.view.Tabs)
	view.Hidden = maps.Clone(a.view.Hidden)

	if a.view.Sort != nil {
		sortCfg := *a.view.Sort
		view.Sort = &sortCfg
	}

	return view
}

func (a *App) SetSearchText(text string) {
	a.view.SearchText = text
}

func (a *App) SetFilterText(text string) {
	a.view.FilterText = text
}

// SetActiveTab switches tab. Names other than the built-in predicates show
// every row.
func (a *App) SetActiveTab(name string) {
	a.view.Tab = name
}

// AddTab appends a user tab and returns its name.
func (a *App) AddTab() string {
	return a.view.AddTab()
}

// SetSort toggles sorting on col.
func (a *App) SetSort(col Column) {
	a.view.SetSort(col)
}

// SortBy sorts by col in dir.
func (a *App) SortBy(col Column, dir SortDirection) {
	a.view.SortBy(col, dir)
}

func (a *App) ClearSort() {
	a.view.ClearSort()
}

func (a *App) SetHiddenColumns(cols []Column) {
	a.view.SetHidden(cols)
}

func (a *App) ToggleColumn(col Column) {
	a.view.ToggleColumn(col)
}

// VisibleColumns returns the grid columns that are not hidden.
func (a *App) VisibleColumns() []Column {
	return a.view.VisibleColumns()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
