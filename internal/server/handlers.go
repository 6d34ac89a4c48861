package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/calvinalkan/jobsheet/internal/sheet"
)

type rowsResponse struct {
	Rows    []sheet.Row    `json:"rows"`
	Columns []sheet.Column `json:"columns"`
}

type rowResponse struct {
	Row           sheet.Row `json:"row"`
	CanEditStatus bool      `json:"canEditStatus"`
}

type fieldRequest struct {
	Column sheet.Column `json:"column"`
	Value  string       `json:"value"`
}

type statusRequest struct {
	Status sheet.Status `json:"status"`
}

type draftRequest struct {
	Value string `json:"value"`
}

type editorResponse struct {
	State string      `json:"state"`
	Cell  *sheet.Cell `json:"cell,omitempty"`
	Draft string      `json:"draft,omitempty"`
}

type sortView struct {
	Column    sheet.Column        `json:"column"`
	Direction sheet.SortDirection `json:"direction"`
}

type viewBody struct {
	Search string         `json:"search"`
	Filter string         `json:"filter"`
	Tab    string         `json:"tab"`
	Tabs   []string       `json:"tabs,omitempty"`
	Sort   *sortView      `json:"sort"`
	Hidden []sheet.Column `json:"hidden"`
}

type importResponse struct {
	Imported int         `json:"imported"`
	Rows     []sheet.Row `json:"rows"`
}

type loginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Quick string `json:"quick"`
}

func decodeBody(c echo.Context, v any) error {
	return c.Echo().JSONSerializer.Deserialize(c, v)
}

func rowIDParam(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid row id: "+c.Param("id"))
	}

	return id, nil
}

// Rows

// listRows applies any view parameters present in the query, then returns
// the visible rows.
func (s *Server) listRows(c echo.Context) error {
	query := c.QueryParams()

	if query.Has("search") {
		s.app.SetSearchText(query.Get("search"))
	}

	if query.Has("filter") {
		s.app.SetFilterText(query.Get("filter"))
	}

	if query.Has("tab") {
		s.app.SetActiveTab(query.Get("tab"))
	}

	if query.Has("sort") {
		err := s.applySort(query.Get("sort"), query.Get("dir"))
		if err != nil {
			return httpError(err)
		}
	}

	return c.JSON(http.StatusOK, rowsResponse{
		Rows:    s.app.VisibleRows(),
		Columns: s.app.VisibleColumns(),
	})
}

func (s *Server) applySort(key, dir string) error {
	if key == "" {
		s.app.ClearSort()

		return nil
	}

	col, err := sheet.ParseColumn(key)
	if err != nil {
		return err
	}

	direction, err := sheet.ParseSortDirection(dir)
	if err != nil {
		return err
	}

	s.app.SortBy(col, direction)

	return nil
}

func (s *Server) getRow(c echo.Context) error {
	id, err := rowIDParam(c)
	if err != nil {
		return err
	}

	row, err := s.app.Row(id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, rowResponse{
		Row:           row,
		CanEditStatus: s.app.CanEditStatus(c.Request().Context(), row),
	})
}

func (s *Server) createRow(c echo.Context) error {
	var in sheet.NewRow

	err := decodeBody(c, &in)
	if err != nil {
		return err
	}

	row, err := s.app.CreateRow(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, row)
}

func (s *Server) patchRow(c echo.Context) error {
	id, err := rowIDParam(c)
	if err != nil {
		return err
	}

	var req fieldRequest

	err = decodeBody(c, &req)
	if err != nil {
		return err
	}

	updated, err := s.app.UpdateField(c.Request().Context(), id, req.Column, req.Value)
	if err != nil {
		return httpError(err)
	}

	return s.updatedRow(c, id, updated)
}

func (s *Server) putStatus(c echo.Context) error {
	id, err := rowIDParam(c)
	if err != nil {
		return err
	}

	var req statusRequest

	err = decodeBody(c, &req)
	if err != nil {
		return err
	}

	updated, err := s.app.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return httpError(err)
	}

	return s.updatedRow(c, id, updated)
}

func (s *Server) updatedRow(c echo.Context, id int, updated bool) error {
	if !updated {
		return httpError(fmt.Errorf("%w: %d", sheet.ErrRowNotFound, id))
	}

	row, err := s.app.Row(id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, row)
}

// Cells

func (s *Server) editorState() editorResponse {
	editor := s.app.Editor()
	resp := editorResponse{State: editor.State().String()}

	if cell, draft, ok := editor.Editing(); ok {
		resp.Cell = &cell
		resp.Draft = draft
	} else if cell, ok := editor.Selected(); ok {
		resp.Cell = &cell
	}

	return resp
}

func (s *Server) selectCell(c echo.Context) error {
	var cell sheet.Cell

	err := decodeBody(c, &cell)
	if err != nil {
		return err
	}

	err = s.app.SelectCell(c.Request().Context(), cell)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, s.editorState())
}

func (s *Server) beginEdit(c echo.Context) error {
	var cell sheet.Cell

	err := decodeBody(c, &cell)
	if err != nil {
		return err
	}

	err = s.app.BeginEdit(c.Request().Context(), cell)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, s.editorState())
}

func (s *Server) setDraft(c echo.Context) error {
	var req draftRequest

	err := decodeBody(c, &req)
	if err != nil {
		return err
	}

	err = s.app.SetDraft(req.Value)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, s.editorState())
}

func (s *Server) commitEdit(c echo.Context) error {
	result, err := s.app.CommitEdit(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) cancelEdit(c echo.Context) error {
	s.app.CancelEdit()

	return c.JSON(http.StatusOK, s.editorState())
}

// View

func (s *Server) viewBody() viewBody {
	view := s.app.View()

	body := viewBody{
		Search: view.SearchText,
		Filter: view.FilterText,
		Tab:    view.Tab,
		Tabs:   view.Tabs,
		Hidden: view.HiddenColumns(),
	}

	if view.Sort != nil {
		body.Sort = &sortView{Column: view.Sort.Column, Direction: view.Sort.Direction}
	}

	return body
}

func (s *Server) getView(c echo.Context) error {
	return c.JSON(http.StatusOK, s.viewBody())
}

// putView replaces search, filter, tab, sort and hidden columns. Tabs are
// added with POST /api/view/tabs and are ignored here.
func (s *Server) putView(c echo.Context) error {
	var req viewBody

	err := decodeBody(c, &req)
	if err != nil {
		return err
	}

	for _, col := range req.Hidden {
		if !col.Valid() {
			return httpError(fmt.Errorf("%w: %s", sheet.ErrUnknownColumn, col))
		}
	}

	if req.Sort != nil {
		if !req.Sort.Column.Valid() {
			return httpError(fmt.Errorf("%w: %s", sheet.ErrUnknownColumn, req.Sort.Column))
		}

		dir, err := sheet.ParseSortDirection(string(req.Sort.Direction))
		if err != nil {
			return httpError(err)
		}

		s.app.SortBy(req.Sort.Column, dir)
	} else {
		s.app.ClearSort()
	}

	tab := req.Tab
	if tab == "" {
		tab = sheet.TabAllOrders
	}

	s.app.SetSearchText(req.Search)
	s.app.SetFilterText(req.Filter)
	s.app.SetActiveTab(tab)
	s.app.SetHiddenColumns(req.Hidden)

	return c.JSON(http.StatusOK, s.viewBody())
}

func (s *Server) addTab(c echo.Context) error {
	s.app.AddTab()

	return c.JSON(http.StatusCreated, s.viewBody())
}

// Import and export

func (s *Server) export(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", sheet.ExportFileName))

	return c.Blob(http.StatusOK, sheet.ExportMIMEType, []byte(s.app.ExportAll()))
}

func (s *Server) importCSV(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "reading body: "+err.Error())
	}

	rows, err := s.app.ImportCSV(c.Request().Context(), string(data))
	if err != nil {
		return httpError(err)
	}

	s.log.WithField("rows", len(rows)).Info("imported rows")

	return c.JSON(http.StatusOK, importResponse{Imported: len(rows), Rows: rows})
}

// Session

func (s *Server) getSession(c echo.Context) error {
	user, err := s.app.User(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest

	err := decodeBody(c, &req)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	var user sheet.User

	if req.Quick != "" {
		if req.Email != "" || req.Name != "" {
			return echo.NewHTTPError(http.StatusBadRequest, "quick cannot be combined with email or name")
		}

		user, err = s.app.QuickLogin(ctx, req.Quick)
	} else {
		user, err = s.app.Login(ctx, req.Email, req.Name)
	}

	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}

func (s *Server) logout(c echo.Context) error {
	err := s.app.Logout(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
