package server_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/jobsheet/internal/kv"
	"github.com/calvinalkan/jobsheet/internal/logging"
	"github.com/calvinalkan/jobsheet/internal/server"
	"github.com/calvinalkan/jobsheet/internal/sheet"
)

var testToday = time.Date(2025, time.March, 15, 9, 30, 0, 0, time.UTC)

type rowsBody struct {
	Rows    []sheet.Row    `json:"rows"`
	Columns []sheet.Column `json:"columns"`
}

func newServer(t *testing.T) (*echo.Echo, *kv.Memory) {
	t.Helper()

	storage := kv.NewMemory()

	app, err := sheet.Open(context.Background(), sheet.Options{
		Storage: storage,
		Logger:  logging.Discard(),
		Clock:   sheet.FixedClock(testToday),
	})
	require.NoError(t, err)

	return server.New(app, logging.Discard()), storage
}

func do(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func loginJane(t *testing.T, e *echo.Echo) {
	t.Helper()

	rec := do(t, e, http.MethodPost, "/api/session", `{"quick":"jane"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T

	err := sonic.ConfigStd.Unmarshal(rec.Body.Bytes(), &out)
	require.NoError(t, err, rec.Body.String())

	return out
}

func rowIDs(rows []sheet.Row) []int {
	out := make([]int, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ID)
	}

	return out
}

func Test_Healthz_Returns_OK(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)

	rec := do(t, e, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func Test_Session_Returns_Unauthorized_When_Nobody_Logged_In(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)

	rec := do(t, e, http.MethodGet, "/api/session", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/rows", `{"jobRequest":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_Session_Login_Logout_Round_Trip(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)

	rec := do(t, e, http.MethodPost, "/api/session", `{"email":" Bob@Example.COM ","name":" Bob "}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	user := decode[sheet.User](t, rec)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.Equal(t, "Bob", user.Name)
	assert.Equal(t, sheet.AvatarURL("Bob"), user.Avatar)

	rec = do(t, e, http.MethodGet, "/api/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user, decode[sheet.User](t, rec))

	rec = do(t, e, http.MethodDelete, "/api/session", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/session", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_Session_Login_Returns_BadRequest_When_Fields_Missing(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{"email":"a@b.c"}`},
		{name: "unknown preset", body: `{"quick":"bob"}`},
		{name: "quick with email", body: `{"quick":"jane","email":"a@b.c"}`},
		{name: "unknown field", body: `{"user":"jane"}`},
		{name: "not json", body: `jane`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, http.MethodPost, "/api/session", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func Test_CreateRow_Returns_Created_Row_With_Defaults(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)
	loginJane(t, e)

	rec := do(t, e, http.MethodPost, "/api/rows", `{"jobRequest":"  Build dashboard  ","priority":"High"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	row := decode[sheet.Row](t, rec)

	want := sheet.Row{
		ID:         6,
		JobRequest: "Build dashboard",
		Submitted:  "15-03-2025",
		Status:     sheet.StatusSubmitted,
		Submitter:  "Jane Smith",
		URL:        sheet.DefaultURL,
		Assignee:   sheet.DefaultAssignee,
		Priority:   sheet.PriorityHigh,
		DueDate:    "15-03-2025",
		Budget:     "0",
		EstValue:   "0",
		CreatedBy:  "jane@company.com",
	}

	if diff := cmp.Diff(want, row); diff != "" {
		t.Fatalf("created row mismatch (-want +got):\n%s", diff)
	}
}

func Test_CreateRow_Returns_BadRequest_When_Body_Invalid(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)
	loginJane(t, e)

	tests := []struct {
		name string
		body string
	}{
		{name: "blank job request", body: `{"jobRequest":"   "}`},
		{name: "bad priority", body: `{"jobRequest":"x","priority":"Urgent"}`},
		{name: "unknown field", body: `{"jobRequest":"x","owner":"me"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, http.MethodPost, "/api/rows", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func Test_ListRows_Applies_Query_To_View(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)

	rec := do(t, e, http.MethodGet, "/api/rows?tab=Pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{1, 2}, rowIDs(decode[rowsBody](t, rec).Rows))

	// The view persists across requests until changed.
	rec = do(t, e, http.MethodGet, "/api/rows?sort=status&dir=desc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2, 1}, rowIDs(decode[rowsBody](t, rec).Rows))

	rec = do(t, e, http.MethodGet, "/api/rows?tab=All+Orders&sort=status&dir=asc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[rowsBody](t, rec)
	assert.Equal(t, []int{5, 4, 1, 2, 3}, rowIDs(body.Rows))
	assert.Equal(t, sheet.GridColumns(), body.Columns)

	rec = do(t, e, http.MethodGet, "/api/rows?sort=cost", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_GetRow_Maps_Errors(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)

	rec := do(t, e, http.MethodGet, "/api/rows/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/rows/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/rows/3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Row           sheet.Row `json:"row"`
		CanEditStatus bool      `json:"canEditStatus"`
	}

	require.NoError(t, sonic.ConfigStd.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Row.ID)
	assert.False(t, got.CanEditStatus)
}

func Test_PutStatus_Returns_Forbidden_When_Not_Creator(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)
	loginJane(t, e)

	rec := do(t, e, http.MethodPut, "/api/rows/1/status", `{"status":"Complete"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/rows", `{"jobRequest":"Mine"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodPut, "/api/rows/6/status", `{"status":"Complete"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, sheet.StatusComplete, decode[sheet.Row](t, rec).Status)

	rec = do(t, e, http.MethodPut, "/api/rows/6/status", `{"status":"Done"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPut, "/api/rows/42/status", `{"status":"Complete"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_PatchRow_Updates_One_Field(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)
	loginJane(t, e)

	rec := do(t, e, http.MethodPatch, "/api/rows/2", `{"column":"assignee","value":"Zed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	row := decode[sheet.Row](t, rec)
	assert.Equal(t, "Zed", row.Assignee)
	assert.Equal(t, "Launch marketing campaign for product", row.JobRequest)

	rec = do(t, e, http.MethodPatch, "/api/rows/2", `{"column":"cost","value":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPatch, "/api/rows/2", `{"column":"priority","value":"Urgent"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPatch, "/api/rows/77", `{"column":"assignee","value":"Zed"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_Cells_Edit_Resolves_Row_Through_Sorted_View(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)
	loginJane(t, e)

	rec := do(t, e, http.MethodPut, "/api/view", `{"sort":{"column":"status","direction":"asc"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodPost, "/api/cells/select", `{"row":0,"column":"jobRequest"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"state":"selected"`)

	rec = do(t, e, http.MethodPost, "/api/cells/edit", `{"row":0,"column":"jobRequest"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"draft":"Design new features for the website"`)

	rec = do(t, e, http.MethodPost, "/api/cells/draft", `{"value":"Redesign website"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodPost, "/api/cells/commit", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode[sheet.EditResult](t, rec)
	assert.Equal(t, sheet.EditResult{
		RowID:   5,
		Column:  sheet.ColumnJobRequest,
		Value:   "Redesign website",
		Backed:  true,
		Applied: true,
	}, result)

	rec = do(t, e, http.MethodGet, "/api/rows/5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"jobRequest":"Redesign website"`)
}

func Test_Cells_Return_BadRequest_When_No_Edit_Or_Out_Of_Range(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)
	loginJane(t, e)

	rec := do(t, e, http.MethodPost, "/api/cells/commit", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/cells/draft", `{"value":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/cells/select", `{"row":11,"column":"status"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/cells/edit", `{"row":2,"column":"status"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/cells/draft", `{"value":"Done"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/cells/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"idle"`)
}

func Test_View_Put_Replaces_View(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)

	rec := do(t, e, http.MethodPut, "/api/view",
		`{"search":"update","tab":"Reviewed","hidden":["url","budget"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/api/rows", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[rowsBody](t, rec)
	assert.Equal(t, []int{4}, rowIDs(body.Rows))
	assert.NotContains(t, body.Columns, sheet.ColumnURL)
	assert.NotContains(t, body.Columns, sheet.ColumnBudget)

	rec = do(t, e, http.MethodPost, "/api/view/tabs", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Tab 5"`)

	rec = do(t, e, http.MethodPut, "/api/view", `{"hidden":["nope"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_Export_Sets_Download_Headers(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)

	rec := do(t, e, http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, sheet.ExportMIMEType, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="job-requests-data.csv"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, sheet.Export(sheet.SeedRows()), rec.Body.String())
}

func Test_Import_Appends_Rows(t *testing.T) {
	t.Parallel()

	e, _ := newServer(t)

	csv := "Job Request,Submitted\nFirst import,01-01-2025\n,dropped\nSecond import\n"

	rec := do(t, e, http.MethodPost, "/api/import", csv)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	loginJane(t, e)

	rec = do(t, e, http.MethodPost, "/api/import", csv)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Imported int         `json:"imported"`
		Rows     []sheet.Row `json:"rows"`
	}

	require.NoError(t, sonic.ConfigStd.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Imported)
	assert.Equal(t, []int{6, 7}, rowIDs(got.Rows))
	assert.Equal(t, "01-01-2025", got.Rows[0].Submitted)
	assert.Equal(t, "15-03-2025", got.Rows[1].Submitted)
	assert.Equal(t, "jane@company.com", got.Rows[1].CreatedBy)
}

func Test_Mutation_Sets_Storage_Warning_Header_When_Writes_Fail(t *testing.T) {
	t.Parallel()

	e, storage := newServer(t)
	loginJane(t, e)

	storage.SetFailWrites(errors.New("disk full"))

	rec := do(t, e, http.MethodPost, "/api/rows", `{"jobRequest":"Unsaved"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get(server.StorageWarningHeader), "disk full")

	storage.SetFailWrites(nil)

	rec = do(t, e, http.MethodPatch, "/api/rows/6", `{"column":"budget","value":"10"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(server.StorageWarningHeader))
}
