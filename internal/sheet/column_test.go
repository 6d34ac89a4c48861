package sheet_test

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/jobsheet/internal/sheet"
)

func Test_ParseColumn_Resolves_Every_Key_When_Known(t *testing.T) {
	t.Parallel()

	for _, col := range sheet.Columns() {
		got, err := sheet.ParseColumn(col.Key())
		require.NoError(t, err)
		assert.Equal(t, col, got)
	}

	_, err := sheet.ParseColumn("createdBy")
	require.ErrorIs(t, err, sheet.ErrUnknownColumn, "ownership is not an editable column")

	_, err = sheet.ParseColumn("JobRequest")
	require.ErrorIs(t, err, sheet.ErrUnknownColumn, "keys are case sensitive")
}

func Test_Column_Set_Replaces_Only_Named_Field(t *testing.T) {
	t.Parallel()

	row := sheet.SeedRows()[1]
	before := row

	require.NoError(t, sheet.ColumnAssignee.Set(&row, "Someone Else"))

	assert.Equal(t, "Someone Else", row.Assignee)

	row.Assignee = before.Assignee
	assert.Equal(t, before, row)

	require.ErrorIs(t, sheet.Column(0).Set(&row, "x"), sheet.ErrUnknownColumn)
}

func Test_Column_Validate_Constrains_Choice_Columns(t *testing.T) {
	t.Parallel()

	assert.NoError(t, sheet.ColumnStatus.Validate("Need to start"))
	assert.ErrorIs(t, sheet.ColumnStatus.Validate("need to start"), sheet.ErrInvalidChoice)
	assert.NoError(t, sheet.ColumnPriority.Validate("Low"))
	assert.ErrorIs(t, sheet.ColumnPriority.Validate("Urgent"), sheet.ErrInvalidChoice)
	assert.NoError(t, sheet.ColumnBudget.Validate("anything, really"))

	assert.Equal(t, []string{"Submitted", "Need to start", "In-progress", "Complete", "Blocked"}, sheet.ColumnStatus.Choices())
	assert.Equal(t, []string{"High", "Medium", "Low"}, sheet.ColumnPriority.Choices())
	assert.Nil(t, sheet.ColumnURL.Choices())
}

func Test_Column_Marshals_As_Key_When_Encoded(t *testing.T) {
	t.Parallel()

	data, err := sonic.ConfigStd.Marshal(sheet.Cell{Row: 2, Column: sheet.ColumnDueDate})
	require.NoError(t, err)
	assert.JSONEq(t, `{"row":2,"column":"dueDate"}`, string(data))

	var cell sheet.Cell

	require.NoError(t, sonic.ConfigStd.Unmarshal([]byte(`{"row":1,"column":"estValue"}`), &cell))
	assert.Equal(t, sheet.Cell{Row: 1, Column: sheet.ColumnEstValue}, cell)

	err = sonic.ConfigStd.Unmarshal([]byte(`{"row":1,"column":"nope"}`), &cell)
	require.Error(t, err)
}

func Test_Row_Json_Uses_Stored_Field_Names(t *testing.T) {
	t.Parallel()

	data, err := sonic.ConfigStd.Marshal(sheet.Row{ID: 7, JobRequest: "x", EstValue: "1", DueDate: "01-02-2025"})
	require.NoError(t, err)

	var raw map[string]any

	require.NoError(t, sonic.ConfigStd.Unmarshal(data, &raw))

	for _, key := range []string{"id", "jobRequest", "submitted", "status", "submitter", "url", "assignee",
		"priority", "dueDate", "budget", "estValue", "createdBy", "description"} {
		assert.Contains(t, raw, key)
	}

	assert.Len(t, raw, 13)
}
