package sheet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/jobsheet/internal/kv"
	"github.com/calvinalkan/jobsheet/internal/logging"
	"github.com/calvinalkan/jobsheet/internal/sheet"
)

var testToday = time.Date(2025, time.March, 15, 9, 30, 0, 0, time.UTC)

const testTodayText = "15-03-2025"

// openApp returns an app over fresh memory storage, seeded and logged in as
// Jane.
func openApp(t *testing.T) (*sheet.App, *kv.Memory) {
	t.Helper()

	storage := kv.NewMemory()
	app := openAppOn(t, storage)

	_, err := app.QuickLogin(context.Background(), "jane")
	require.NoError(t, err)

	return app, storage
}

func openAppOn(t *testing.T, storage kv.Storage) *sheet.App {
	t.Helper()

	app, err := sheet.Open(context.Background(), sheet.Options{
		Storage: storage,
		Logger:  logging.Discard(),
		Clock:   sheet.FixedClock(testToday),
	})
	require.NoError(t, err)

	return app
}

// storeWith returns a loaded store holding exactly rows.
func storeWith(t *testing.T, rows ...sheet.Row) (*sheet.RowStore, *kv.Memory) {
	t.Helper()

	storage := kv.NewMemory()
	store := sheet.NewRowStore(storage, logging.Discard())

	_, err := store.Load(context.Background())
	require.NoError(t, err)

	store.Save(context.Background(), rows)

	return store, storage
}

func ids(rows []sheet.Row) []int {
	out := make([]int, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ID)
	}

	return out
}
