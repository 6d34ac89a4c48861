package sheet

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"

	"github.com/calvinalkan/jobsheet/internal/kv"
)

// RowStore is the ordered, persisted collection of rows.
//
// Every mutation rewrites the full sequence under [RowsKey]. A failed write
// does not fail the mutation: the in-memory rows stay authoritative, the
// failure is logged and kept as [RowStore.StorageWarning], and the next
// mutation writes everything again.
//
// RowStore is not safe for concurrent use.
type RowStore struct {
	storage kv.Storage
	log     logrus.FieldLogger
	rows    []Row
	warning error
}

// NewRowStore returns an empty store. Call [RowStore.Load] before use.
func NewRowStore(storage kv.Storage, logger logrus.FieldLogger) *RowStore {
	if storage == nil {
		panic("sheet.NewRowStore: storage is nil")
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &RowStore{storage: storage, log: logger, rows: []Row{}}
}

// Load reads the persisted rows. When nothing is stored yet, the seed rows are
// returned and written. A stored value that does not decode is
// [ErrCorruptRows]; it is never overwritten.
func (s *RowStore) Load(ctx context.Context) ([]Row, error) {
	data, err := s.storage.Get(ctx, RowsKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			return nil, fmt.Errorf("loading rows: %w", err)
		}

		s.rows = SeedRows()
		s.log.WithField("rows", len(s.rows)).Info("seeded empty store")
		s.persist(ctx)

		return s.Rows(), nil
	}

	var rows []Row

	err = sonic.ConfigStd.Unmarshal(data, &rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRows, err)
	}

	if rows == nil {
		rows = []Row{}
	}

	s.rows = rows

	return s.Rows(), nil
}

// Save replaces the whole sequence and persists it.
func (s *RowStore) Save(ctx context.Context, rows []Row) {
	s.rows = slices.Clone(rows)
	if s.rows == nil {
		s.rows = []Row{}
	}

	s.persist(ctx)
}

// Append assigns the next id to row, appends it and persists.
func (s *RowStore) Append(ctx context.Context, row Row) Row {
	row.ID = nextID(s.rows)
	s.rows = append(s.rows, row)

	s.log.WithField("id", row.ID).Debug("appended row")
	s.persist(ctx)

	return row
}

// AppendImported assigns sequential ids continuing from the current maximum
// and appends rows in order with a single write.
func (s *RowStore) AppendImported(ctx context.Context, rows []Row) []Row {
	if len(rows) == 0 {
		return []Row{}
	}

	id := nextID(s.rows)
	added := make([]Row, 0, len(rows))

	for _, row := range rows {
		row.ID = id
		id++

		added = append(added, row)
	}

	s.rows = append(s.rows, added...)

	s.log.WithField("rows", len(added)).Info("imported rows")
	s.persist(ctx)

	return added
}

// UpdateField sets one field of the row with the given id. It reports false
// and changes nothing when no such row exists.
func (s *RowStore) UpdateField(ctx context.Context, id int, col Column, value string) bool {
	idx := s.indexOf(id)
	if idx < 0 {
		s.log.WithField("id", id).Debug("update of unknown row ignored")

		return false
	}

	err := col.Set(&s.rows[idx], value)
	if err != nil {
		s.log.WithError(err).Warn("update rejected")

		return false
	}

	s.log.WithFields(logrus.Fields{"id": id, "column": col.Key()}).Debug("updated field")
	s.persist(ctx)

	return true
}

// UpdateStatus is UpdateField for the status column. Callers decide who may
// change a status.
func (s *RowStore) UpdateStatus(ctx context.Context, id int, status Status) bool {
	return s.UpdateField(ctx, id, ColumnStatus, string(status))
}

// Rows returns a copy of the rows in store order.
func (s *RowStore) Rows() []Row {
	return slices.Clone(s.rows)
}

// Get returns the row with the given id.
func (s *RowStore) Get(id int) (Row, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Row{}, false
	}

	return s.rows[idx], true
}

// Len returns the number of stored rows.
func (s *RowStore) Len() int {
	return len(s.rows)
}

// StorageWarning returns the error of the last write if it failed, nil once a
// later write succeeds.
func (s *RowStore) StorageWarning() error {
	return s.warning
}

func (s *RowStore) indexOf(id int) int {
	return slices.IndexFunc(s.rows, func(r Row) bool { return r.ID == id })
}

func (s *RowStore) persist(ctx context.Context) {
	data, err := sonic.ConfigStd.Marshal(s.rows)
	if err == nil {
		err = s.storage.Set(ctx, RowsKey, data)
	}

	if err != nil {
		s.warning = fmt.Errorf("saving rows: %w", err)
		s.log.WithError(err).Warn("saving rows failed, will retry on next change")

		return
	}

	s.warning = nil
}
