package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/calvinalkan/jobsheet/internal/kv"
	"github.com/calvinalkan/jobsheet/internal/sheet"
)

var (
	errIDRequired     = errors.New("row id is required")
	errInvalidID      = errors.New("invalid row id")
	errEmptyValue     = errors.New("empty value not allowed")
	errArgsRequired   = errors.New("missing arguments")
	errTooManyArgs    = errors.New("too many arguments")
	errNotInteractive = errors.New("stdin is not a terminal")
)

// appEnv is what commands need to open the sheet.
type appEnv struct {
	cfg   *sheet.Config
	stdin io.Reader
	log   logrus.FieldLogger
	clock sheet.Clock
}

// withApp opens storage and the app, runs fn, and turns an unsaved-changes
// condition into a warning.
func (e *appEnv) withApp(ctx context.Context, o *IO, fn func(app *sheet.App) error) error {
	storage, err := kv.Open(ctx, e.cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	defer func() { _ = storage.Close() }()

	app, err := sheet.Open(ctx, sheet.Options{
		Storage:    storage,
		Logger:     e.log,
		Clock:      e.clock,
		LoginDelay: e.cfg.LoginDelayDuration(),
	})
	if err != nil {
		return err
	}

	err = fn(app)

	if warning := app.StorageWarning(); warning != nil {
		o.Warn(warning.Error(), "changes were not saved; check the data directory or storage settings")
	}

	return err
}

func parseRowID(arg string) (int, error) {
	if arg == "" {
		return 0, errIDRequired
	}

	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s", errInvalidID, arg)
	}

	return id, nil
}

func requireArgs(args []string, n int, names string) error {
	if len(args) < n {
		return fmt.Errorf("%w: want %s", errArgsRequired, names)
	}

	if len(args) > n {
		return fmt.Errorf("%w: want %s", errTooManyArgs, names)
	}

	return nil
}
