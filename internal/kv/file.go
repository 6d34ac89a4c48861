package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// valueFileExt is appended to every key; values are JSON documents.
const valueFileExt = ".json"

// File stores each key as <dir>/<key>.json.
//
// Writes go through [atomic.WriteFile] under a per-key flock, so readers
// never observe a half-written value and two jr processes writing the same
// key are serialised.
type File struct {
	dir string
}

// OpenFile creates dir if needed and returns a file backend rooted there.
func OpenFile(dir string) (*File, error) {
	err := os.MkdirAll(dir, dirPerms)
	if err != nil {
		return nil, fmt.Errorf("open file storage: %w", err)
	}

	return &File{dir: filepath.Clean(dir)}, nil
}

// Dir returns the directory holding the value files.
func (f *File) Dir() string {
	return f.dir
}

// Path returns the file a key is stored in.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, key+valueFileExt)
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	err := validateKey(key)
	if err != nil {
		return nil, err
	}

	err = ctx.Err()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}

		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return data, nil
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	err := validateKey(key)
	if err != nil {
		return err
	}

	err = ctx.Err()
	if err != nil {
		return err
	}

	path := f.Path(key)

	return withLock(path, func() error {
		writeErr := atomic.WriteFile(path, bytes.NewReader(value))
		if writeErr != nil {
			return fmt.Errorf("write %s: %w", key, writeErr)
		}

		// atomic.WriteFile keeps the temp file's mode for new files.
		chmodErr := os.Chmod(path, filePerms)
		if chmodErr != nil {
			return fmt.Errorf("chmod %s: %w", key, chmodErr)
		}

		return nil
	})
}

func (f *File) Delete(ctx context.Context, key string) error {
	err := validateKey(key)
	if err != nil {
		return err
	}

	err = ctx.Err()
	if err != nil {
		return err
	}

	path := f.Path(key)

	return withLock(path, func() error {
		removeErr := os.Remove(path)
		if removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", key, removeErr)
		}

		return nil
	})
}

// Close is a no-op; the file backend holds no open handles between calls.
func (f *File) Close() error {
	return nil
}
