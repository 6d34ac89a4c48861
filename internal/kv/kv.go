// Package kv is the persistence boundary of jobsheet: a string-keyed byte store
// with interchangeable backends.
//
// The main types are:
//   - [Storage]: interface every backend satisfies
//   - [File]: one file per key, atomic writes, flock-guarded
//   - [SQLite]: a single kv table in a SQLite database
//   - [Redis]: prefixed keys on a Redis server
//   - [Memory]: process-local map, for tests and throwaway sessions
//
// Use [Open] to pick a backend from configuration:
//
//	store, err := kv.Open(ctx, kv.Options{Backend: kv.BackendFile, Dir: ".jobsheet"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
package kv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// SQLiteFileName is the database file created inside Options.Dir by the sqlite backend.
const SQLiteFileName = "jobsheet.sqlite"

// Errors returned by backends.
var (
	ErrNotFound       = errors.New("key not found")
	ErrInvalidKey     = errors.New("invalid key")
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrMissingDir     = errors.New("storage directory is empty")
	ErrMissingURL     = errors.New("redis url is empty")
)

// Storage is a durable string-keyed byte store.
//
// Get returns [ErrNotFound] when the key has never been set or was deleted.
// Delete of an absent key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend  string // file|sqlite|redis|memory
	Dir      string // data directory for file and sqlite
	RedisURL string // redis://[:password@]host:port/db
}

// IsValidBackend reports whether name is a backend [Open] understands.
func IsValidBackend(name string) bool {
	switch name {
	case BackendFile, BackendSQLite, BackendRedis, BackendMemory:
		return true
	default:
		return false
	}
}

// Open returns the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Backend {
	case BackendFile, "":
		if opts.Dir == "" {
			return nil, fmt.Errorf("open file storage: %w", ErrMissingDir)
		}

		return OpenFile(opts.Dir)
	case BackendSQLite:
		if opts.Dir == "" {
			return nil, fmt.Errorf("open sqlite storage: %w", ErrMissingDir)
		}

		return OpenSQLite(ctx, filepath.Join(opts.Dir, SQLiteFileName))
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("open redis storage: %w", ErrMissingURL)
		}

		return OpenRedis(ctx, opts.RedisURL)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
	}
}

// validateKey rejects keys that could escape a directory or collide with
// the lock directory of the file backend.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: (empty)", ErrInvalidKey)
	}

	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." || strings.HasPrefix(key, ".") {
		return fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}

	return nil
}
