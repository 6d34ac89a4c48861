package kv

import (
	"bytes"
	"context"
	"fmt"
	"sync"
)

// Memory is a map-backed Storage. Values are copied on the way in and out.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte

	// failWrites makes Set and Delete fail, for exercising the
	// storage-unavailable path.
	failWrites error
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	err := validateKey(key)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return bytes.Clone(value), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	err := validateKey(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites != nil {
		return m.failWrites
	}

	m.values[key] = bytes.Clone(value)

	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	err := validateKey(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites != nil {
		return m.failWrites
	}

	delete(m.values, key)

	return nil
}

func (m *Memory) Close() error {
	return nil
}

// SetFailWrites toggles write failures under the backend's lock.
func (m *Memory) SetFailWrites(err error) {
	m.mu.Lock()
	m.failWrites = err
	m.mu.Unlock()
}
