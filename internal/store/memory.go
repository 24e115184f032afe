// ABOUTME: In-memory clip store
// ABOUTME: Used by tests and when no database path is configured
package store

import (
	"context"
	"sync"
)

// Memory keeps the record in process memory. Err, when set, fails every call.
type Memory struct {
	mu  sync.Mutex
	rec *Record
	Err error
}

// NewMemory creates an empty memory store
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns a copy of the stored record
func (m *Memory) Get(ctx context.Context) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.rec == nil {
		return nil, nil
	}
	rec := *m.rec
	return &rec, nil
}

// Put replaces the stored record
func (m *Memory) Put(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.rec = &rec
	return nil
}

// Delete clears the stored record
func (m *Memory) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.rec = nil
	return nil
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}
