package sink

import (
	"context"
	"sync"
)

// Memory keeps the latest version of each table in memory.
type Memory struct {
	mu     sync.Mutex
	tables map[string]Table
	writes []string
}

// NewMemory creates an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]Table)}
}

// Replace stores t, dropping any earlier table of the same name.
func (m *Memory) Replace(_ context.Context, t Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[t.Name] = t
	m.writes = append(m.writes, t.Name)
	return nil
}

// Table returns the stored table by name.
func (m *Memory) Table(name string) (Table, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[name]
	return t, ok
}

// Writes returns table names in the order they were replaced.
func (m *Memory) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
