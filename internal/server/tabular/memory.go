package tabular

import (
	"context"
	"sync"
)

// Memory keeps tables in process memory. It backs the "memory" store
// setting and the tests.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][][]string
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string][][]string)}
}

// Seed replaces table with header and rows.
func (m *Memory) Seed(table string, header []string, rows ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw := [][]string{append([]string(nil), header...)}
	for _, r := range rows {
		raw = append(raw, append([]string(nil), r...))
	}
	m.tables[table] = raw
}

func (m *Memory) ReadAll(ctx context.Context, table string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.tables[table]
	if !ok {
		return nil, tableNotFound(table)
	}
	return NewTable(table, raw), nil
}

func (m *Memory) AppendRows(ctx context.Context, table string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.tables[table]
	if !ok {
		return tableNotFound(table)
	}
	for _, r := range rows {
		raw = append(raw, append([]string(nil), r...))
	}
	m.tables[table] = raw
	return nil
}

func (m *Memory) UpdateCell(ctx context.Context, table string, rowIndex int, column, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.tables[table]
	if !ok {
		return tableNotFound(table)
	}
	col := NewTable(table, raw[:1]).ColumnIndex(column)
	if col < 0 {
		return columnNotFound(table, column)
	}
	if rowIndex < 1 || rowIndex >= len(raw) {
		return rowNotFound(table, rowIndex)
	}

	row := raw[rowIndex]
	for len(row) <= col {
		row = append(row, "")
	}
	row[col] = value
	raw[rowIndex] = row
	return nil
}

func (m *Memory) EnsureTable(ctx context.Context, table string, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[table]; !ok {
		m.tables[table] = [][]string{append([]string(nil), header...)}
	}
	return nil
}
