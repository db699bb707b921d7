package tabular

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dmitrijs2005/timesheet/internal/common"
)

// Workbook is a Store over an .xlsx workbook: one sheet per table, the
// header in row 1. The workbook is loaded from its Blob on every call and
// saved back after every mutation, so other writers' changes are picked up
// and the last save wins.
type Workbook struct {
	blob Blob
	mu   chan struct{}
}

func NewWorkbook(blob Blob) *Workbook {
	return &Workbook{blob: blob, mu: make(chan struct{}, 1)}
}

// lock serializes this process's read-modify-write cycles. It gives up when
// ctx is done.
func (w *Workbook) lock(ctx context.Context) error {
	select {
	case w.mu <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Workbook) unlock() { <-w.mu }

func (w *Workbook) open(ctx context.Context) (*excelize.File, error) {
	data, err := w.blob.Load(ctx)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, unavailable(fmt.Errorf("open workbook: %w", err))
	}
	return f, nil
}

func (w *Workbook) save(ctx context.Context, f *excelize.File) error {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return unavailable(fmt.Errorf("serialize workbook: %w", err))
	}
	return w.blob.Save(ctx, buf.Bytes())
}

func hasSheet(f *excelize.File, name string) bool {
	idx, err := f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

func (w *Workbook) ReadAll(ctx context.Context, table string) (*Table, error) {
	f, err := w.open(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, tableNotFound(table)
		}
		return nil, err
	}
	defer f.Close()

	if !hasSheet(f, table) {
		return nil, tableNotFound(table)
	}
	raw, err := f.GetRows(table)
	if err != nil {
		return nil, unavailable(err)
	}
	return NewTable(table, raw), nil
}

func (w *Workbook) AppendRows(ctx context.Context, table string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	if err := w.lock(ctx); err != nil {
		return err
	}
	defer w.unlock()

	f, err := w.open(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return tableNotFound(table)
		}
		return err
	}
	defer f.Close()

	if !hasSheet(f, table) {
		return tableNotFound(table)
	}
	existing, err := f.GetRows(table)
	if err != nil {
		return unavailable(err)
	}

	next := len(existing) + 1
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, next+i)
		if err != nil {
			return err
		}
		values := make([]any, len(r))
		for j, v := range r {
			values[j] = v
		}
		if err := f.SetSheetRow(table, cell, &values); err != nil {
			return unavailable(err)
		}
	}
	return w.save(ctx, f)
}

func (w *Workbook) UpdateCell(ctx context.Context, table string, rowIndex int, column, value string) error {
	if err := w.lock(ctx); err != nil {
		return err
	}
	defer w.unlock()

	f, err := w.open(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return tableNotFound(table)
		}
		return err
	}
	defer f.Close()

	if !hasSheet(f, table) {
		return tableNotFound(table)
	}
	raw, err := f.GetRows(table)
	if err != nil {
		return unavailable(err)
	}
	col := NewTable(table, raw).ColumnIndex(column)
	if col < 0 {
		return columnNotFound(table, column)
	}
	if rowIndex < 1 || rowIndex >= len(raw) {
		return rowNotFound(table, rowIndex)
	}

	// Header occupies sheet row 1, so data row n lives on sheet row n+1.
	cell, err := excelize.CoordinatesToCellName(col+1, rowIndex+1)
	if err != nil {
		return err
	}
	if err := f.SetCellStr(table, cell, value); err != nil {
		return unavailable(err)
	}
	return w.save(ctx, f)
}

func (w *Workbook) EnsureTable(ctx context.Context, table string, header []string) error {
	if err := w.lock(ctx); err != nil {
		return err
	}
	defer w.unlock()

	f, err := w.open(ctx)
	fresh := false
	switch {
	case errors.Is(err, common.ErrNotFound):
		f, fresh = excelize.NewFile(), true
	case err != nil:
		return err
	}
	defer f.Close()

	if hasSheet(f, table) {
		return nil
	}

	if _, err := f.NewSheet(table); err != nil {
		return unavailable(err)
	}
	values := make([]any, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := f.SetSheetRow(table, "A1", &values); err != nil {
		return unavailable(err)
	}
	if fresh && table != "Sheet1" {
		// Drop the placeholder sheet excelize creates for new files.
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return unavailable(err)
		}
		if idx, err := f.GetSheetIndex(table); err == nil && idx >= 0 {
			f.SetActiveSheet(idx)
		}
	}
	return w.save(ctx, f)
}
