package tabular

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/timesheet/internal/common"
)

func TestMemory_ReadAppendUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("user", []string{"Id", "Username"}, []string{"1", "alice"})

	require.NoError(t, m.AppendRows(ctx, "user", [][]string{{"2", "bob"}}))
	require.NoError(t, m.UpdateCell(ctx, "user", 2, "Username", "robert"))

	tbl, err := m.ReadAll(ctx, "user")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "robert", tbl.Rows[1].Get("Username"))
}

func TestMemory_Errors(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("user", []string{"Id"}, []string{"1"})

	_, err := m.ReadAll(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, m.AppendRows(ctx, "nope", nil), common.ErrNotFound)
	assert.ErrorIs(t, m.UpdateCell(ctx, "user", 1, "Missing", "x"), common.ErrNotFound)
	assert.ErrorIs(t, m.UpdateCell(ctx, "user", 0, "Id", "x"), common.ErrNotFound)
	assert.ErrorIs(t, m.UpdateCell(ctx, "user", 2, "Id", "x"), common.ErrNotFound)
}

func TestMemory_UpdateCellExtendsShortRow(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("user", []string{"Id", "Username", "Grade"}, []string{"1"})

	require.NoError(t, m.UpdateCell(ctx, "user", 1, "Grade", "B"))

	tbl, err := m.ReadAll(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "B", tbl.Rows[0].Get("Grade"))
}

func TestMemory_EnsureTable(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.EnsureTable(ctx, "audit_log", []string{"Timestamp"}))
	require.NoError(t, m.AppendRows(ctx, "audit_log", [][]string{{"t1"}}))
	require.NoError(t, m.EnsureTable(ctx, "audit_log", []string{"Other"}))

	tbl, err := m.ReadAll(ctx, "audit_log")
	require.NoError(t, err)
	assert.Equal(t, []string{"Timestamp"}, tbl.Header, "existing table is left alone")
	assert.Len(t, tbl.Rows, 1)
}
