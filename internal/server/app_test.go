package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/config"
	"github.com/dmitrijs2005/timesheet/internal/server/tabular"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "timesheet.xlsx")
	wb := tabular.NewWorkbook(tabular.FileBlob{Path: path})

	require.NoError(t, wb.EnsureTable(ctx, common.TableUsers, common.UserHeader))
	require.NoError(t, wb.AppendRows(ctx, common.TableUsers, [][]string{
		{"001", "alice", "wonderland", "Engineer", "B", "ER", "", ""},
	}))
	require.NoError(t, wb.EnsureTable(ctx, common.TableAttendance, common.AttendanceHeader))
	return path
}

func memoryConfig(location string) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.Backend = config.BackendMemory
	c.WorkbookLocation = location
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.SecretKey = "test-secret"
	c.LogLevel = "error"
	return c
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	c := memoryConfig("")
	c.CacheTTL = time.Minute

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, common.ErrConfiguration)

	c = memoryConfig("")
	c.LogLevel = "chatty"
	_, err = NewApp(context.Background(), c)
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestNewApp_WorkbookMissingUserTable(t *testing.T) {
	c := memoryConfig("")
	c.Backend = config.BackendWorkbook
	c.WorkbookLocation = filepath.Join(t.TempDir(), "absent.xlsx")

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSeedMemory_CopiesWorkbook(t *testing.T) {
	path := writeWorkbook(t)
	m := tabular.NewMemory()

	require.NoError(t, seedMemory(context.Background(), m, memoryConfig(path)))

	users, err := m.ReadAll(context.Background(), common.TableUsers)
	require.NoError(t, err)
	require.Len(t, users.Rows, 1)
	assert.Equal(t, "alice", users.Rows[0].Get(common.ColUsername))

	_, err = m.ReadAll(context.Background(), common.TableAttendance)
	require.NoError(t, err)
}

func TestSeedMemory_MissingWorkbookGivesEmptyTables(t *testing.T) {
	m := tabular.NewMemory()
	c := memoryConfig(filepath.Join(t.TempDir(), "absent.xlsx"))

	require.NoError(t, seedMemory(context.Background(), m, c))

	users, err := m.ReadAll(context.Background(), common.TableUsers)
	require.NoError(t, err)
	assert.Empty(t, users.Rows)
	assert.Equal(t, common.UserHeader, users.Header)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(writeWorkbook(t)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}
