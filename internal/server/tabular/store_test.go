package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/timesheet/internal/common"
)

func TestNewTable(t *testing.T) {
	raw := [][]string{
		{" Id ", "Username", "Grade"},
		{"1", "alice", "A"},
		{"", "", ""},
		{"3", "carol"},
	}

	tbl := NewTable("user", raw)

	assert.Equal(t, []string{"Id", "Username", "Grade"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, 1, tbl.Rows[0].Index)
	assert.Equal(t, "alice", tbl.Rows[0].Get("Username"))
	assert.Equal(t, 3, tbl.Rows[1].Index, "blank rows still count towards the index")
	assert.Equal(t, "", tbl.Rows[1].Get("Grade"))
	assert.Equal(t, "", tbl.Rows[1].Get("Missing"))
}

func TestNewTable_Empty(t *testing.T) {
	tbl := NewTable("x", nil)
	assert.Empty(t, tbl.Header)
	assert.Empty(t, tbl.Rows)
}

func TestTable_Require(t *testing.T) {
	tbl := NewTable("user", [][]string{{"Id", "Username"}})

	require.NoError(t, tbl.Require("Id", "Username"))

	err := tbl.Require("Id", "Password")
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, err.Error(), `"Password"`)
}

func TestTable_CloneIsDeep(t *testing.T) {
	tbl := NewTable("user", [][]string{{"Id"}, {"1"}})
	c := tbl.Clone()

	c.Rows[0].Values["Id"] = "changed"
	c.Header[0] = "changed"

	assert.Equal(t, "1", tbl.Rows[0].Get("Id"))
	assert.Equal(t, "Id", tbl.Header[0])
}

func TestParseS3Location(t *testing.T) {
	b, k, ok := ParseS3Location("s3://vault/timesheet/book.xlsx")
	require.True(t, ok)
	assert.Equal(t, "vault", b)
	assert.Equal(t, "timesheet/book.xlsx", k)

	for _, bad := range []string{"book.xlsx", "s3://", "s3://bucket", "s3:///key"} {
		_, _, ok := ParseS3Location(bad)
		assert.False(t, ok, bad)
	}
}
