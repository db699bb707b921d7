package timesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
)

func entry(user, d, shift string, areas ...string) models.AttendanceEntry {
	e := models.AttendanceEntry{Username: user, Date: d, Shift: shift}
	copy(e.Areas[:], areas)
	return e
}

func keys(entries []models.AttendanceEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Username + "@" + e.Date
	}
	return out
}

var activityLog = []models.AttendanceEntry{
	entry("alice", "2024-03-01", common.ShiftDay, "ER"),
	entry("bob", "2024-03-03", common.ShiftNight, "SM", "ER"),
	entry("alice", "2024-03-05", common.ShiftDay, "GCP"),
	entry("carol", "garbage", common.ShiftDay, "ER"),
	entry("bob", "2024-02-20", common.ShiftNoon, "SC"),
}

func TestFilterActivity_DateRangeAndOrder(t *testing.T) {
	got := FilterActivity(activityLog, ActivityFilter{From: date("2024-03-01"), To: date("2024-03-05")})
	assert.Equal(t, []string{"alice@2024-03-05", "bob@2024-03-03", "alice@2024-03-01"}, keys(got))
}

func TestFilterActivity_NoBounds(t *testing.T) {
	got := FilterActivity(activityLog, ActivityFilter{})
	assert.Equal(t, []string{
		"alice@2024-03-05", "bob@2024-03-03", "alice@2024-03-01", "bob@2024-02-20", "carol@garbage",
	}, keys(got))
}

func TestFilterActivity_Filters(t *testing.T) {
	got := FilterActivity(activityLog, ActivityFilter{Username: "BOB"})
	assert.Equal(t, []string{"bob@2024-03-03", "bob@2024-02-20"}, keys(got))

	got = FilterActivity(activityLog, ActivityFilter{Shift: common.ShiftDay, From: date("2024-01-01")})
	assert.Equal(t, []string{"alice@2024-03-05", "alice@2024-03-01"}, keys(got))

	got = FilterActivity(activityLog, ActivityFilter{Area: "ER", To: date("2024-03-31")})
	assert.Equal(t, []string{"bob@2024-03-03", "alice@2024-03-01"}, keys(got), "any area slot matches")
}
