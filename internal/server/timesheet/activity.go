package timesheet

import (
	"sort"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
)

// ActivityFilter selects attendance entries for the activity log. Zero
// values match everything.
type ActivityFilter struct {
	From     time.Time
	To       time.Time
	Username string
	Shift    string
	Area     string
}

// FilterActivity returns the entries matching f, newest date first. Entries
// whose date does not parse are dropped when a date bound is set.
func FilterActivity(entries []models.AttendanceEntry, f ActivityFilter) []models.AttendanceEntry {
	type dated struct {
		entry models.AttendanceEntry
		day   time.Time
		ok    bool
	}

	from, to := f.From, f.To
	if !from.IsZero() {
		from = Day(from)
	}
	if !to.IsZero() {
		to = Day(to)
	}

	var out []dated
	for _, e := range entries {
		d, err := time.ParseInLocation(models.DateLayout, e.Date, dayLocation(from, to))
		ok := err == nil
		if (!from.IsZero() || !to.IsZero()) && !ok {
			continue
		}
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		if f.Username != "" && !common.SameUsername(e.Username, f.Username) {
			continue
		}
		if f.Shift != "" && e.Shift != f.Shift {
			continue
		}
		if f.Area != "" && !hasArea(&e, f.Area) {
			continue
		}
		out = append(out, dated{entry: e, day: d, ok: ok})
	}

	// Unparsable dates sort last.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ok != out[j].ok {
			return out[i].ok
		}
		return out[i].day.After(out[j].day)
	})

	result := make([]models.AttendanceEntry, len(out))
	for i := range out {
		result[i] = out[i].entry
	}
	return result
}

func hasArea(e *models.AttendanceEntry, area string) bool {
	for _, a := range e.Areas {
		if a == area {
			return true
		}
	}
	return false
}

func dayLocation(from, to time.Time) *time.Location {
	switch {
	case !from.IsZero():
		return from.Location()
	case !to.IsZero():
		return to.Location()
	}
	return time.UTC
}
