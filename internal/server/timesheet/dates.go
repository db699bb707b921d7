package timesheet

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
)

// MaxRangeDays caps the number of days a draft may span.
const MaxRangeDays = 366

// DefaultDraftDays is the length of the default draft range, ending today.
const DefaultDraftDays = 7

// DefaultLogDays is how far back the activity log looks by default.
const DefaultLogDays = 7

// Day truncates t to its calendar date in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayName returns the English weekday name of t.
func DayName(t time.Time) string {
	return t.Weekday().String()
}

// DateRange returns every calendar day from from to to inclusive.
func DateRange(from, to time.Time) ([]time.Time, error) {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end date %s is before start date %s",
			common.ErrValidation, to.Format(models.DateLayout), from.Format(models.DateLayout))
	}

	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if len(days) == MaxRangeDays {
			return nil, fmt.Errorf("%w: range longer than %d days", common.ErrValidation, MaxRangeDays)
		}
		days = append(days, d)
	}
	return days, nil
}

// DefaultDraftRange is the week ending on today.
func DefaultDraftRange(today time.Time) (time.Time, time.Time) {
	today = Day(today)
	return today.AddDate(0, 0, -(DefaultDraftDays - 1)), today
}

// DefaultLogRange spans DefaultLogDays back from today.
func DefaultLogRange(today time.Time) (time.Time, time.Time) {
	today = Day(today)
	return today.AddDate(0, 0, -DefaultLogDays), today
}

// AreaOptions orders the area codes with the preferred ones first, in
// preference order, followed by the rest in their usual order.
func AreaOptions(preferred []string) []string {
	opts := make([]string, 0, len(common.AreaCodes))
	seen := make(map[string]bool, len(common.AreaCodes))
	for _, a := range preferred {
		if common.IsAreaCode(a) && !seen[a] {
			opts = append(opts, a)
			seen[a] = true
		}
	}
	for _, a := range common.AreaCodes {
		if !seen[a] {
			opts = append(opts, a)
		}
	}
	return opts
}

// Drafts builds one blank draft per day, defaulting the first area and the
// shift from the user's preferences.
func Drafts(user *models.User, days []time.Time) []Draft {
	area := AreaOptions(user.PreferredAreas)[0]
	shift := user.PreferredShift
	if !common.IsShift(shift) {
		shift = common.DefaultShift
	}

	drafts := make([]Draft, len(days))
	for i, d := range days {
		drafts[i] = Draft{
			Date:     d.Format(models.DateLayout),
			Hours:    "0",
			Overtime: "0",
			Areas:    [common.MaxAreaSlots]string{area},
			Shift:    shift,
		}
	}
	return drafts
}
