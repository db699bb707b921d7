// Package timesheet holds the store-independent rules for timesheet entry:
// batch validation, date ranges, area ordering and activity-log filtering.
package timesheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
)

const (
	// MaxDailyHours bounds hours + overtime for one day.
	MaxDailyHours = 24.0
	// Tolerance absorbs float accumulation from 0.5-hour steps.
	Tolerance = 0.01
	// HourStep is the granularity of hours and overtime.
	HourStep = 0.5
)

// Draft is one unsaved timesheet line as entered by the user. Hours and
// overtime are kept as text so that malformed input can be reported.
type Draft struct {
	Date     string
	Hours    string
	Overtime string
	Areas    [common.MaxAreaSlots]string
	Shift    string
	Remark   string
}

// Problem is a validation failure tied to one date.
type Problem struct {
	Date    string
	Field   string
	Message string
}

func (p Problem) String() string {
	if p.Field == "" {
		return fmt.Sprintf("%s: %s", p.Date, p.Message)
	}
	return fmt.Sprintf("%s: %s %s", p.Date, p.Field, p.Message)
}

// Result is the outcome of validating a batch. Accepted is only populated
// when the batch has neither problems nor duplicates.
type Result struct {
	Accepted   []models.AttendanceEntry
	Problems   []Problem
	Duplicates []string
}

// OK reports whether the batch may be written.
func (r *Result) OK() bool {
	return len(r.Problems) == 0 && len(r.Duplicates) == 0
}

// Err returns a *Rejection for a refused batch, nil for an acceptable one.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	return &Rejection{Problems: r.Problems, Duplicates: r.Duplicates}
}

// Rejection explains why a batch was refused. It matches
// common.ErrValidation when any field failed and common.ErrDuplicate when
// any date was already taken.
type Rejection struct {
	Problems   []Problem
	Duplicates []string
}

func (r *Rejection) Error() string {
	var parts []string
	if len(r.Problems) > 0 {
		msgs := make([]string, len(r.Problems))
		for i, p := range r.Problems {
			msgs[i] = p.String()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", common.ErrValidation, strings.Join(msgs, "; ")))
	}
	if len(r.Duplicates) > 0 {
		parts = append(parts, fmt.Sprintf("%s: entries already exist for %s", common.ErrDuplicate, strings.Join(r.Duplicates, ", ")))
	}
	return strings.Join(parts, "\n")
}

func (r *Rejection) Unwrap() []error {
	var errs []error
	if len(r.Problems) > 0 {
		errs = append(errs, common.ErrValidation)
	}
	if len(r.Duplicates) > 0 {
		errs = append(errs, common.ErrDuplicate)
	}
	return errs
}

// Validate checks every draft of a batch submitted by user against the
// field rules and against existing, the entries already stored. A single
// problem or duplicate anywhere rejects the whole batch.
func Validate(user *models.User, drafts []Draft, existing []models.AttendanceEntry) *Result {
	res := &Result{}

	taken := make(map[string]bool)
	for i := range existing {
		if existing[i].BelongsTo(user) {
			taken[existing[i].Date] = true
		}
	}

	accepted := make([]models.AttendanceEntry, 0, len(drafts))
	for _, d := range drafts {
		entry, problems := check(user, d)
		date := strings.TrimSpace(d.Date)
		if taken[date] {
			res.Duplicates = append(res.Duplicates, date)
		}
		if len(problems) > 0 {
			res.Problems = append(res.Problems, problems...)
			continue
		}
		if taken[date] {
			continue
		}
		taken[entry.Date] = true
		accepted = append(accepted, entry)
	}

	if res.OK() {
		res.Accepted = accepted
	}
	return res
}

func check(user *models.User, d Draft) (models.AttendanceEntry, []Problem) {
	var problems []Problem
	date := strings.TrimSpace(d.Date)
	fail := func(field, msg string) {
		problems = append(problems, Problem{Date: date, Field: field, Message: msg})
	}

	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		fail("Date", "is not a YYYY-MM-DD date")
	}

	hours, hoursOK := parseHours(d.Hours, "Hours", fail)
	overtime, overtimeOK := parseHours(d.Overtime, "Overtime", fail)
	if hoursOK && overtimeOK && hours+overtime > MaxDailyHours+Tolerance {
		fail("", fmt.Sprintf("hours plus overtime exceed %g", MaxDailyHours))
	}

	var areas [common.MaxAreaSlots]string
	for i, a := range d.Areas {
		a = strings.TrimSpace(a)
		areas[i] = a
		if a != "" && !common.IsAreaCode(a) {
			fail(fmt.Sprintf("Area %d", i+1), fmt.Sprintf("%q is not a known area", a))
		}
	}
	if areas[0] == "" {
		fail("Area 1", "is required")
	}

	shift := strings.TrimSpace(d.Shift)
	if !common.IsShift(shift) {
		fail("Shift", fmt.Sprintf("%q is not a known shift", shift))
	}

	if len(problems) > 0 {
		return models.AttendanceEntry{}, problems
	}

	return models.AttendanceEntry{
		UserID:   user.ID,
		Username: user.Username,
		Date:     date,
		Day:      DayName(day),
		Hours:    hours,
		Overtime: overtime,
		Areas:    areas,
		Shift:    shift,
		Remark:   strings.TrimSpace(d.Remark),
	}, nil
}

// parseHours reads a non-negative number of hours. Blank input is zero.
func parseHours(s, field string, fail func(field, msg string)) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	switch {
	case err != nil || math.IsNaN(v) || math.IsInf(v, 0):
		fail(field, fmt.Sprintf("%q is not a number", s))
		return 0, false
	case v < 0:
		fail(field, "cannot be negative")
		return 0, false
	case v > MaxDailyHours:
		fail(field, fmt.Sprintf("cannot exceed %g", MaxDailyHours))
		return 0, false
	case math.Abs(v/HourStep-math.Round(v/HourStep)) > 1e-9:
		fail(field, fmt.Sprintf("must be a multiple of %g", HourStep))
		return v, true
	}
	return v, true
}
