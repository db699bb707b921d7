package models

import (
	"strconv"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/tabular"
)

// DateLayout is the ISO calendar date used in the Date column.
const DateLayout = "2006-01-02"

// AttendanceEntry is one row of the attendance table.
type AttendanceEntry struct {
	UserID   string
	Username string
	Date     string
	Day      string
	Hours    float64
	Overtime float64
	Areas    [common.MaxAreaSlots]string
	Shift    string
	Remark   string
}

// BelongsTo reports whether e was submitted by u. Ids are compared when both
// sides carry one; otherwise usernames are compared case-insensitively.
func (e *AttendanceEntry) BelongsTo(u *User) bool {
	if e.UserID != "" && u.ID != "" {
		return e.UserID == u.ID
	}
	return common.SameUsername(e.Username, u.Username)
}

// Record maps attendance column names to the entry's values.
func (e *AttendanceEntry) Record() map[string]string {
	return map[string]string{
		common.ColUserID:   e.UserID,
		common.ColUsername: e.Username,
		common.ColDate:     e.Date,
		common.ColDay:      e.Day,
		common.ColHours:    FormatHours(e.Hours),
		common.ColOvertime: FormatHours(e.Overtime),
		common.ColArea1:    e.Areas[0],
		common.ColArea2:    e.Areas[1],
		common.ColArea3:    e.Areas[2],
		common.ColArea4:    e.Areas[3],
		common.ColShift:    e.Shift,
		common.ColRemark:   e.Remark,
	}
}

// Values returns the entry as a tuple in common.AttendanceHeader order.
func (e *AttendanceEntry) Values() []string {
	return tabular.Tuple(common.AttendanceHeader, e.Record())
}

var attendanceRequired = []string{common.ColDate, common.ColHours, common.ColOvertime, common.ColArea1}

// AttendanceFromTable maps the rows of the attendance table. Hours that do
// not parse are read as zero; existing rows are history, not input.
func AttendanceFromTable(t *tabular.Table) ([]AttendanceEntry, error) {
	if err := t.Require(attendanceRequired...); err != nil {
		return nil, err
	}
	if t.ColumnIndex(common.ColUserID) < 0 && t.ColumnIndex(common.ColUsername) < 0 {
		return nil, t.Require(common.ColUserID)
	}

	areaCols := [common.MaxAreaSlots]string{common.ColArea1, common.ColArea2, common.ColArea3, common.ColArea4}

	entries := make([]AttendanceEntry, 0, len(t.Rows))
	for _, r := range t.Rows {
		e := AttendanceEntry{
			UserID:   r.Get(common.ColUserID),
			Username: r.Get(common.ColUsername),
			Date:     r.Get(common.ColDate),
			Day:      r.Get(common.ColDay),
			Shift:    r.Get(common.ColShift),
			Remark:   r.Get(common.ColRemark),
		}
		e.Hours, _ = strconv.ParseFloat(r.Get(common.ColHours), 64)
		e.Overtime, _ = strconv.ParseFloat(r.Get(common.ColOvertime), 64)
		for i, c := range areaCols {
			e.Areas[i] = r.Get(c)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// FormatHours renders an hour value without trailing zeros: 8 -> "8",
// 7.5 -> "7.5".
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
