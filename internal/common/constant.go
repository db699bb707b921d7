// Package common contains the enumerations, store schema names and sentinel
// errors shared by the timesheet server and its terminal client.
package common

import "strings"

// AccessTokenHeaderName is the gRPC metadata key used to carry the session
// token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Table names inside the backing store.
const (
	TableUsers      = "user"
	TableAttendance = "presensi"
	TableAudit      = "audit_log"
)

// Columns of the "user" table.
const (
	ColUserID          = "Id"
	ColUsername        = "Username"
	ColPassword        = "Password"
	ColRole            = "Role"
	ColGrade           = "Grade"
	ColPreferredAreas  = "Preferred Areas"
	ColPreferredShift  = "Preferred Shift"
	ColAreaColumnCount = "Number of Areas"
)

// Columns of the attendance table, in append order.
const (
	ColDate     = "Date"
	ColDay      = "Day"
	ColHours    = "Hours"
	ColOvertime = "Overtime"
	ColArea1    = "Area 1"
	ColArea2    = "Area 2"
	ColArea3    = "Area 3"
	ColArea4    = "Area 4"
	ColShift    = "Shift"
	ColRemark   = "Remark"
)

// Columns of the audit table, in append order.
const (
	ColTimestamp   = "Timestamp"
	ColAuditUserID = "User ID"
	ColAction      = "Action"
	ColDescription = "Description"
	ColStatus      = "Status"
)

// AttendanceHeader is the column order used when appending attendance rows.
var AttendanceHeader = []string{
	ColUserID, ColUsername, ColDate, ColDay, ColHours, ColOvertime,
	ColArea1, ColArea2, ColArea3, ColArea4, ColShift, ColRemark,
}

// AuditHeader is the column order used when appending audit rows.
var AuditHeader = []string{
	ColTimestamp, ColAuditUserID, ColUsername, ColAction, ColDescription, ColStatus,
}

// UserHeader lists the columns the "user" table must carry.
var UserHeader = []string{
	ColUserID, ColUsername, ColPassword, ColRole, ColGrade,
	ColPreferredAreas, ColPreferredShift, ColAreaColumnCount,
}

// AreaCodes is the fixed set of plant areas, in display order.
var AreaCodes = []string{"GCP", "ER", "ET", "SC", "SM", "SAP"}

// Shift names.
const (
	ShiftDay   = "Day Shift"
	ShiftNight = "Night Shift"
	ShiftNoon  = "Noon Shift"
)

// Shifts lists the valid shift names, in display order.
var Shifts = []string{ShiftDay, ShiftNight, ShiftNoon}

// DefaultShift is used when a user has no preferred shift.
const DefaultShift = ShiftDay

// Bounds for the preferred number of area columns.
const (
	MinAreaColumns     = 1
	MaxAreaColumns     = 4
	DefaultAreaColumns = 1
)

// MaxAreaSlots is the number of area columns an attendance entry carries.
const MaxAreaSlots = 4

// IsAreaCode reports whether code is one of AreaCodes.
func IsAreaCode(code string) bool {
	for _, a := range AreaCodes {
		if a == code {
			return true
		}
	}
	return false
}

// IsShift reports whether name is one of Shifts.
func IsShift(name string) bool {
	for _, s := range Shifts {
		if s == name {
			return true
		}
	}
	return false
}

// SameUsername compares two usernames case-insensitively, ignoring
// surrounding whitespace.
func SameUsername(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// WipeByteArray overwrites b with zeros. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
