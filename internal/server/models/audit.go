package models

import (
	"time"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/tabular"
)

// TimestampLayout is the format of the audit Timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

// AuditStatus is the outcome recorded with an audit event.
type AuditStatus string

const (
	StatusSuccess AuditStatus = "Success"
	StatusFailed  AuditStatus = "Failed"
	StatusInfo    AuditStatus = "Info"
)

// Audit actions.
const (
	ActionLogin           = "Login"
	ActionLogout          = "Logout"
	ActionChangePassword  = "Change Password"
	ActionChangeUsername  = "Change Username"
	ActionPreferredAreas  = "Update Preferred Areas"
	ActionPreferredShift  = "Update Preferred Shift"
	ActionAreaColumnCount = "Update Number of Areas"
	ActionSubmitTimesheet = "Submit Timesheet"
)

// AuditEvent is one row of the audit table.
type AuditEvent struct {
	Timestamp   time.Time
	UserID      string
	Username    string
	Action      string
	Description string
	Status      AuditStatus
}

// Record maps audit column names to the event's values.
func (e *AuditEvent) Record() map[string]string {
	return map[string]string{
		common.ColTimestamp:   e.Timestamp.Format(TimestampLayout),
		common.ColAuditUserID: e.UserID,
		common.ColUsername:    e.Username,
		common.ColAction:      e.Action,
		common.ColDescription: e.Description,
		common.ColStatus:      string(e.Status),
	}
}

// Values returns the event as a tuple in common.AuditHeader order.
func (e *AuditEvent) Values() []string {
	return tabular.Tuple(common.AuditHeader, e.Record())
}

var auditRequired = []string{common.ColTimestamp, common.ColAction, common.ColStatus}

// AuditFromTable maps the rows of the audit table. Rows with an unparsable
// timestamp keep the zero time.
func AuditFromTable(t *tabular.Table) ([]AuditEvent, error) {
	if err := t.Require(auditRequired...); err != nil {
		return nil, err
	}

	events := make([]AuditEvent, 0, len(t.Rows))
	for _, r := range t.Rows {
		ts, _ := time.ParseInLocation(TimestampLayout, r.Get(common.ColTimestamp), time.Local)
		events = append(events, AuditEvent{
			Timestamp:   ts,
			UserID:      r.Get(common.ColAuditUserID),
			Username:    r.Get(common.ColUsername),
			Action:      r.Get(common.ColAction),
			Description: r.Get(common.ColDescription),
			Status:      AuditStatus(r.Get(common.ColStatus)),
		})
	}
	return events, nil
}
