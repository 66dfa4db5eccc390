package activity

import "time"

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
	StatusWarning Status = "WARNING"
)

// Common actions
const (
	ActionShiftAudit     = "SHIFT_AUDIT"
	ActionAutoAccept     = "AUTO_ACCEPT"
	ActionAutoClockOut   = "AUTO_CLOCK_OUT"
	ActionLeaveMigration = "LEAVE_MIGRATION"
	ActionDuplicateSweep = "DUPLICATE_SWEEP"
	ActionPayrollReport  = "PAYROLL_REPORT_SENT"
)

// Log is a row of the activity_logs table.
type Log struct {
	ID        string
	Timestamp time.Time
	Action    string
	Status    Status
	StaffID   *string
	StaffName *string
	SiteName  *string
	Details   string
	Metadata  map[string]interface{}
}
