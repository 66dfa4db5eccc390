package shift

import (
	"time"

	"github.com/socialcare-homes/rota-backend-go/internal/pkg/validator"
)

type WeekDeadlineRequest struct {
	Date string `json:"date"`
}

func (r *WeekDeadlineRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "is required"})
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WeekDeadlineResponse struct {
	Date      string    `json:"date"`
	WeekStart string    `json:"week_start"`
	WeekEnd   string    `json:"week_end"`
	Deadline  time.Time `json:"deadline"`
}

// JobResult summarises one maintenance run over the shifts table.
type JobResult struct {
	Affected int      `json:"affected"`
	ShiftIDs []string `json:"shift_ids,omitempty"`
}

type OperationalAuditRequest struct {
	Date string `json:"date"`
}

func (r *OperationalAuditRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AttendanceCheck compares one shift's scheduled hours with its clocked hours.
type AttendanceCheck struct {
	ShiftID        string   `json:"shift_id"`
	StaffID        string   `json:"staff_id"`
	StaffName      string   `json:"staff_name"`
	SiteName       string   `json:"site_name"`
	ShiftType      string   `json:"shift_type"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	ScheduledHours float64  `json:"scheduled_hours"`
	ActualHours    *float64 `json:"actual_hours,omitempty"`
	VarianceHours  *float64 `json:"variance_hours,omitempty"`
	Status         string   `json:"status"`
	Note           string   `json:"note,omitempty"`
}

const (
	AttendanceOK          = "ok"
	AttendanceNoClockIn   = "no_clock_in"
	AttendanceNoClockOut  = "no_clock_out"
	AttendanceOverrun     = "overrun"
	AttendanceShort       = "short"
	AttendanceUnparseable = "unparseable"
)

type OperationalAuditResponse struct {
	Date   string            `json:"date"`
	Checks []AttendanceCheck `json:"checks"`
	Issues int               `json:"issues"`
}
