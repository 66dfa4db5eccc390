package payroll

import "errors"

var (
	ErrUnknownRatePolicy = errors.New("unknown rate policy")
	ErrShiftIDRequired   = errors.New("shift ID is required")
	ErrNoPayrollData     = errors.New("no shifts found for this period")
)
