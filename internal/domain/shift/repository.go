package shift

import (
	"context"
	"time"
)

// ShiftRepository - interface for the shifts table
type ShiftRepository interface {
	GetByID(ctx context.Context, id string) (Shift, error)
	// GetInRange returns shifts whose date lies in [startDate, endDate], both YYYY-MM-DD.
	GetInRange(ctx context.Context, startDate, endDate string) ([]Shift, error)
	GetForStaffInWeek(ctx context.Context, staffID, weekStart, weekEnd string) ([]Shift, error)
	GetByDate(ctx context.Context, date string) ([]Shift, error)

	// Response deadline maintenance
	GetWithoutDeadline(ctx context.Context) ([]Shift, error)
	SetWeekDeadline(ctx context.Context, id string, deadline time.Time) error
	AutoAcceptPastDeadline(ctx context.Context, now time.Time) ([]Shift, error)
	LockPastDeadline(ctx context.Context, now time.Time) (int64, error)

	// Attendance maintenance
	GetOpenBefore(ctx context.Context, date string) ([]Shift, error)
	ClockOut(ctx context.Context, id string, at time.Time) error

	GetAll(ctx context.Context) ([]Shift, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}
