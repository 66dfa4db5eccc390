package shift

import (
	"context"
	"time"
)

type ShiftService interface {
	GetWeekDeadline(ctx context.Context, req WeekDeadlineRequest) (WeekDeadlineResponse, error)
	SetWeekDeadlines(ctx context.Context) (JobResult, error)
	AutoAcceptPending(ctx context.Context, now time.Time) (JobResult, error)
	LockExpired(ctx context.Context, now time.Time) (JobResult, error)
	AutoClockOutPastShifts(ctx context.Context, today time.Time) (JobResult, error)
	RemoveDuplicates(ctx context.Context) (JobResult, error)
	DailyOperationalAudit(ctx context.Context, req OperationalAuditRequest) (OperationalAuditResponse, error)
}
