package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/shift"
)

// ShiftJobs keeps shift responses and attendance records consistent.
type ShiftJobs struct {
	shiftService shift.ShiftService
	now          func() time.Time
}

func NewShiftJobs(shiftService shift.ShiftService) *ShiftJobs {
	return &ShiftJobs{
		shiftService: shiftService,
		now:          time.Now,
	}
}

// RegisterJobs registers all shift-related cron jobs
func (j *ShiftJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("set_week_deadlines", 1*time.Hour, j.SetWeekDeadlines)

	// Deadlines fall on Sunday 00:00, so a short interval keeps the lag small.
	scheduler.AddJob("enforce_response_deadlines", 15*time.Minute, j.EnforceResponseDeadlines)

	scheduler.AddJob("auto_clock_out_past_shifts", 1*time.Hour, j.AutoClockOutPastShifts)
	scheduler.AddJob("remove_duplicate_shifts", 6*time.Hour, j.RemoveDuplicates)
}

func (j *ShiftJobs) SetWeekDeadlines(ctx context.Context) error {
	result, err := j.shiftService.SetWeekDeadlines(ctx)
	if err != nil {
		return fmt.Errorf("failed to set week deadlines: %w", err)
	}
	if result.Affected > 0 {
		slog.Info("Cron: Week deadlines set", "count", result.Affected)
	}
	return nil
}

// EnforceResponseDeadlines accepts pending shifts whose week has started and
// locks every response past its deadline.
func (j *ShiftJobs) EnforceResponseDeadlines(ctx context.Context) error {
	now := j.now()

	accepted, err := j.shiftService.AutoAcceptPending(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to auto-accept pending shifts: %w", err)
	}

	locked, err := j.shiftService.LockExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to lock expired responses: %w", err)
	}

	if accepted.Affected > 0 || locked.Affected > 0 {
		slog.Info("Cron: Response deadlines enforced", "auto_accepted", accepted.Affected, "locked", locked.Affected)
	}
	return nil
}

func (j *ShiftJobs) AutoClockOutPastShifts(ctx context.Context) error {
	result, err := j.shiftService.AutoClockOutPastShifts(ctx, j.now())
	if err != nil {
		return fmt.Errorf("failed to auto clock-out past shifts: %w", err)
	}
	if result.Affected > 0 {
		slog.Info("Cron: Auto clocked-out past shifts", "count", result.Affected)
	}
	return nil
}

func (j *ShiftJobs) RemoveDuplicates(ctx context.Context) error {
	result, err := j.shiftService.RemoveDuplicates(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove duplicate shifts: %w", err)
	}
	if result.Affected > 0 {
		slog.Info("Cron: Duplicate shifts removed", "count", result.Affected)
	}
	return nil
}
