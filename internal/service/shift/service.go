package shift

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/activity"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/shift"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/database"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/worktime"
)

// attendanceTolerance is how far clocked hours may drift from the rota before a shift is flagged.
const attendanceTolerance = 0.25

type ShiftServiceImpl struct {
	tx           database.Transactor
	shiftRepo    shift.ShiftRepository
	activityRepo activity.ActivityLogRepository
}

func NewShiftService(tx database.Transactor, shiftRepo shift.ShiftRepository, activityRepo activity.ActivityLogRepository) shift.ShiftService {
	return &ShiftServiceImpl{
		tx:           tx,
		shiftRepo:    shiftRepo,
		activityRepo: activityRepo,
	}
}

// GetWeekDeadline implements shift.ShiftService.
func (s *ShiftServiceImpl) GetWeekDeadline(ctx context.Context, req shift.WeekDeadlineRequest) (shift.WeekDeadlineResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.WeekDeadlineResponse{}, err
	}

	date, err := worktime.ParseDate(req.Date)
	if err != nil {
		return shift.WeekDeadlineResponse{}, shift.ErrInvalidDateFormat
	}

	return shift.WeekDeadlineResponse{
		Date:      req.Date,
		WeekStart: worktime.WeekKey(date),
		WeekEnd:   worktime.WeekEnd(date).Format(worktime.DateLayout),
		Deadline:  worktime.WeekDeadline(date),
	}, nil
}

// SetWeekDeadlines implements shift.ShiftService.
func (s *ShiftServiceImpl) SetWeekDeadlines(ctx context.Context) (shift.JobResult, error) {
	var result shift.JobResult

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		pending, err := s.shiftRepo.GetWithoutDeadline(ctx)
		if err != nil {
			return fmt.Errorf("failed to get shifts without deadline: %w", err)
		}

		for _, sh := range pending {
			date, err := worktime.ParseDate(sh.Date)
			if err != nil {
				slog.Warn("Skipping shift with unreadable date", "shift_id", sh.ID, "date", sh.Date)
				continue
			}
			if err := s.shiftRepo.SetWeekDeadline(ctx, sh.ID, worktime.WeekDeadline(date)); err != nil {
				return fmt.Errorf("failed to set deadline for shift %s: %w", sh.ID, err)
			}
			result.Affected++
			result.ShiftIDs = append(result.ShiftIDs, sh.ID)
		}
		return nil
	})
	if err != nil {
		return shift.JobResult{}, err
	}

	if result.Affected > 0 {
		slog.Info("Week deadlines set", "count", result.Affected)
	}
	return result, nil
}

// AutoAcceptPending implements shift.ShiftService.
// Pending shifts whose week deadline has passed are accepted and locked.
func (s *ShiftServiceImpl) AutoAcceptPending(ctx context.Context, now time.Time) (shift.JobResult, error) {
	accepted, err := s.shiftRepo.AutoAcceptPastDeadline(ctx, now)
	if err != nil {
		return shift.JobResult{}, fmt.Errorf("failed to auto-accept shifts: %w", err)
	}

	result := shift.JobResult{Affected: len(accepted)}
	for _, sh := range accepted {
		result.ShiftIDs = append(result.ShiftIDs, sh.ID)
		s.log(ctx, activity.Log{
			Action:    activity.ActionAutoAccept,
			Status:    activity.StatusSuccess,
			StaffID:   optional(sh.StaffID),
			StaffName: optional(sh.StaffName),
			SiteName:  optional(sh.SiteName),
			Details:   fmt.Sprintf("Shift on %s (%s-%s) auto-accepted after the response deadline", sh.Date, sh.StartTime, sh.EndTime),
			Metadata:  map[string]interface{}{"shift_id": sh.ID},
		})
	}

	if result.Affected > 0 {
		slog.Info("Auto-accepted pending shifts", "count", result.Affected)
	}
	return result, nil
}

// LockExpired implements shift.ShiftService.
func (s *ShiftServiceImpl) LockExpired(ctx context.Context, now time.Time) (shift.JobResult, error) {
	n, err := s.shiftRepo.LockPastDeadline(ctx, now)
	if err != nil {
		return shift.JobResult{}, fmt.Errorf("failed to lock expired responses: %w", err)
	}
	if n > 0 {
		slog.Info("Locked expired shift responses", "count", n)
	}
	return shift.JobResult{Affected: int(n)}, nil
}

// AutoClockOutPastShifts implements shift.ShiftService.
// Shifts dated before today that were clocked in but never out are clocked
// out at their scheduled end; an overnight end lands on the next day.
func (s *ShiftServiceImpl) AutoClockOutPastShifts(ctx context.Context, today time.Time) (shift.JobResult, error) {
	open, err := s.shiftRepo.GetOpenBefore(ctx, today.Format(worktime.DateLayout))
	if err != nil {
		return shift.JobResult{}, fmt.Errorf("failed to get open shifts: %w", err)
	}

	var result shift.JobResult
	for _, sh := range open {
		_, end, err := worktime.Interval(sh.Date, sh.StartTime, sh.EndTime)
		if err != nil {
			slog.Warn("Cannot auto clock-out shift", "shift_id", sh.ID, "error", err)
			s.log(ctx, activity.Log{
				Action:    activity.ActionAutoClockOut,
				Status:    activity.StatusFailure,
				StaffID:   optional(sh.StaffID),
				StaffName: optional(sh.StaffName),
				SiteName:  optional(sh.SiteName),
				Details:   err.Error(),
				Metadata:  map[string]interface{}{"shift_id": sh.ID},
			})
			continue
		}

		if err := s.shiftRepo.ClockOut(ctx, sh.ID, end); err != nil {
			return result, fmt.Errorf("failed to clock out shift %s: %w", sh.ID, err)
		}
		result.Affected++
		result.ShiftIDs = append(result.ShiftIDs, sh.ID)

		s.log(ctx, activity.Log{
			Action:    activity.ActionAutoClockOut,
			Status:    activity.StatusWarning,
			StaffID:   optional(sh.StaffID),
			StaffName: optional(sh.StaffName),
			SiteName:  optional(sh.SiteName),
			Details:   fmt.Sprintf("Auto clocked out of %s shift at %s", sh.Date, end.Format(time.RFC3339)),
			Metadata:  map[string]interface{}{"shift_id": sh.ID, "clock_out_time": end},
		})
	}

	if result.Affected > 0 {
		slog.Info("Auto clocked out past shifts", "count", result.Affected)
	}
	return result, nil
}

func duplicateKey(sh shift.Shift) string {
	start := sh.StartTime
	if len(start) > 5 {
		start = start[:5]
	}
	return sh.StaffID + "|" + sh.Date + "|" + start
}

// RemoveDuplicates implements shift.ShiftService.
// Shifts sharing staff, date and start time are collapsed to the most recently created.
func (s *ShiftServiceImpl) RemoveDuplicates(ctx context.Context) (shift.JobResult, error) {
	var result shift.JobResult

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		all, err := s.shiftRepo.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to get shifts: %w", err)
		}

		groups := make(map[string][]shift.Shift)
		for _, sh := range all {
			if sh.StaffID == "" {
				continue
			}
			key := duplicateKey(sh)
			groups[key] = append(groups[key], sh)
		}

		var doomed []string
		for _, group := range groups {
			if len(group) < 2 {
				continue
			}
			sort.SliceStable(group, func(i, j int) bool {
				return group[i].CreatedAt.After(group[j].CreatedAt)
			})
			for _, dup := range group[1:] {
				doomed = append(doomed, dup.ID)
			}
		}
		if len(doomed) == 0 {
			return nil
		}
		sort.Strings(doomed)

		n, err := s.shiftRepo.DeleteByIDs(ctx, doomed)
		if err != nil {
			return fmt.Errorf("failed to delete duplicate shifts: %w", err)
		}
		result.Affected = int(n)
		result.ShiftIDs = doomed
		return nil
	})
	if err != nil {
		return shift.JobResult{}, err
	}

	if result.Affected > 0 {
		s.log(ctx, activity.Log{
			Action:   activity.ActionDuplicateSweep,
			Status:   activity.StatusWarning,
			Details:  fmt.Sprintf("Removed %d duplicate shifts", result.Affected),
			Metadata: map[string]interface{}{"shift_ids": result.ShiftIDs},
		})
	}
	return result, nil
}

// DailyOperationalAudit implements shift.ShiftService.
// It compares rota hours with clocked hours and never feeds payroll.
func (s *ShiftServiceImpl) DailyOperationalAudit(ctx context.Context, req shift.OperationalAuditRequest) (shift.OperationalAuditResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.OperationalAuditResponse{}, err
	}

	shifts, err := s.shiftRepo.GetByDate(ctx, req.Date)
	if err != nil {
		return shift.OperationalAuditResponse{}, fmt.Errorf("failed to get shifts: %w", err)
	}

	resp := shift.OperationalAuditResponse{Date: req.Date, Checks: make([]shift.AttendanceCheck, 0, len(shifts))}
	for _, sh := range shifts {
		check := checkAttendance(sh)
		if check.Status != shift.AttendanceOK {
			resp.Issues++
		}
		resp.Checks = append(resp.Checks, check)
	}
	return resp, nil
}

func checkAttendance(sh shift.Shift) shift.AttendanceCheck {
	check := shift.AttendanceCheck{
		ShiftID:   sh.ID,
		StaffID:   sh.StaffID,
		StaffName: sh.StaffName,
		SiteName:  sh.SiteName,
		ShiftType: sh.Type,
		StartTime: sh.StartTime,
		EndTime:   sh.EndTime,
	}

	scheduled, err := worktime.DurationHours(sh.Date, sh.StartTime, sh.EndTime)
	if err != nil {
		check.Status = shift.AttendanceUnparseable
		check.Note = err.Error()
		return check
	}
	check.ScheduledHours = scheduled

	switch {
	case !sh.ClockedIn || sh.ClockInTime == nil:
		check.Status = shift.AttendanceNoClockIn
		return check
	case !sh.ClockedOut || sh.ClockOutTime == nil:
		check.Status = shift.AttendanceNoClockOut
		return check
	}

	actual, err := worktime.ActualDurationHours(*sh.ClockInTime, *sh.ClockOutTime)
	if err != nil {
		check.Status = shift.AttendanceUnparseable
		check.Note = "clock-out before clock-in"
		return check
	}
	variance := actual - scheduled
	check.ActualHours = &actual
	check.VarianceHours = &variance

	switch {
	case variance > attendanceTolerance:
		check.Status = shift.AttendanceOverrun
	case variance < -attendanceTolerance:
		check.Status = shift.AttendanceShort
	default:
		check.Status = shift.AttendanceOK
	}
	check.Note = fmt.Sprintf("scheduled %s, clocked %s", worktime.FormatHours(scheduled), worktime.FormatHours(actual))
	return check
}

func (s *ShiftServiceImpl) log(ctx context.Context, entry activity.Log) {
	if err := s.activityRepo.Log(ctx, entry); err != nil {
		slog.Warn("Failed to write activity log", "action", entry.Action, "error", err)
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
