package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/activity"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/leave"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/payroll"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/email"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/lock"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/worktime"
)

const (
	// weeklyReportHour is the local hour on Sunday from which last week's
	// report is due. Later Sunday ticks retry until one send succeeds.
	weeklyReportHour = 6
	leaveRefreshHour = 1

	// recentReportWindow is how many sent-report entries are checked for a repeat.
	recentReportWindow = 20
)

type PayrollJobs struct {
	payrollService payroll.PayrollService
	leaveService   leave.LeaveService
	activityRepo   activity.ActivityLogRepository
	notifier       email.Notifier
	locker         lock.Locker
	adminEmail     string
	now            func() time.Time
}

func NewPayrollJobs(
	payrollService payroll.PayrollService,
	leaveService leave.LeaveService,
	activityRepo activity.ActivityLogRepository,
	notifier email.Notifier,
	locker lock.Locker,
	adminEmail string,
) *PayrollJobs {
	return &PayrollJobs{
		payrollService: payrollService,
		leaveService:   leaveService,
		activityRepo:   activityRepo,
		notifier:       notifier,
		locker:         locker,
		adminEmail:     adminEmail,
		now:            time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("weekly_payroll_report", 1*time.Hour, j.SendWeeklyPayrollReport)
	scheduler.AddJob("refresh_leave_balances", 1*time.Hour, j.RefreshLeaveBalances)
}

// SendWeeklyPayrollReport mails the report of the week that just closed.
// It only does work on Sunday from weeklyReportHour on, and succeeds at most
// once per week across replicas.
func (j *PayrollJobs) SendWeeklyPayrollReport(ctx context.Context) error {
	now := j.now()
	if now.Weekday() != time.Sunday || now.Hour() < weeklyReportHour {
		return nil
	}

	lastWeek := worktime.WeekStart(now).AddDate(0, 0, -7)
	weekStart := lastWeek.Format(worktime.DateLayout)
	weekEnd := worktime.WeekEnd(lastWeek).Format(worktime.DateLayout)

	unlock, err := j.locker.Lock(ctx, "cron:weekly_payroll_report:"+weekStart)
	if err != nil {
		return fmt.Errorf("failed to acquire weekly report lock: %w", err)
	}
	defer unlock()

	sent, err := j.alreadySent(ctx, weekStart)
	if err != nil {
		return err
	}
	if sent {
		slog.Debug("Cron: Weekly payroll report already sent", "week_start", weekStart)
		return nil
	}

	slog.Info("Cron: Starting weekly payroll report job", "week_start", weekStart, "week_end", weekEnd)

	report, err := j.payrollService.CalculatePayForPeriod(ctx, payroll.PeriodRequest{
		StartDate: weekStart,
		EndDate:   weekEnd,
	})
	if err != nil {
		return fmt.Errorf("failed to calculate weekly payroll: %w", err)
	}

	status := activity.StatusSuccess
	details := fmt.Sprintf("Weekly payroll %s to %s: £%s for %d staff", weekStart, weekEnd, report.TotalPay.StringFixed(2), len(report.StaffSummary))
	if err := j.notifier.SendPayrollSummary(ctx, j.adminEmail, report); err != nil {
		slog.Error("Cron: Failed to send weekly payroll report", "week_start", weekStart, "error", err)
		status = activity.StatusFailure
		details = fmt.Sprintf("%s; email failed: %v", details, err)
	}

	if err := j.activityRepo.Log(ctx, activity.Log{
		Action:  activity.ActionPayrollReport,
		Status:  status,
		Details: details,
		Metadata: map[string]interface{}{
			"run_id":     report.RunID,
			"week_start": weekStart,
			"week_end":   weekEnd,
			"total_pay":  report.TotalPay.StringFixed(2),
		},
	}); err != nil {
		return fmt.Errorf("failed to log weekly payroll report: %w", err)
	}

	slog.Info("Cron: Weekly payroll report done", "week_start", weekStart, "status", status)
	return nil
}

func (j *PayrollJobs) alreadySent(ctx context.Context, weekStart string) (bool, error) {
	recent, err := j.activityRepo.ListRecent(ctx, activity.ActionPayrollReport, recentReportWindow)
	if err != nil {
		return false, fmt.Errorf("failed to load sent reports: %w", err)
	}
	for _, entry := range recent {
		if entry.Status == activity.StatusSuccess && entry.Metadata["week_start"] == weekStart {
			return true, nil
		}
	}
	return false, nil
}

// RefreshLeaveBalances recomputes accrued leave once a night.
func (j *PayrollJobs) RefreshLeaveBalances(ctx context.Context) error {
	now := j.now()
	if now.Hour() != leaveRefreshHour {
		return nil
	}

	result, err := j.leaveService.RefreshBalances(ctx, now.Year())
	if err != nil {
		return fmt.Errorf("failed to refresh leave balances: %w", err)
	}

	slog.Info("Cron: Leave balances refreshed",
		"year", result.Year,
		"total", result.Total,
		"updated", result.Updated,
		"created", result.Created,
		"skipped", len(result.Skipped),
	)
	return nil
}
