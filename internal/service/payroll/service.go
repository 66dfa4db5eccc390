package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/activity"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/payroll"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/shift"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/staff"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/lock"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/worktime"
	"golang.org/x/sync/errgroup"
)

type PayrollServiceImpl struct {
	staffRepo    staff.StaffRepository
	shiftRepo    shift.ShiftRepository
	activityRepo activity.ActivityLogRepository
	locker       lock.Locker
	settings     payroll.Settings
	calculator   WeekCalculator
	now          func() time.Time
}

func NewPayrollService(
	staffRepo staff.StaffRepository,
	shiftRepo shift.ShiftRepository,
	activityRepo activity.ActivityLogRepository,
	locker lock.Locker,
	settings payroll.Settings,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		staffRepo:    staffRepo,
		shiftRepo:    shiftRepo,
		activityRepo: activityRepo,
		locker:       locker,
		settings:     settings,
		calculator:   NewWeekCalculator(),
		now:          time.Now,
	}
}

// runKey identifies a period run for serialization.
func runKey(req payroll.PeriodRequest) string {
	scope := req.StaffID
	if scope == "" {
		scope = "all"
	}
	return fmt.Sprintf("payroll:period:%s:%s:%s", scope, req.StartDate, req.EndDate)
}

func (s *PayrollServiceImpl) isPlaceholder(name string) bool {
	for _, excluded := range s.settings.ExcludedStaff {
		if strings.EqualFold(strings.TrimSpace(name), excluded) {
			return true
		}
	}
	return false
}

// CalculatePayForPeriod implements payroll.PayrollService.
func (s *PayrollServiceImpl) CalculatePayForPeriod(ctx context.Context, req payroll.PeriodRequest) (payroll.PeriodReport, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodReport{}, err
	}

	unlock, err := s.locker.Lock(ctx, runKey(req))
	if err != nil {
		return payroll.PeriodReport{}, fmt.Errorf("failed to acquire payroll run lock: %w", err)
	}
	defer unlock()

	var (
		members []staff.Staff
		shifts  []shift.Shift
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if req.StaffID != "" {
			member, err := s.staffRepo.GetByID(gctx, req.StaffID)
			if err != nil {
				return err
			}
			members = []staff.Staff{member}
			return nil
		}
		list, err := s.staffRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to load staff: %w", err)
		}
		members = list
		return nil
	})
	g.Go(func() error {
		list, err := s.shiftRepo.GetInRange(gctx, req.StartDate, req.EndDate)
		if err != nil {
			return fmt.Errorf("failed to load shifts: %w", err)
		}
		shifts = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return payroll.PeriodReport{}, err
	}

	report := s.aggregate(req, members, shifts)

	slog.Info("Payroll period calculated",
		"run_id", report.RunID,
		"start", req.StartDate,
		"end", req.EndDate,
		"staff", len(report.StaffSummary),
		"total_pay", report.TotalPay.StringFixed(2),
		"unattributed_shifts", report.Unattributed.ShiftCount,
	)
	return report, nil
}

// aggregate builds the period report from loaded staff and shifts.
func (s *PayrollServiceImpl) aggregate(req payroll.PeriodRequest, members []staff.Staff, shifts []shift.Shift) payroll.PeriodReport {
	report := payroll.PeriodReport{
		RunID:        uuid.NewString(),
		Period:       payroll.Period{Start: req.StartDate, End: req.EndDate},
		StaffID:      req.StaffID,
		StaffSummary: make([]payroll.StaffPeriodSummary, 0),
		TotalPay:     decimal.Zero,
		GeneratedAt:  s.now(),
	}

	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m.ID] = true
	}

	byStaff := make(map[string][]shift.Shift)
	for _, sh := range shifts {
		if req.StaffID != "" && sh.StaffID != req.StaffID {
			continue
		}
		if sh.StaffID == "" || !known[sh.StaffID] {
			hours := resolveTimes(sh).hours
			report.Unattributed.ShiftCount++
			report.Unattributed.Hours += hours
			report.Unattributed.ShiftIDs = append(report.Unattributed.ShiftIDs, sh.ID)
			slog.Warn("Shift excluded from payroll: staff not found",
				"shift_id", sh.ID,
				"staff_id", sh.StaffID,
				"date", sh.Date,
				"error", staff.ErrStaffNotFound,
			)
			continue
		}
		byStaff[sh.StaffID] = append(byStaff[sh.StaffID], sh)
	}
	if report.Unattributed.ShiftCount > 0 {
		report.DataQuality = append(report.DataQuality, fmt.Sprintf("%d shift(s) totalling %.2fh have no matching staff record and are not paid",
			report.Unattributed.ShiftCount, report.Unattributed.Hours))
	}

	for _, member := range members {
		mine := byStaff[member.ID]
		if len(mine) == 0 {
			continue
		}
		if s.isPlaceholder(member.Name) {
			report.DataQuality = append(report.DataQuality, fmt.Sprintf("Skipped placeholder staff %q (%d shifts)", member.Name, len(mine)))
			continue
		}

		summary := s.summarizeStaff(member, mine)
		for _, w := range summary.Weeks {
			for _, n := range w.Notes {
				report.DataQuality = append(report.DataQuality, member.Name+": "+n)
			}
		}

		report.StaffSummary = append(report.StaffSummary, summary)
		report.TotalPay = report.TotalPay.Add(summary.TotalPay)
		report.TotalHours += summary.TotalHours
	}

	report.FormattedReport = renderReport(report)
	return report
}

func (s *PayrollServiceImpl) summarizeStaff(member staff.Staff, shifts []shift.Shift) payroll.StaffPeriodSummary {
	rates, rateNotes := s.settings.RatePolicy.Resolve(member)

	summary := payroll.StaffPeriodSummary{
		StaffID:   member.ID,
		StaffName: member.Name,
		Role:      member.Role,
		RawRates:  payroll.SnapshotRates(member, rates, s.settings.RatePolicy),
		TotalPay:  decimal.Zero,
		Weeks:     make([]payroll.WeekSummary, 0),
		Notes:     collectNotes(shifts),
	}

	weeks, keys, bad := bucketByWeek(shifts)
	for _, key := range keys {
		weekStart, _ := worktime.ParseDate(key)
		week := s.calculator.Calculate(weekStart, weeks[key], rates)
		week.Notes = append(append([]string{}, rateNotes...), week.Notes...)

		summary.Weeks = append(summary.Weeks, week)
		summary.TotalPay = summary.TotalPay.Add(week.TotalPay)
		summary.TotalHours += week.TotalHours()
	}
	for _, sh := range bad {
		summary.Notes = append(summary.Notes, fmt.Sprintf("Data quality: shift %s has unreadable date %q and was not paid", sh.ID, sh.Date))
	}

	return summary
}

// collectNotes returns the distinct shift notes and decline reasons in order of appearance.
func collectNotes(shifts []shift.Shift) []string {
	seen := make(map[string]bool)
	notes := make([]string, 0)
	add := func(n string) {
		if n == "" || seen[n] {
			return
		}
		seen[n] = true
		notes = append(notes, n)
	}

	for _, sh := range shifts {
		if sh.Notes != nil {
			add(strings.TrimSpace(*sh.Notes))
		}
		if sh.DeclineReason != nil && strings.TrimSpace(*sh.DeclineReason) != "" {
			add("Declined: " + strings.TrimSpace(*sh.DeclineReason))
		}
	}
	return notes
}

// AuditSingleShift implements payroll.PayrollService.
func (s *PayrollServiceImpl) AuditSingleShift(ctx context.Context, shiftID string) (payroll.ShiftAudit, error) {
	if strings.TrimSpace(shiftID) == "" {
		return payroll.ShiftAudit{}, payroll.ErrShiftIDRequired
	}

	target, err := s.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return payroll.ShiftAudit{}, err
	}
	if target.StaffID == "" {
		return payroll.ShiftAudit{}, fmt.Errorf("shift %s is unassigned: %w", shiftID, staff.ErrStaffNotFound)
	}

	member, err := s.staffRepo.GetByID(ctx, target.StaffID)
	if err != nil {
		return payroll.ShiftAudit{}, err
	}

	date, err := worktime.ParseDate(target.Date)
	if err != nil {
		return payroll.ShiftAudit{}, fmt.Errorf("%w: %q", shift.ErrInvalidDateFormat, target.Date)
	}
	weekStart := worktime.WeekStart(date)

	weekShifts, err := s.shiftRepo.GetForStaffInWeek(ctx, member.ID,
		weekStart.Format(worktime.DateLayout), worktime.WeekEnd(date).Format(worktime.DateLayout))
	if err != nil {
		return payroll.ShiftAudit{}, fmt.Errorf("failed to load week shifts: %w", err)
	}
	if !containsShift(weekShifts, target.ID) {
		weekShifts = append(weekShifts, target)
	}

	rates, rateNotes := s.settings.RatePolicy.Resolve(member)
	week := s.calculator.Calculate(weekStart, weekShifts, rates)
	line, _ := week.Line(target.ID)

	audit := payroll.ShiftAudit{
		ShiftID:       target.ID,
		StaffID:       member.ID,
		StaffName:     member.Name,
		Site:          target.SiteName,
		ShiftType:     target.Type,
		Date:          target.Date,
		StartTime:     target.StartTime,
		EndTime:       target.EndTime,
		Duration:      target.Duration,
		Hours:         line.Hours,
		StandardHours: line.StandardHours,
		EnhancedHours: line.EnhancedHours,
		WeekStart:     week.WeekStart,
		Cost:          line.Cost.Round(2),
		Breakdown:     describeLine(line, rates, s.calculator.Threshold),
		RawRates:      payroll.SnapshotRates(member, rates, s.settings.RatePolicy),
		Notes:         append(rateNotes, week.Notes...),
		CalculatedAt:  s.now(),
	}

	s.logAudit(ctx, member, audit)
	return audit, nil
}

func (s *PayrollServiceImpl) logAudit(ctx context.Context, member staff.Staff, audit payroll.ShiftAudit) {
	status := activity.StatusSuccess
	if len(audit.Notes) > 0 {
		status = activity.StatusWarning
	}
	site := audit.Site

	err := s.activityRepo.Log(ctx, activity.Log{
		Action:    activity.ActionShiftAudit,
		Status:    status,
		StaffID:   &member.ID,
		StaffName: &member.Name,
		SiteName:  &site,
		Details:   fmt.Sprintf("Shift %s on %s cost £%s", audit.ShiftID, audit.Date, audit.Cost.StringFixed(2)),
		Metadata: map[string]interface{}{
			"shift_id":  audit.ShiftID,
			"cost":      audit.Cost.StringFixed(2),
			"breakdown": audit.Breakdown,
			"raw_rates": audit.RawRates,
		},
	})
	if err != nil {
		slog.Warn("Failed to write activity log", "action", activity.ActionShiftAudit, "shift_id", audit.ShiftID, "error", err)
	}
}

func containsShift(shifts []shift.Shift, id string) bool {
	for _, sh := range shifts {
		if sh.ID == id {
			return true
		}
	}
	return false
}

// ExportPeriodXLSX implements payroll.PayrollService.
func (s *PayrollServiceImpl) ExportPeriodXLSX(ctx context.Context, req payroll.PeriodRequest) (payroll.ExportFile, error) {
	report, err := s.CalculatePayForPeriod(ctx, req)
	if err != nil {
		return payroll.ExportFile{}, err
	}
	if len(report.StaffSummary) == 0 && report.Unattributed.ShiftCount == 0 {
		return payroll.ExportFile{}, payroll.ErrNoPayrollData
	}

	content, err := renderWorkbook(report)
	if err != nil {
		return payroll.ExportFile{}, fmt.Errorf("failed to render payroll workbook: %w", err)
	}

	return payroll.ExportFile{
		FileName:    fmt.Sprintf("payroll_%s_%s.xlsx", req.StartDate, req.EndDate),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}
