package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/activity"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/leave"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/staff"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/database"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/worktime"
)

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.BalanceRepository
	staff.StaffRepository
	activity.ActivityLogRepository
	calculator *AccrualCalculator
	now        func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	balanceRepository leave.BalanceRepository,
	staffRepository staff.StaffRepository,
	activityLogRepository activity.ActivityLogRepository,
	calculator *AccrualCalculator,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                    tx,
		BalanceRepository:     balanceRepository,
		StaffRepository:       staffRepository,
		ActivityLogRepository: activityLogRepository,
		calculator:            calculator,
		now:                   time.Now,
	}
}

func (s *LeaveServiceImpl) parseAccrualRequest(req leave.AccrualRequest) (time.Time, time.Time, error) {
	if err := req.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, err := worktime.ParseDate(req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start date: %w", err)
	}

	asOf := s.now()
	if req.AsOfDate != nil {
		asOf, err = worktime.ParseDate(*req.AsOfDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse as-of date: %w", err)
		}
	}

	if start.After(asOf) {
		return time.Time{}, time.Time{}, leave.ErrStartDateInFuture
	}
	return start, asOf, nil
}

// CalculateAccruedLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) CalculateAccruedLeave(ctx context.Context, req leave.AccrualRequest) (leave.AccrualResponse, error) {
	start, asOf, err := s.parseAccrualRequest(req)
	if err != nil {
		return leave.AccrualResponse{}, err
	}

	return leave.AccrualResponse{
		StartDate:    start.Format(worktime.DateLayout),
		AsOfDate:     asOf.Format(worktime.DateLayout),
		HoursAccrued: s.calculator.AccruedHours(start, asOf),
	}, nil
}

// GetAccrualBreakdown implements leave.LeaveService.
func (s *LeaveServiceImpl) GetAccrualBreakdown(ctx context.Context, req leave.AccrualRequest) (leave.AccrualBreakdown, error) {
	start, asOf, err := s.parseAccrualRequest(req)
	if err != nil {
		return leave.AccrualBreakdown{}, err
	}
	return s.calculator.Breakdown(start, asOf), nil
}

// GetBalance implements leave.LeaveService.
func (s *LeaveServiceImpl) GetBalance(ctx context.Context, req leave.BalanceRequest) (leave.BalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.BalanceResponse{}, err
	}

	member, err := s.StaffRepository.GetByID(ctx, req.StaffID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	balance, err := s.BalanceRepository.GetByStaffYear(ctx, req.StaffID, req.Year)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	resp := toBalanceResponse(balance)
	if member.StartDate != nil {
		breakdown := s.calculator.Breakdown(*member.StartDate, s.now())
		resp.Accrual = &breakdown
	}
	return resp, nil
}

// RecordUsage implements leave.LeaveService.
func (s *LeaveServiceImpl) RecordUsage(ctx context.Context, req leave.RecordUsageRequest) (leave.BalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.BalanceResponse{}, err
	}

	var updated leave.Balance
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		balance, err := s.BalanceRepository.GetByStaffYearForUpdate(ctx, req.StaffID, req.Year)
		if err != nil {
			return err
		}

		if req.Hours > balance.HoursRemaining {
			return fmt.Errorf("%w: requested %dh, remaining %dh", leave.ErrInsufficientBalance, req.Hours, balance.HoursRemaining)
		}

		balance.HoursUsed += req.Hours
		balance.Recompute()

		if err := s.BalanceRepository.Update(ctx, balance); err != nil {
			return fmt.Errorf("failed to update leave balance: %w", err)
		}
		updated = balance
		return nil
	})
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	slog.Info("Leave usage recorded", "staff_id", req.StaffID, "year", req.Year, "hours", req.Hours, "remaining", updated.HoursRemaining)
	return toBalanceResponse(updated), nil
}

// RefreshBalances implements leave.LeaveService.
// It recomputes accrued hours for every active staff member with a start
// date and creates the balances that do not exist yet.
func (s *LeaveServiceImpl) RefreshBalances(ctx context.Context, year int) (leave.BatchResult, error) {
	policy := s.calculator.Policy()
	result := leave.BatchResult{Year: year, Policy: policy.Version, Ceiling: policy.TotalEntitlement}

	members, err := s.StaffRepository.ListActive(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list staff: %w", err)
	}

	asOf := s.now()
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, member := range members {
			result.Total++
			if member.StartDate == nil {
				result.Skipped = append(result.Skipped, member.Name)
				continue
			}
			accrued := s.calculator.AccruedHours(*member.StartDate, asOf)

			balance, err := s.BalanceRepository.GetByStaffYearForUpdate(ctx, member.ID, year)
			if errors.Is(err, leave.ErrBalanceNotFound) {
				balance = leave.Balance{
					StaffID:          member.ID,
					StaffName:        member.Name,
					Year:             year,
					TotalEntitlement: policy.TotalEntitlement,
					HoursAccrued:     accrued,
					PolicyVersion:    policy.Version,
				}
				balance.Recompute()
				if _, err := s.BalanceRepository.Create(ctx, balance); err != nil {
					return fmt.Errorf("failed to create balance for %s: %w", member.ID, err)
				}
				result.Created++
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to get balance for %s: %w", member.ID, err)
			}

			// A balance not yet migrated keeps accruing under its own policy.
			if balance.PolicyVersion != policy.Version {
				accrued = s.accruedUnder(balance, *member.StartDate, asOf)
			}
			if balance.HoursAccrued == accrued {
				continue
			}
			balance.HoursAccrued = accrued
			if err := s.BalanceRepository.Update(ctx, balance); err != nil {
				return fmt.Errorf("failed to update balance for %s: %w", member.ID, err)
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	slog.Info("Leave balances refreshed", "year", year, "created", result.Created, "updated", result.Updated, "skipped", len(result.Skipped))
	return result, nil
}

// MigrateEntitlement implements leave.LeaveService.
// Balances on an older policy are moved to the current ceiling with
// HoursRemaining recomputed from HoursUsed.
func (s *LeaveServiceImpl) MigrateEntitlement(ctx context.Context, year int) (leave.BatchResult, error) {
	policy := s.calculator.Policy()
	result := leave.BatchResult{Year: year, Policy: policy.Version, Ceiling: policy.TotalEntitlement}

	members, err := s.StaffRepository.List(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list staff: %w", err)
	}
	startDates := make(map[string]*time.Time, len(members))
	for _, m := range members {
		startDates[m.ID] = m.StartDate
	}

	asOf := s.now()
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		balances, err := s.BalanceRepository.ListByYearForUpdate(ctx, year)
		if err != nil {
			return fmt.Errorf("failed to list balances: %w", err)
		}

		for _, balance := range balances {
			result.Total++
			if balance.PolicyVersion == policy.Version && balance.TotalEntitlement == policy.TotalEntitlement {
				continue
			}
			migrated := MigrateBalance(balance, policy, startDates[balance.StaffID], asOf)
			if err := s.BalanceRepository.Update(ctx, migrated); err != nil {
				return fmt.Errorf("failed to migrate balance %s: %w", balance.ID, err)
			}
			result.Updated++
			slog.Debug("Leave balance migrated",
				"staff_id", balance.StaffID,
				"from_entitlement", balance.TotalEntitlement,
				"to_entitlement", migrated.TotalEntitlement,
				"hours_remaining", migrated.HoursRemaining,
			)
		}
		return nil
	})

	status := activity.StatusSuccess
	details := fmt.Sprintf("Migrated %d of %d balances for %d to %dh entitlement", result.Updated, result.Total, year, policy.TotalEntitlement)
	if err != nil {
		status = activity.StatusFailure
		details = err.Error()
	}
	if logErr := s.ActivityLogRepository.Log(ctx, activity.Log{
		Action:  activity.ActionLeaveMigration,
		Status:  status,
		Details: details,
		Metadata: map[string]interface{}{
			"year":           year,
			"policy_version": policy.Version,
			"updated":        result.Updated,
		},
	}); logErr != nil {
		slog.Warn("Failed to write activity log", "action", activity.ActionLeaveMigration, "error", logErr)
	}

	if err != nil {
		return result, err
	}
	return result, nil
}

func toBalanceResponse(b leave.Balance) leave.BalanceResponse {
	return leave.BalanceResponse{
		ID:               b.ID,
		StaffID:          b.StaffID,
		StaffName:        b.StaffName,
		Year:             b.Year,
		TotalEntitlement: b.TotalEntitlement,
		HoursAccrued:     b.HoursAccrued,
		HoursUsed:        b.HoursUsed,
		HoursRemaining:   b.HoursRemaining,
		PolicyVersion:    b.PolicyVersion,
		UpdatedAt:        b.UpdatedAt,
	}
}

// accruedUnder computes accrual with the policy balance was created under.
// An unknown version is capped at the balance's own ceiling.
func (s *LeaveServiceImpl) accruedUnder(balance leave.Balance, startDate, asOf time.Time) int {
	policy, err := leave.PolicyByVersion(balance.PolicyVersion)
	if err != nil {
		return min(s.calculator.AccruedHours(startDate, asOf), balance.TotalEntitlement)
	}
	return NewAccrualCalculator(policy).AccruedHours(startDate, asOf)
}
