package leave

import (
	"math"
	"time"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/leave"
)

type AccrualCalculator struct {
	policy leave.Policy
}

func NewAccrualCalculator(policy leave.Policy) *AccrualCalculator {
	return &AccrualCalculator{policy: policy}
}

func (c *AccrualCalculator) Policy() leave.Policy {
	return c.policy
}

// MonthsWorked counts whole average-length months between startDate and asOf.
// An asOf before startDate yields 0.
func (c *AccrualCalculator) MonthsWorked(startDate, asOf time.Time) int {
	days := asOf.Sub(startDate).Hours() / 24
	months := int(math.Floor(days / leave.AverageDaysPerMonth))
	if months < 0 {
		return 0
	}
	return months
}

// AccruedHours returns the leave hours vested by asOf for someone employed since startDate.
func (c *AccrualCalculator) AccruedHours(startDate, asOf time.Time) int {
	return c.hoursFor(c.MonthsWorked(startDate, asOf))
}

func (c *AccrualCalculator) hoursFor(months int) int {
	// Qualifying period
	if months < c.policy.QualifyingMonths {
		return 0
	}

	quarters := months / c.policy.MonthsPerQuarter
	return min(quarters*c.policy.HoursPerQuarter, c.policy.TotalEntitlement)
}

// NextAccrualDate projects the next quarter boundary after asOf, counted in
// calendar months from startDate.
func (c *AccrualCalculator) NextAccrualDate(startDate, asOf time.Time) time.Time {
	months := c.MonthsWorked(startDate, asOf)
	per := c.policy.MonthsPerQuarter
	nextQuarterMonth := ((months + per) / per) * per
	return startDate.AddDate(0, nextQuarterMonth, 0)
}

// Breakdown returns the accrual position of a worker as of asOf.
func (c *AccrualCalculator) Breakdown(startDate, asOf time.Time) leave.AccrualBreakdown {
	months := c.MonthsWorked(startDate, asOf)
	quarters := months / c.policy.MonthsPerQuarter

	nextHours := c.policy.HoursPerQuarter
	if quarters >= c.policy.MaxQuarters() {
		nextHours = 0
	}

	return leave.AccrualBreakdown{
		MonthsWorked:      months,
		QuartersCompleted: quarters,
		HoursAccrued:      c.hoursFor(months),
		NextAccrualDate:   c.NextAccrualDate(startDate, asOf),
		NextAccrualHours:  nextHours,
	}
}

// MigrateBalance moves a balance onto policy, recomputing the fields that
// depend on the entitlement ceiling. HoursUsed is preserved.
func MigrateBalance(balance leave.Balance, policy leave.Policy, startDate *time.Time, asOf time.Time) leave.Balance {
	balance.TotalEntitlement = policy.TotalEntitlement
	balance.PolicyVersion = policy.Version
	if startDate != nil {
		balance.HoursAccrued = NewAccrualCalculator(policy).AccruedHours(*startDate, asOf)
	} else if balance.HoursAccrued > policy.TotalEntitlement {
		balance.HoursAccrued = policy.TotalEntitlement
	}
	balance.Recompute()
	return balance
}
