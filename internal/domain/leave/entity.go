package leave

import (
	"fmt"
	"time"
)

// AverageDaysPerMonth converts elapsed days into worked months.
const AverageDaysPerMonth = 30.44

// Policy holds the accrual constants of one entitlement revision.
type Policy struct {
	Version          int
	QualifyingMonths int
	MonthsPerQuarter int
	HoursPerQuarter  int
	TotalEntitlement int
	HoursPerLeaveDay int
}

var (
	// PolicyV1 is the original 14-day (112h) entitlement.
	PolicyV1 = Policy{
		Version:          1,
		QualifyingMonths: 3,
		MonthsPerQuarter: 3,
		HoursPerQuarter:  28,
		TotalEntitlement: 112,
		HoursPerLeaveDay: 8,
	}
	// PolicyV2 is the current 28-day (224h) entitlement.
	PolicyV2 = Policy{
		Version:          2,
		QualifyingMonths: 3,
		MonthsPerQuarter: 3,
		HoursPerQuarter:  56,
		TotalEntitlement: 224,
		HoursPerLeaveDay: 8,
	}
)

// CurrentPolicy is the entitlement applied to new balances.
var CurrentPolicy = PolicyV2

func PolicyByVersion(version int) (Policy, error) {
	switch version {
	case PolicyV1.Version:
		return PolicyV1, nil
	case PolicyV2.Version:
		return PolicyV2, nil
	default:
		return Policy{}, fmt.Errorf("%w: %d", ErrUnknownPolicyVersion, version)
	}
}

// MaxQuarters is the number of quarters after which accrual reaches the ceiling.
func (p Policy) MaxQuarters() int {
	if p.HoursPerQuarter <= 0 {
		return 0
	}
	return (p.TotalEntitlement + p.HoursPerQuarter - 1) / p.HoursPerQuarter
}

// Balance is a staff member's leave balance for one calendar year.
type Balance struct {
	ID               string
	StaffID          string
	StaffName        string
	Year             int
	TotalEntitlement int
	HoursAccrued     int
	HoursUsed        int
	HoursRemaining   int
	PolicyVersion    int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Recompute derives HoursRemaining from TotalEntitlement and HoursUsed.
// Every change to either field goes through here.
func (b *Balance) Recompute() {
	b.HoursRemaining = b.TotalEntitlement - b.HoursUsed
}

// AccrualBreakdown is the accrual position shown to a worker.
type AccrualBreakdown struct {
	MonthsWorked      int       `json:"months_worked"`
	QuartersCompleted int       `json:"quarters_completed"`
	HoursAccrued      int       `json:"hours_accrued"`
	NextAccrualDate   time.Time `json:"next_accrual_date"`
	NextAccrualHours  int       `json:"next_accrual_hours"`
}
