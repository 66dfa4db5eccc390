package shift

import (
	"strings"
	"time"
)

// Shift is a rota entry as stored by the shifts table.
type Shift struct {
	ID        string
	StaffID   string
	StaffName string
	SiteID    string
	SiteName  string

	// Date is the nominal local day of the shift, YYYY-MM-DD.
	Date      string
	Type      string
	StartTime string
	EndTime   string

	// Duration is the stored legacy hours value.
	Duration float64

	ClockedIn    bool
	ClockInTime  *time.Time
	ClockedOut   bool
	ClockOutTime *time.Time

	StaffStatus    ResponseStatus
	WeekDeadline   *time.Time
	AutoAccepted   bool
	ResponseLocked bool

	Notes         *string
	DeclineReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ResponseStatus string

const (
	StatusPending  ResponseStatus = "pending"
	StatusAccepted ResponseStatus = "accepted"
	StatusDeclined ResponseStatus = "declined"
)

// Category is the pay pool a shift's hours are routed to.
type Category string

const (
	CategoryDay   Category = "Day"
	CategoryNight Category = "Night"
)

// Classify labels a shift type Night when it contains "night" in any case.
// "Overnight" therefore counts as Night as well.
func Classify(shiftType string) Category {
	if strings.Contains(strings.ToLower(shiftType), "night") {
		return CategoryNight
	}
	return CategoryDay
}

func (s Shift) Category() Category {
	return Classify(s.Type)
}

// ClockStatusScore ranks shifts by how much attendance evidence they carry.
func (s Shift) ClockStatusScore() int {
	score := 0
	if s.ClockedOut {
		score += 4
	}
	if s.ClockedIn {
		score += 2
	}
	return score
}
