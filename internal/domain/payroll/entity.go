package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/shift"
)

// ShiftLine is one shift's contribution to a pay week.
type ShiftLine struct {
	ShiftID       string          `json:"shift_id"`
	Date          string          `json:"date"`
	Type          string          `json:"type"`
	StartTime     string          `json:"start_time"`
	EndTime       string          `json:"end_time"`
	Category      shift.Category  `json:"category"`
	Hours         float64         `json:"hours"`
	StandardHours float64         `json:"standard_hours"`
	EnhancedHours float64         `json:"enhanced_hours"`
	NightHours    float64         `json:"night_hours"`
	Cost          decimal.Decimal `json:"cost"`
	// DayHoursBefore is the week's running day-hour total when this shift started.
	DayHoursBefore float64 `json:"day_hours_before"`
	FromFallback   bool    `json:"from_fallback,omitempty"`
	Excluded       bool    `json:"excluded,omitempty"`
	Note           string  `json:"note,omitempty"`
}

// WeekSummary is one staff member's pay for one Sunday-start week.
type WeekSummary struct {
	WeekStart     string          `json:"week_start"`
	WeekEnd       string          `json:"week_end"`
	DayHours      float64         `json:"day_hours"`
	NightHours    float64         `json:"night_hours"`
	StandardHours float64         `json:"standard_hours"`
	EnhancedHours float64         `json:"enhanced_hours"`
	StandardPay   decimal.Decimal `json:"standard_pay"`
	EnhancedPay   decimal.Decimal `json:"enhanced_pay"`
	NightPay      decimal.Decimal `json:"night_pay"`
	TotalPay      decimal.Decimal `json:"total_week_pay"`
	Rates         Rates           `json:"rates"`
	Lines         []ShiftLine     `json:"shifts"`
	Notes         []string        `json:"notes,omitempty"`
}

func (w WeekSummary) TotalHours() float64 {
	return w.DayHours + w.NightHours
}

// Line returns the line for shiftID, if the week contains it.
func (w WeekSummary) Line(shiftID string) (ShiftLine, bool) {
	for _, l := range w.Lines {
		if l.ShiftID == shiftID {
			return l, true
		}
	}
	return ShiftLine{}, false
}

type StaffPeriodSummary struct {
	StaffID    string          `json:"staff_id"`
	StaffName  string          `json:"staff_name"`
	Role       string          `json:"role"`
	RawRates   RawRates        `json:"raw_rates"`
	TotalPay   decimal.Decimal `json:"total_pay"`
	TotalHours float64         `json:"total_hours"`
	Weeks      []WeekSummary   `json:"weeks"`
	// Notes are the distinct shift notes and decline reasons of the period.
	Notes []string `json:"notes"`
}

type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Unattributed counts shifts that could not be tied to a staff record.
type Unattributed struct {
	ShiftCount int      `json:"shift_count"`
	Hours      float64  `json:"hours"`
	ShiftIDs   []string `json:"shift_ids,omitempty"`
}

type PeriodReport struct {
	RunID           string               `json:"run_id"`
	Period          Period               `json:"period"`
	StaffID         string               `json:"staff_id,omitempty"`
	StaffSummary    []StaffPeriodSummary `json:"staff_summary"`
	TotalPay        decimal.Decimal      `json:"total_pay"`
	TotalHours      float64              `json:"total_hours"`
	Unattributed    Unattributed         `json:"unattributed"`
	DataQuality     []string             `json:"data_quality,omitempty"`
	FormattedReport string               `json:"formatted_report"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// ShiftAudit attributes cost and rate tier to a single shift.
type ShiftAudit struct {
	ShiftID       string          `json:"shift_id"`
	StaffID       string          `json:"staff_id"`
	StaffName     string          `json:"staff_name"`
	Site          string          `json:"site"`
	ShiftType     string          `json:"shift_type"`
	Date          string          `json:"date"`
	StartTime     string          `json:"start_time"`
	EndTime       string          `json:"end_time"`
	Duration      float64         `json:"duration"`
	Hours         float64         `json:"hours"`
	StandardHours float64         `json:"standard_hours"`
	EnhancedHours float64         `json:"enhanced_hours"`
	WeekStart     string          `json:"week_start"`
	Cost          decimal.Decimal `json:"cost"`
	Breakdown     string          `json:"breakdown"`
	RawRates      RawRates        `json:"raw_rates"`
	Notes         []string        `json:"notes,omitempty"`
	CalculatedAt  time.Time       `json:"calculated_at"`
}

// Settings configures the payroll service.
type Settings struct {
	RatePolicy RatePolicy
	// ExcludedStaff are placeholder staff names (bank/agency cover) left out of reports.
	ExcludedStaff []string
}
