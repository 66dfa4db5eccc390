package payroll

import (
	"fmt"
	"strings"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/payroll"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/shift"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/staff"
)

func rawOrNA(raw string) string {
	if r := strings.TrimSpace(raw); r != "" && r != staff.UnsetRate {
		return "£" + strings.TrimPrefix(r, "£")
	}
	return "N/A"
}

// renderReport produces the markdown payroll report.
func renderReport(report payroll.PeriodReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Payroll Audit Report\n**Period:** %s to %s\n\n", report.Period.Start, report.Period.End)

	for _, s := range report.StaffSummary {
		fmt.Fprintf(&b, "## %s (%s)\n", s.StaffName, s.Role)
		b.WriteString("**Source Rates:**\n")
		fmt.Fprintf(&b, "- Standard: £%s\n", s.RawRates.Standard)
		fmt.Fprintf(&b, "- Enhanced: %s\n", rawOrNA(s.RawRates.Enhanced))
		fmt.Fprintf(&b, "- Night:    %s\n\n", rawOrNA(s.RawRates.Night))

		for _, w := range s.Weeks {
			fmt.Fprintf(&b, "### Week Starting %s\n", w.WeekStart)
			for _, n := range w.Notes {
				fmt.Fprintf(&b, "> %s\n", n)
			}

			for _, l := range w.Lines {
				if l.Excluded {
					fmt.Fprintf(&b, "  - %s (%s) [%s - %s]: excluded (overlap)\n", l.Date, l.Type, l.StartTime, l.EndTime)
					continue
				}
				logic := "Day Logic"
				if l.Category == shift.CategoryNight {
					logic = "Night Rate"
				}
				fmt.Fprintf(&b, "  - %s (%s) [%s - %s]: %.2fh -> **%s**\n", l.Date, l.Type, l.StartTime, l.EndTime, l.Hours, logic)
			}

			b.WriteString("\n**Calculation (Based on Scheduled Times):**\n")
			fmt.Fprintf(&b, "- Day Hours: %.2fh\n", w.DayHours)
			fmt.Fprintf(&b, "  - Standard (First %gh): %.2fh * £%s = £%s\n", payroll.StandardHoursThreshold, w.StandardHours, w.Rates.Standard.StringFixed(2), w.StandardPay.StringFixed(2))
			fmt.Fprintf(&b, "  - Enhanced (Rest):      %.2fh * £%s = £%s\n", w.EnhancedHours, w.Rates.Enhanced.StringFixed(2), w.EnhancedPay.StringFixed(2))
			fmt.Fprintf(&b, "- Night Hours:            %.2fh * £%s = £%s\n", w.NightHours, w.Rates.Night.StringFixed(2), w.NightPay.StringFixed(2))
			fmt.Fprintf(&b, "**Week Total:** £%s\n\n", w.TotalPay.StringFixed(2))
		}

		if len(s.Notes) > 0 {
			b.WriteString("**Notes:**\n")
			for _, n := range s.Notes {
				fmt.Fprintf(&b, "- %s\n", n)
			}
		}
		fmt.Fprintf(&b, "**Total Period Pay: £%s** (%.2f hours)\n---\n\n", s.TotalPay.StringFixed(2), s.TotalHours)
	}

	if report.Unattributed.ShiftCount > 0 {
		fmt.Fprintf(&b, "## Unattributed shifts\n%d shift(s), %.2fh, not included in any staff total.\n\n", report.Unattributed.ShiftCount, report.Unattributed.Hours)
	}

	fmt.Fprintf(&b, "**Grand Total: £%s** (%.2f hours)\n", report.TotalPay.StringFixed(2), report.TotalHours)
	return b.String()
}
