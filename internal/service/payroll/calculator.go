package payroll

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/payroll"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/shift"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/worktime"
)

// SplitAtThreshold splits a day shift of hours, starting when the week has
// already accumulated previous day-hours, into the part inside
// [0, threshold] and the remainder.
// Float leftovers within hourEpsilon of a boundary snap to it, so a shift
// ending exactly on the threshold has no enhanced part.
func SplitAtThreshold(previous, hours, threshold float64) (standard, enhanced float64) {
	standard = math.Max(0, math.Min(previous+hours, threshold)-math.Max(previous, 0))
	enhanced = hours - standard
	if enhanced < hourEpsilon {
		return hours, 0
	}
	if standard < hourEpsilon {
		return 0, hours
	}
	return standard, enhanced
}

const hourEpsilon = 1e-9

// SortChronological orders shifts by date, then scheduled start time.
// Unparseable start times sort after parseable ones on the same date.
func SortChronological(shifts []shift.Shift) {
	sort.SliceStable(shifts, func(i, j int) bool {
		if shifts[i].Date != shifts[j].Date {
			return shifts[i].Date < shifts[j].Date
		}
		mi, okI := minuteOfDay(shifts[i].StartTime)
		mj, okJ := minuteOfDay(shifts[j].StartTime)
		if okI != okJ {
			return okI
		}
		return mi < mj
	})
}

func minuteOfDay(t string) (int, bool) {
	t = strings.TrimSpace(t)
	for _, layout := range []string{worktime.TimeLayout, "15:04:05"} {
		if parsed, err := time.Parse(layout, t); err == nil {
			return parsed.Hour()*60 + parsed.Minute(), true
		}
	}
	return 0, false
}

func clock(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}

// timedShift is a shift with its scheduled interval resolved.
type timedShift struct {
	shift.Shift
	start, end time.Time
	hours      float64
	parsed     bool
	fallback   bool
	note       string
}

func resolveTimes(s shift.Shift) timedShift {
	ts := timedShift{Shift: s}

	from, to, err := worktime.Interval(s.Date, s.StartTime, s.EndTime)
	if err != nil {
		ts.hours = math.Max(s.Duration, 0)
		ts.fallback = true
		ts.note = fmt.Sprintf("Data quality: shift %s on %s has unusable times (%v), using stored duration %.2fh", s.ID, s.Date, err, ts.hours)
		return ts
	}

	ts.start, ts.end, ts.parsed = from, to, true
	ts.hours = to.Sub(from).Hours()
	if ts.hours < 0 {
		ts.hours = 0
		ts.note = fmt.Sprintf("Data quality: shift %s on %s: %v, counted as 0h", s.ID, s.Date, worktime.ErrNegativeDuration)
	}
	return ts
}

// resolveOverlaps keeps one shift out of each run of same-date shifts whose
// scheduled intervals overlap. The shift with more clock evidence wins; on a
// tie the longer one, then the earlier one. Input must be chronological.
func resolveOverlaps(shifts []timedShift) (kept, dropped []timedShift, warnings []string) {
	for _, cur := range shifts {
		if len(kept) == 0 {
			kept = append(kept, cur)
			continue
		}
		last := kept[len(kept)-1]
		if last.Date != cur.Date || !last.parsed || !cur.parsed || !cur.start.Before(last.end) {
			kept = append(kept, cur)
			continue
		}

		warning := fmt.Sprintf("Overlap: %s [%s-%s] vs [%s-%s]", cur.Date,
			clock(last.StartTime), clock(last.EndTime), clock(cur.StartTime), clock(cur.EndTime))

		winner, loser, reason := last, cur, "longer/first"
		switch lastScore, curScore := last.ClockStatusScore(), cur.ClockStatusScore(); {
		case curScore > lastScore:
			winner, loser, reason = cur, last, "better status"
		case curScore < lastScore:
			reason = "better status"
		case cur.hours > last.hours:
			winner, loser, reason = cur, last, "longer"
		}

		kept[len(kept)-1] = winner
		dropped = append(dropped, loser)
		warnings = append(warnings, fmt.Sprintf("%s -> kept [%s-%s] (%s)", warning, clock(winner.StartTime), clock(winner.EndTime), reason))
	}
	return kept, dropped, warnings
}

// WeekCalculator runs the weekly standard/enhanced/night simulation.
type WeekCalculator struct {
	Threshold float64
}

func NewWeekCalculator() WeekCalculator {
	return WeekCalculator{Threshold: payroll.StandardHoursThreshold}
}

// Calculate pays one staff member's shifts of a single week at rates.
// Shifts need not be sorted; they are processed chronologically.
func (c WeekCalculator) Calculate(weekStart time.Time, shifts []shift.Shift, rates payroll.Rates) payroll.WeekSummary {
	ordered := make([]shift.Shift, len(shifts))
	copy(ordered, shifts)
	SortChronological(ordered)

	timed := make([]timedShift, 0, len(ordered))
	for _, s := range ordered {
		timed = append(timed, resolveTimes(s))
	}
	kept, dropped, warnings := resolveOverlaps(timed)

	week := payroll.WeekSummary{
		WeekStart:   worktime.WeekKey(weekStart),
		WeekEnd:     worktime.WeekEnd(weekStart).Format(worktime.DateLayout),
		StandardPay: decimal.Zero,
		EnhancedPay: decimal.Zero,
		NightPay:    decimal.Zero,
		TotalPay:    decimal.Zero,
		Rates:       rates,
		Lines:       make([]payroll.ShiftLine, 0, len(timed)),
		Notes:       warnings,
	}

	for _, ts := range kept {
		line := payroll.ShiftLine{
			ShiftID:        ts.ID,
			Date:           ts.Date,
			Type:           ts.Type,
			StartTime:      clock(ts.StartTime),
			EndTime:        clock(ts.EndTime),
			Category:       ts.Category(),
			Hours:          ts.hours,
			DayHoursBefore: week.DayHours,
			FromFallback:   ts.fallback,
			Note:           ts.note,
		}
		if ts.note != "" {
			week.Notes = append(week.Notes, ts.note)
		}

		hours := decimal.NewFromFloat(ts.hours)
		if line.Category == shift.CategoryNight {
			line.NightHours = ts.hours
			line.Cost = hours.Mul(rates.Night)
			week.NightHours += ts.hours
		} else {
			line.StandardHours, line.EnhancedHours = SplitAtThreshold(week.DayHours, ts.hours, c.Threshold)
			line.Cost = decimal.NewFromFloat(line.StandardHours).Mul(rates.Standard).
				Add(decimal.NewFromFloat(line.EnhancedHours).Mul(rates.Enhanced))
			week.DayHours += ts.hours
			week.StandardHours += line.StandardHours
			week.EnhancedHours += line.EnhancedHours
		}
		week.Lines = append(week.Lines, line)
	}

	for _, ts := range dropped {
		week.Lines = append(week.Lines, payroll.ShiftLine{
			ShiftID:   ts.ID,
			Date:      ts.Date,
			Type:      ts.Type,
			StartTime: clock(ts.StartTime),
			EndTime:   clock(ts.EndTime),
			Category:  ts.Category(),
			Cost:      decimal.Zero,
			Excluded:  true,
			Note:      "excluded: overlaps another shift on the same date",
		})
	}

	week.StandardPay = decimal.NewFromFloat(week.StandardHours).Mul(rates.Standard)
	week.EnhancedPay = decimal.NewFromFloat(week.EnhancedHours).Mul(rates.Enhanced)
	week.NightPay = decimal.NewFromFloat(week.NightHours).Mul(rates.Night)
	week.TotalPay = week.StandardPay.Add(week.EnhancedPay).Add(week.NightPay)

	return week
}

// bucketByWeek groups shifts by the Sunday starting their week. Shifts with
// an unreadable date are returned separately.
func bucketByWeek(shifts []shift.Shift) (map[string][]shift.Shift, []string, []shift.Shift) {
	weeks := make(map[string][]shift.Shift)
	var bad []shift.Shift
	for _, s := range shifts {
		d, err := worktime.ParseDate(s.Date)
		if err != nil {
			bad = append(bad, s)
			continue
		}
		key := worktime.WeekKey(d)
		weeks[key] = append(weeks[key], s)
	}

	keys := make([]string, 0, len(weeks))
	for k := range weeks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return weeks, keys, bad
}

// describeLine renders the cost attribution of a single line.
func describeLine(line payroll.ShiftLine, rates payroll.Rates, threshold float64) string {
	switch {
	case line.Excluded:
		return "0.00h (" + line.Note + ")"
	case line.Category == shift.CategoryNight:
		return fmt.Sprintf("%.2fh @ Night Rate (£%s)", line.NightHours, rates.Night.StringFixed(2))
	}

	out := fmt.Sprintf("%.2fh @ Standard (£%s) + %.2fh @ Enhanced (£%s)",
		line.StandardHours, rates.Standard.StringFixed(2), line.EnhancedHours, rates.Enhanced.StringFixed(2))
	if line.EnhancedHours > 0 {
		out += fmt.Sprintf("\n(Shift pushed total Day hours from %.1f to %.1f, crossing %gh threshold)",
			line.DayHoursBefore, line.DayHoursBefore+line.Hours, threshold)
	}
	return out
}
