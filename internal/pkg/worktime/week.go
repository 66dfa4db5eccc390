package worktime

import "time"

// WeekStart returns local midnight of the Sunday on or before t.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekEnd returns the Saturday closing the week that contains t.
func WeekEnd(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 6)
}

// WeekKey is the bucket key of the week containing t: the Sunday as YYYY-MM-DD.
func WeekKey(t time.Time) string {
	return WeekStart(t).Format(DateLayout)
}

// WeekDeadline is the response deadline for a shift on shiftDate: the
// Sunday 00:00 that opens the shift's week.
func WeekDeadline(shiftDate time.Time) time.Time {
	return WeekStart(shiftDate)
}

// ParseDate parses a YYYY-MM-DD calendar date at local midnight.
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, time.Local)
}
