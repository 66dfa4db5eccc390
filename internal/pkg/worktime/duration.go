package worktime

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrInvalidTime      = errors.New("invalid shift time")
	ErrNegativeDuration = errors.New("negative shift duration")
)

// ParseError reports a shift date/time pair that could not be turned into an instant.
type ParseError struct {
	Date  string
	Time  string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Time == "" {
		return fmt.Sprintf("%s: missing %s for %q", ErrInvalidTime, e.Field, e.Date)
	}
	return fmt.Sprintf("%s: cannot parse %s %q on %q", ErrInvalidTime, e.Field, e.Time, e.Date)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidTime
}

// At combines a YYYY-MM-DD date with an HH:MM time of day in loc.
// Times carrying seconds ("HH:MM:SS") are accepted and truncated to the minute.
func At(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	clock = strings.TrimSpace(clock)
	if len(clock) > 5 {
		clock = clock[:5]
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, strings.TrimSpace(date)+" "+clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Interval returns the scheduled start and end instants of a shift.
// An end before the start is moved to the next calendar day.
func Interval(date, start, end string) (time.Time, time.Time, error) {
	if strings.TrimSpace(start) == "" {
		return time.Time{}, time.Time{}, &ParseError{Date: date, Field: "start time"}
	}
	if strings.TrimSpace(end) == "" {
		return time.Time{}, time.Time{}, &ParseError{Date: date, Field: "end time"}
	}

	from, err := At(date, start, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, &ParseError{Date: date, Time: start, Field: "start time", Err: err}
	}
	to, err := At(date, end, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, &ParseError{Date: date, Time: end, Field: "end time", Err: err}
	}

	if to.Before(from) {
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// DurationHours returns the scheduled length of a shift in fractional hours.
//
// The result is never negative. When the computed delta is negative anyway
// (a DST transition can do this) the value is clamped to 0 and
// ErrNegativeDuration is returned with it so the caller can flag the record.
func DurationHours(date, start, end string) (float64, error) {
	from, to, err := Interval(date, start, end)
	if err != nil {
		return 0, err
	}
	hours := to.Sub(from).Hours()
	if hours < 0 {
		return 0, ErrNegativeDuration
	}
	return hours, nil
}

// ActualDurationHours returns the hours between a clock-in and clock-out.
func ActualDurationHours(clockIn, clockOut time.Time) (float64, error) {
	hours := clockOut.Sub(clockIn).Hours()
	if hours < 0 {
		return 0, ErrNegativeDuration
	}
	return hours, nil
}

// FormatHours renders fractional hours as "7h 40m".
func FormatHours(hours float64) string {
	h := math.Floor(hours)
	m := math.Round((hours - h) * 60)
	if m == 60 {
		h++
		m = 0
	}
	if m > 0 {
		return fmt.Sprintf("%dh %dm", int(h), int(m))
	}
	return fmt.Sprintf("%dh", int(h))
}
