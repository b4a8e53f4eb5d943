package attendance

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleTime is a wall-clock time of day from an employee schedule,
// parsed out of its "HH:MM" storage form.
type ScheduleTime struct {
	Hour   int
	Minute int
}

// ParseScheduleTime parses a strict 24-hour "HH:MM" string. A malformed
// schedule is a data error, so it fails instead of guessing.
func ParseScheduleTime(s string) (ScheduleTime, error) {
	if len(s) != 5 || s[2] != ':' {
		return ScheduleTime{}, fmt.Errorf("invalid schedule time %q, want HH:MM", s)
	}
	h, err1 := strconv.Atoi(s[:2])
	m, err2 := strconv.Atoi(s[3:])
	if err1 != nil || err2 != nil {
		return ScheduleTime{}, fmt.Errorf("invalid schedule time %q, want HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return ScheduleTime{}, fmt.Errorf("schedule time %q out of range", s)
	}
	return ScheduleTime{Hour: h, Minute: m}, nil
}

func (st ScheduleTime) String() string {
	return fmt.Sprintf("%02d:%02d", st.Hour, st.Minute)
}

// At materializes the schedule time on t's calendar date, in t's
// location, with seconds zeroed. Which location t carries decides the
// day boundary, so callers must pass instants in a consistent zone.
func (st ScheduleTime) At(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), st.Hour, st.Minute, 0, 0, t.Location())
}

// WorkHours returns elapsed hours between check-in and check-out minus
// break time, floored at zero and rounded to 2 decimals. A zero instant
// on either side means "not yet checked out" and yields 0 without error.
// The span is deliberately uncapped.
func WorkHours(checkIn, checkOut time.Time, breakMinutes int) float64 {
	if checkIn.IsZero() || checkOut.IsZero() {
		return 0
	}
	hours := checkOut.Sub(checkIn).Seconds()/3600 - float64(breakMinutes)/60
	if hours < 0 {
		return 0
	}
	rounded, _ := decimal.NewFromFloat(hours).Round(2).Float64()
	return rounded
}

// IsLate reports whether checkIn falls strictly after the scheduled
// start plus the grace period, both on checkIn's own date.
func IsLate(checkIn time.Time, start ScheduleTime, graceMinutes int) bool {
	deadline := start.At(checkIn).Add(time.Duration(graceMinutes) * time.Minute)
	return checkIn.After(deadline)
}

// LateMinutes is the whole-minute gap between checkIn and the scheduled
// start, floored at zero. Unlike IsLate it applies no grace period: an
// arrival inside the grace window still accrues minutes. Inherited
// behavior, kept for parity with existing records.
func LateMinutes(checkIn time.Time, start ScheduleTime) int {
	scheduled := start.At(checkIn)
	if !checkIn.After(scheduled) {
		return 0
	}
	return int(checkIn.Sub(scheduled) / time.Minute)
}

// IsEarlyCheckout reports whether checkOut falls strictly before the
// scheduled end on checkOut's own date. No grace period applies.
func IsEarlyCheckout(checkOut time.Time, end ScheduleTime) bool {
	return checkOut.Before(end.At(checkOut))
}

// EarlyMinutes is the whole-minute gap between checkOut and the
// scheduled end, floored at zero.
func EarlyMinutes(checkOut time.Time, end ScheduleTime) int {
	scheduled := end.At(checkOut)
	if !checkOut.Before(scheduled) {
		return 0
	}
	return int(scheduled.Sub(checkOut) / time.Minute)
}
