package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min, sec int) time.Time {
	return time.Date(2025, time.March, 10, hour, min, sec, 0, time.UTC)
}

func TestParseScheduleTime(t *testing.T) {
	st, err := ParseScheduleTime("09:05")
	require.NoError(t, err)
	assert.Equal(t, ScheduleTime{Hour: 9, Minute: 5}, st)
	assert.Equal(t, "09:05", st.String())

	for _, bad := range []string{"", "9:00", "09:0", "24:00", "09:60", "ab:cd", "09-00", "09:3x", "009:00"} {
		_, err := ParseScheduleTime(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestScheduleTimeAt(t *testing.T) {
	st := ScheduleTime{Hour: 9, Minute: 0}
	ref := st.At(at(14, 23, 45))
	assert.Equal(t, at(9, 0, 0), ref)
	assert.Equal(t, time.UTC, ref.Location())
}

func TestWorkHours(t *testing.T) {
	checkIn := at(8, 55, 0)
	checkOut := at(16, 45, 0)

	assert.Equal(t, 0.0, WorkHours(time.Time{}, checkOut, 0), "missing check-in")
	assert.Equal(t, 0.0, WorkHours(checkIn, time.Time{}, 0), "not yet checked out")

	assert.Equal(t, 8.0, WorkHours(at(9, 0, 0), at(17, 0, 0), 0))
	assert.Equal(t, 7.33, WorkHours(checkIn, checkOut, 30))

	assert.Equal(t, 0.0, WorkHours(checkOut, checkIn, 0), "checkout before check-in floors at zero")
	assert.Equal(t, 0.0, WorkHours(at(9, 0, 0), at(9, 30, 0), 120), "break longer than span floors at zero")

	// Non-decreasing in span, non-increasing in break.
	assert.GreaterOrEqual(t, WorkHours(checkIn, checkOut.Add(time.Hour), 30), WorkHours(checkIn, checkOut, 30))
	assert.LessOrEqual(t, WorkHours(checkIn, checkOut, 60), WorkHours(checkIn, checkOut, 30))

	// Multi-day spans are not capped.
	assert.Equal(t, 32.0, WorkHours(at(9, 0, 0), at(9, 0, 0).Add(32*time.Hour), 0))
}

func TestWorkHoursRounding(t *testing.T) {
	// 7h50m with no break is 7.8333..., rounded to two decimals.
	assert.Equal(t, 7.83, WorkHours(at(8, 55, 0), at(16, 45, 0), 0))
	// 20 minutes is 0.3333...
	assert.Equal(t, 0.33, WorkHours(at(9, 0, 0), at(9, 20, 0), 0))
}

func TestIsLate(t *testing.T) {
	start := ScheduleTime{Hour: 9, Minute: 0}

	assert.False(t, IsLate(at(8, 55, 0), start, 15))
	assert.False(t, IsLate(at(9, 0, 0), start, 15))
	assert.False(t, IsLate(at(9, 10, 0), start, 15), "inside grace window")
	assert.False(t, IsLate(at(9, 15, 0), start, 15), "exactly at grace deadline")
	assert.True(t, IsLate(at(9, 15, 1), start, 15), "strictly after grace deadline")
	assert.True(t, IsLate(at(9, 16, 0), start, 15))

	assert.True(t, IsLate(at(9, 0, 1), start, 0), "zero grace is strict")
	assert.False(t, IsLate(at(9, 0, 0), start, 0))
}

func TestLateMinutes(t *testing.T) {
	start := ScheduleTime{Hour: 9, Minute: 0}

	assert.Equal(t, 0, LateMinutes(at(8, 30, 0), start))
	assert.Equal(t, 0, LateMinutes(at(9, 0, 0), start))
	assert.Equal(t, 10, LateMinutes(at(9, 10, 0), start))
	assert.Equal(t, 10, LateMinutes(at(9, 10, 59), start), "partial minutes floor")
	assert.Equal(t, 90, LateMinutes(at(10, 30, 0), start))
}

// An arrival inside the grace window is not classified late but still
// accrues minutes. The two functions intentionally disagree.
func TestLatenessGraceAsymmetry(t *testing.T) {
	start := ScheduleTime{Hour: 9, Minute: 0}
	checkIn := at(9, 10, 0)

	assert.False(t, IsLate(checkIn, start, 15))
	assert.Equal(t, 10, LateMinutes(checkIn, start))
}

func TestIsEarlyCheckout(t *testing.T) {
	end := ScheduleTime{Hour: 17, Minute: 0}

	assert.True(t, IsEarlyCheckout(at(16, 45, 0), end))
	assert.True(t, IsEarlyCheckout(at(16, 59, 59), end))
	assert.False(t, IsEarlyCheckout(at(17, 0, 0), end), "at scheduled end is not early")
	assert.False(t, IsEarlyCheckout(at(17, 30, 0), end))
}

func TestEarlyMinutes(t *testing.T) {
	end := ScheduleTime{Hour: 17, Minute: 0}

	assert.Equal(t, 15, EarlyMinutes(at(16, 45, 0), end))
	assert.Equal(t, 0, EarlyMinutes(at(17, 0, 0), end))
	assert.Equal(t, 0, EarlyMinutes(at(18, 0, 0), end))
	assert.Equal(t, 14, EarlyMinutes(at(16, 45, 30), end), "partial minutes floor")
}

func TestFullDayScenario(t *testing.T) {
	start := ScheduleTime{Hour: 9, Minute: 0}
	end := ScheduleTime{Hour: 17, Minute: 0}
	checkIn := at(8, 55, 0)
	checkOut := at(16, 45, 0)

	assert.False(t, IsLate(checkIn, start, 15))
	assert.Equal(t, 0, LateMinutes(checkIn, start))
	assert.Equal(t, 7.33, WorkHours(checkIn, checkOut, 30))
	assert.True(t, IsEarlyCheckout(checkOut, end))
	assert.Equal(t, 15, EarlyMinutes(checkOut, end))
}

func TestCalculatorIsPure(t *testing.T) {
	start := ScheduleTime{Hour: 9, Minute: 0}
	checkIn := at(9, 22, 0)
	for range 3 {
		assert.True(t, IsLate(checkIn, start, 15))
		assert.Equal(t, 22, LateMinutes(checkIn, start))
	}
}
