package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	records      map[string]Record
	nextID       int
	raceHit      bool
	checkoutRace bool
	checkout     Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]Record{}}
}

func dayKey(employeeID string, day time.Time) string {
	return employeeID + "/" + day.Format("2006-01-02")
}

func (f *fakeStore) RecordForDay(_ context.Context, employeeID string, day time.Time) (Record, error) {
	r, ok := f.records[dayKey(employeeID, day)]
	if !ok {
		return Record{}, ErrNoRecord
	}
	return r, nil
}

func (f *fakeStore) Create(_ context.Context, r Record, _ CheckInInput) (Record, error) {
	if f.raceHit {
		return Record{}, ErrAlreadyCheckedIn
	}
	f.nextID++
	r.ID = string(rune('a' + f.nextID))
	f.records[dayKey(r.EmployeeID, r.Day)] = r
	return r, nil
}

func (f *fakeStore) CompleteCheckout(_ context.Context, recordID string, checkOut time.Time, totalHours float64, isEarly bool, earlyMinutes int, in CheckOutInput) (Record, error) {
	if f.checkoutRace {
		return Record{}, ErrAlreadyCheckedOut
	}
	for k, r := range f.records {
		if r.ID == recordID {
			r.CheckOutTime = &checkOut
			r.TotalHours = totalHours
			r.IsEarlyCheckout = isEarly
			r.EarlyByMinutes = earlyMinutes
			r.BreakMinutes = in.BreakMinutes
			f.records[k] = r
			f.checkout = r
			return r, nil
		}
	}
	return Record{}, ErrNoRecord
}

func (f *fakeStore) List(context.Context, Filter, int, int) ([]Record, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) DayBoard(context.Context, time.Time) ([]DayEntry, error) {
	return nil, nil
}

func (f *fakeStore) Stats(context.Context, Filter) (Statistics, error) {
	return Statistics{}, nil
}

type fakeDirectory struct {
	profile EmployeeProfile
	err     error
}

func (f *fakeDirectory) AttendanceProfile(context.Context, string) (EmployeeProfile, error) {
	return f.profile, f.err
}

type fakeCalendar struct {
	name string
}

func (f *fakeCalendar) ActiveOn(context.Context, time.Time) (string, bool, error) {
	return f.name, f.name != "", nil
}

func workingProfile() EmployeeProfile {
	return EmployeeProfile{
		ID:             "emp-1",
		UserID:         "user-1",
		FullName:       "Dana Field",
		CheckInTime:    "09:00",
		CheckOutTime:   "17:00",
		WorkingDays:    []int{1, 2, 3, 4, 5},
		FaceRegistered: true,
		IsActive:       true,
	}
}

// 2025-03-10 is a Monday.
func fixedClock(hour, min int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.March, 10, hour, min, 0, 0, time.UTC)
	}
}

func newTestService(store StoreAPI, dir EmployeeDirectory, cal HolidayCalendar) *Service {
	return NewService(store, dir, cal, 15)
}

func TestCheckInOnTime(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeDirectory{profile: workingProfile()}, &fakeCalendar{})
	svc.now = fixedClock(8, 55)

	rec, err := svc.CheckIn(context.Background(), "user-1", CheckInInput{Confidence: 0.92})
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, rec.Status)
	assert.False(t, rec.IsLate)
	assert.Equal(t, 0, rec.LateByMinutes)
}

func TestCheckInLate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeDirectory{profile: workingProfile()}, &fakeCalendar{})
	svc.now = fixedClock(9, 40)

	rec, err := svc.CheckIn(context.Background(), "user-1", CheckInInput{})
	require.NoError(t, err)
	assert.Equal(t, StatusLate, rec.Status)
	assert.True(t, rec.IsLate)
	assert.Equal(t, 40, rec.LateByMinutes)
}

func TestCheckInInsideGraceStillCountsMinutes(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeDirectory{profile: workingProfile()}, &fakeCalendar{})
	svc.now = fixedClock(9, 10)

	rec, err := svc.CheckIn(context.Background(), "user-1", CheckInInput{})
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, rec.Status)
	assert.False(t, rec.IsLate)
	assert.Equal(t, 10, rec.LateByMinutes)
}

func TestCheckInRequiresRegisteredFace(t *testing.T) {
	profile := workingProfile()
	profile.FaceRegistered = false
	svc := newTestService(newFakeStore(), &fakeDirectory{profile: profile}, &fakeCalendar{})
	svc.now = fixedClock(9, 0)

	_, err := svc.CheckIn(context.Background(), "user-1", CheckInInput{})
	assert.ErrorIs(t, err, ErrFaceNotRegistered)
}

func TestCheckInRejectsSecondAttempt(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeDirectory{profile: workingProfile()}, &fakeCalendar{})
	svc.now = fixedClock(9, 0)

	_, err := svc.CheckIn(context.Background(), "user-1", CheckInInput{})
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), "user-1", CheckInInput{})
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

// A concurrent check-in that slips past the read still loses on the
// unique index and surfaces the same rejection.
func TestCheckInSurfacesUniqueIndexRace(t *testing.T) {
	store := newFakeStore()
	store.raceHit = true
	svc := newTestService(store, &fakeDirectory{profile: workingProfile()}, &fakeCalendar{})
	svc.now = fixedClock(9, 0)

	_, err := svc.CheckIn(context.Background(), "user-1", CheckInInput{})
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestCheckInRejectsNonWorkingDay(t *testing.T) {
	profile := workingProfile()
	profile.WorkingDays = []int{2, 3, 4, 5, 6}
	svc := newTestService(newFakeStore(), &fakeDirectory{profile: profile}, &fakeCalendar{})
	svc.now = fixedClock(9, 0) // Monday

	_, err := svc.CheckIn(context.Background(), "user-1", CheckInInput{})
	assert.ErrorIs(t, err, ErrNotWorkingDay)
}

func TestCheckInRejectsHoliday(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeDirectory{profile: workingProfile()}, &fakeCalendar{name: "Founders Day"})
	svc.now = fixedClock(9, 0)

	_, err := svc.CheckIn(context.Background(), "user-1", CheckInInput{})
	var holidayErr *HolidayError
	require.ErrorAs(t, err, &holidayErr)
	assert.Equal(t, "Founders Day", holidayErr.Name)
	assert.Contains(t, err.Error(), "Founders Day")
}

func TestCheckInRejectsInactiveEmployee(t *testing.T) {
	profile := workingProfile()
	profile.IsActive = false
	svc := newTestService(newFakeStore(), &fakeDirectory{profile: profile}, &fakeCalendar{})
	svc.now = fixedClock(9, 0)

	_, err := svc.CheckIn(context.Background(), "user-1", CheckInInput{})
	assert.ErrorIs(t, err, ErrInactiveEmployee)
}

func TestCheckOut(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeDirectory{profile: workingProfile()}, &fakeCalendar{})

	svc.now = fixedClock(8, 55)
	_, err := svc.CheckIn(context.Background(), "user-1", CheckInInput{})
	require.NoError(t, err)

	svc.now = fixedClock(16, 45)
	rec, err := svc.CheckOut(context.Background(), "user-1", CheckOutInput{BreakMinutes: 30})
	require.NoError(t, err)

	assert.Equal(t, 7.33, rec.TotalHours)
	assert.True(t, rec.IsEarlyCheckout)
	assert.Equal(t, 15, rec.EarlyByMinutes)
	require.NotNil(t, rec.CheckOutTime)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeDirectory{profile: workingProfile()}, &fakeCalendar{})
	svc.now = fixedClock(17, 0)

	_, err := svc.CheckOut(context.Background(), "user-1", CheckOutInput{})
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestCheckOutTwice(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeDirectory{profile: workingProfile()}, &fakeCalendar{})

	svc.now = fixedClock(9, 0)
	_, err := svc.CheckIn(context.Background(), "user-1", CheckInInput{})
	require.NoError(t, err)

	svc.now = fixedClock(17, 0)
	_, err = svc.CheckOut(context.Background(), "user-1", CheckOutInput{})
	require.NoError(t, err)

	_, err = svc.CheckOut(context.Background(), "user-1", CheckOutInput{})
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
}

func TestCheckOutSurfacesGuardedUpdateRace(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeDirectory{profile: workingProfile()}, &fakeCalendar{})

	svc.now = fixedClock(9, 0)
	_, err := svc.CheckIn(context.Background(), "user-1", CheckInInput{})
	require.NoError(t, err)

	// A second request completes the checkout between this one's read
	// and its guarded update. The loser must not report success.
	store.checkoutRace = true
	svc.now = fixedClock(17, 0)
	_, err = svc.CheckOut(context.Background(), "user-1", CheckOutInput{})
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
}

func TestCheckOutAtScheduledEndIsNotEarly(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeDirectory{profile: workingProfile()}, &fakeCalendar{})

	svc.now = fixedClock(9, 0)
	_, err := svc.CheckIn(context.Background(), "user-1", CheckInInput{})
	require.NoError(t, err)

	svc.now = fixedClock(17, 0)
	rec, err := svc.CheckOut(context.Background(), "user-1", CheckOutInput{})
	require.NoError(t, err)

	assert.False(t, rec.IsEarlyCheckout)
	assert.Equal(t, 0, rec.EarlyByMinutes)
	assert.Equal(t, 8.0, rec.TotalHours)
}
