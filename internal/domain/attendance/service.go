package attendance

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrFaceNotRegistered = errors.New("face not registered")
	ErrNotWorkingDay     = errors.New("today is not a working day")
	ErrAlreadyCheckedOut = errors.New("already checked out today")
	ErrInactiveEmployee  = errors.New("employee is not active")
)

// HolidayError carries the holiday name into the rejection message.
type HolidayError struct {
	Name string
}

func (e *HolidayError) Error() string {
	return fmt.Sprintf("today is a holiday: %s", e.Name)
}

type Service struct {
	store     StoreAPI
	employees EmployeeDirectory
	holidays  HolidayCalendar

	// GraceMinutes is the process-wide late threshold applied by the
	// lateness classifier.
	GraceMinutes int

	// now is swappable for tests. Instants it returns set the calendar
	// day used for record uniqueness and holiday matching.
	now func() time.Time
}

func NewService(store StoreAPI, employees EmployeeDirectory, holidays HolidayCalendar, graceMinutes int) *Service {
	return &Service{
		store:        store,
		employees:    employees,
		holidays:     holidays,
		GraceMinutes: graceMinutes,
		now:          time.Now,
	}
}

// CheckIn runs the gatekeeping chain, then computes and freezes the
// lateness fields. Precondition order matches the user-facing error
// priority: profile, face, duplicate, working day, holiday.
func (s *Service) CheckIn(ctx context.Context, userID string, in CheckInInput) (Record, error) {
	profile, err := s.employees.AttendanceProfile(ctx, userID)
	if err != nil {
		return Record{}, err
	}
	if !profile.IsActive {
		return Record{}, ErrInactiveEmployee
	}
	if !profile.FaceRegistered {
		return Record{}, ErrFaceNotRegistered
	}

	now := s.now()

	if _, err := s.store.RecordForDay(ctx, profile.ID, now); err == nil {
		return Record{}, ErrAlreadyCheckedIn
	} else if !errors.Is(err, ErrNoRecord) {
		return Record{}, err
	}

	if !slices.Contains(profile.WorkingDays, int(now.Weekday())) {
		return Record{}, ErrNotWorkingDay
	}

	if name, active, err := s.holidays.ActiveOn(ctx, now); err != nil {
		return Record{}, err
	} else if active {
		return Record{}, &HolidayError{Name: name}
	}

	start, err := ParseScheduleTime(profile.CheckInTime)
	if err != nil {
		return Record{}, err
	}

	late := IsLate(now, start, s.GraceMinutes)
	status := StatusPresent
	if late {
		status = StatusLate
	}

	return s.store.Create(ctx, Record{
		EmployeeID:    profile.ID,
		Day:           now,
		CheckInTime:   now,
		Status:        status,
		IsLate:        late,
		LateByMinutes: LateMinutes(now, start),
	}, in)
}

// CheckOut fills in the second half of today's record exactly once.
func (s *Service) CheckOut(ctx context.Context, userID string, in CheckOutInput) (Record, error) {
	profile, err := s.employees.AttendanceProfile(ctx, userID)
	if err != nil {
		return Record{}, err
	}

	now := s.now()

	rec, err := s.store.RecordForDay(ctx, profile.ID, now)
	if err != nil {
		return Record{}, err
	}
	if rec.CheckOutTime != nil {
		return Record{}, ErrAlreadyCheckedOut
	}

	end, err := ParseScheduleTime(profile.CheckOutTime)
	if err != nil {
		return Record{}, err
	}

	if in.BreakMinutes < 0 {
		in.BreakMinutes = 0
	}
	breakMinutes := rec.BreakMinutes
	if in.BreakMinutes > 0 {
		breakMinutes = in.BreakMinutes
	}
	in.BreakMinutes = breakMinutes

	return s.store.CompleteCheckout(ctx, rec.ID, now,
		WorkHours(rec.CheckInTime, now, breakMinutes),
		IsEarlyCheckout(now, end),
		EarlyMinutes(now, end),
		in)
}

// Today returns the caller's record for the current day, ErrNoRecord if
// they have not checked in.
func (s *Service) Today(ctx context.Context, userID string) (Record, error) {
	profile, err := s.employees.AttendanceProfile(ctx, userID)
	if err != nil {
		return Record{}, err
	}
	return s.store.RecordForDay(ctx, profile.ID, s.now())
}

// MyAttendance lists the caller's own records.
func (s *Service) MyAttendance(ctx context.Context, userID string, f Filter, limit, offset int) ([]Record, int, error) {
	profile, err := s.employees.AttendanceProfile(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	f.EmployeeID = profile.ID
	f.DepartmentID = ""
	return s.store.List(ctx, f, limit, offset)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]Record, int, error) {
	return s.store.List(ctx, f, limit, offset)
}

func (s *Service) TodayBoard(ctx context.Context) ([]DayEntry, error) {
	return s.store.DayBoard(ctx, s.now())
}

func (s *Service) Statistics(ctx context.Context, f Filter) (Statistics, error) {
	return s.store.Stats(ctx, f)
}
