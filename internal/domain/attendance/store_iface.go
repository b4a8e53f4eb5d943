package attendance

import (
	"context"
	"time"
)

type StoreAPI interface {
	RecordForDay(ctx context.Context, employeeID string, day time.Time) (Record, error)
	Create(ctx context.Context, r Record, in CheckInInput) (Record, error)
	CompleteCheckout(ctx context.Context, recordID string, checkOut time.Time, totalHours float64, isEarly bool, earlyMinutes int, in CheckOutInput) (Record, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]Record, int, error)
	DayBoard(ctx context.Context, day time.Time) ([]DayEntry, error)
	Stats(ctx context.Context, f Filter) (Statistics, error)
}

// EmployeeProfile is the slice of an employee record the check-in flow
// needs. The employee package satisfies it so this package never
// imports it.
type EmployeeProfile struct {
	ID             string
	UserID         string
	FullName       string
	CheckInTime    string
	CheckOutTime   string
	WorkingDays    []int
	FaceRegistered bool
	IsActive       bool
}

type EmployeeDirectory interface {
	AttendanceProfile(ctx context.Context, userID string) (EmployeeProfile, error)
}

// HolidayCalendar answers whether a given instant falls on an active
// holiday.
type HolidayCalendar interface {
	ActiveOn(ctx context.Context, day time.Time) (string, bool, error)
}
