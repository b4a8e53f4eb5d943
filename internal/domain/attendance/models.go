package attendance

import "time"

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusHalfDay = "half-day"
	StatusOnLeave = "on-leave"
	StatusHoliday = "holiday"
)

// Record is one employee-day of attendance. Lateness fields are frozen
// at check-in, checkout fields at check-out.
type Record struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employeeId"`
	EmployeeName    string     `json:"employeeName,omitempty"`
	EmployeeNumber  string     `json:"employeeNumber,omitempty"`
	Day             time.Time  `json:"date"`
	CheckInTime     time.Time  `json:"checkInTime"`
	CheckOutTime    *time.Time `json:"checkOutTime,omitempty"`
	BreakMinutes    int        `json:"breakMinutes"`
	TotalHours      float64    `json:"totalHours"`
	Status          string     `json:"status"`
	IsLate          bool       `json:"isLate"`
	LateByMinutes   int        `json:"lateByMinutes"`
	IsEarlyCheckout bool       `json:"isEarlyCheckout"`
	EarlyByMinutes  int        `json:"earlyByMinutes"`
	CheckInImage    string     `json:"checkInImageUrl,omitempty"`
	CheckInScore    float64    `json:"checkInConfidence,omitempty"`
	CheckOutImage   string     `json:"checkOutImageUrl,omitempty"`
	CheckOutScore   float64    `json:"checkOutConfidence,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// CheckInInput carries what the capture client observed. The confidence
// score comes from the client-side face matcher, the server only stores
// it.
type CheckInInput struct {
	ImageURL   string
	Confidence float64
	Latitude   float64
	Longitude  float64
	Notes      string
}

type CheckOutInput struct {
	ImageURL     string
	Confidence   float64
	BreakMinutes int
	Notes        string
}

type Filter struct {
	EmployeeID   string
	DepartmentID string
	Status       string
	From         time.Time
	To           time.Time
}

// Statistics aggregates a date range for the admin view.
type Statistics struct {
	TotalDays      int     `json:"totalDays"`
	PresentDays    int     `json:"presentDays"`
	LateDays       int     `json:"lateDays"`
	EarlyCheckouts int     `json:"earlyCheckouts"`
	TotalHours     float64 `json:"totalHours"`
	AverageHours   float64 `json:"averageHours"`
}

// DayEntry is one row of the admin "today" board: every active employee
// with or without a record yet.
type DayEntry struct {
	EmployeeID     string  `json:"employeeId"`
	EmployeeName   string  `json:"employeeName"`
	EmployeeNumber string  `json:"employeeNumber"`
	Department     string  `json:"department,omitempty"`
	Record         *Record `json:"record,omitempty"`
}
