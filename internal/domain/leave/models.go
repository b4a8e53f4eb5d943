package leave

import (
	"math"
	"time"
)

const (
	TypeCasual = "casual"
	TypeSick   = "sick"
	TypeEarned = "earned"
	TypeUnpaid = "unpaid"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

func ValidType(t string) bool {
	switch t {
	case TypeCasual, TypeSick, TypeEarned, TypeUnpaid:
		return true
	}
	return false
}

type Leave struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employeeId"`
	EmployeeName   string     `json:"employeeName,omitempty"`
	EmployeeNumber string     `json:"employeeNumber,omitempty"`
	LeaveType      string     `json:"leaveType"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        time.Time  `json:"endDate"`
	TotalDays      int        `json:"totalDays"`
	Reason         string     `json:"reason,omitempty"`
	Status         string     `json:"status"`
	ApprovedBy     string     `json:"approvedBy,omitempty"`
	ApprovalDate   *time.Time `json:"approvalDate,omitempty"`
	ApprovalNotes  string     `json:"approvalNotes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type Filter struct {
	EmployeeID string
	Status     string
	LeaveType  string
}

// TotalDays counts calendar days inclusive of both endpoints. A partial
// day rounds up.
func TotalDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours()/24)) + 1
}
