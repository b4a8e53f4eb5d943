package employee

import (
	"encoding/json"
	"time"
)

// WorkSchedule is the per-employee attendance policy. Times are wall-clock
// strings in HH:MM form and working days use time.Weekday numbering
// (Sunday = 0).
type WorkSchedule struct {
	CheckInTime  string `json:"checkInTime"`
	CheckOutTime string `json:"checkOutTime"`
	WorkingDays  []int  `json:"workingDays"`
}

type EmergencyContact struct {
	Name     string `json:"name,omitempty"`
	Relation string `json:"relation,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Employee is the API shape. Face descriptors are never part of it.
type Employee struct {
	ID             string           `json:"id"`
	UserID         string           `json:"userId"`
	EmployeeNumber string           `json:"employeeNumber"`
	FullName       string           `json:"fullName"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone,omitempty"`
	DepartmentID   string           `json:"departmentId"`
	DepartmentName string           `json:"departmentName,omitempty"`
	Position       string           `json:"position"`
	JoiningDate    time.Time        `json:"joiningDate"`
	Salary         float64          `json:"salary,omitempty"`
	Address        string           `json:"address,omitempty"`
	Emergency      EmergencyContact `json:"emergencyContact,omitzero"`
	Schedule       WorkSchedule     `json:"workSchedule"`
	FaceRegistered bool             `json:"faceRegistered"`
	FaceImages     []string         `json:"faceImages,omitempty"`
	IsActive       bool             `json:"isActive"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// CreateInput covers both the user account and the employee profile, the
// two are created together in one transaction.
type CreateInput struct {
	Email          string
	Password       string
	FullName       string
	Phone          string
	Role           string
	EmployeeNumber string
	DepartmentID   string
	Position       string
	JoiningDate    time.Time
	Salary         float64
	Address        string
	Emergency      EmergencyContact
	Schedule       WorkSchedule
}

// SelfUpdateInput is the employee-editable slice of the profile. Nil
// fields are left untouched; everything else stays admin-owned.
type SelfUpdateInput struct {
	Address   *string
	Emergency *EmergencyContact
}

func (in SelfUpdateInput) Empty() bool {
	return in.Address == nil && in.Emergency == nil
}

type UpdateInput struct {
	FullName     string
	Phone        string
	DepartmentID string
	Position     string
	Salary       float64
	Address      string
	Emergency    EmergencyContact
	Schedule     WorkSchedule
	IsActive     bool
}

// FaceEnrollment is the payload stored when an employee registers their
// face. Descriptors are opaque to the server, it stores and serves them
// for the client-side matcher.
type FaceEnrollment struct {
	Descriptors json.RawMessage `json:"descriptors"`
	Images      []string        `json:"images"`
}
