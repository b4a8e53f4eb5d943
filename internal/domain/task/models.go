package task

import "time"

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusOverdue    = "overdue"
)

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled, StatusOverdue:
		return true
	}
	return false
}

type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	AssignedTo      string     `json:"assignedTo"`
	AssigneeName    string     `json:"assigneeName,omitempty"`
	AssigneeNumber  string     `json:"assigneeNumber,omitempty"`
	AssignedBy      string     `json:"assignedBy"`
	AssignerName    string     `json:"assignerName,omitempty"`
	DueDate         time.Time  `json:"dueDate"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	Category        string     `json:"category,omitempty"`
	EstimatedHours  float64    `json:"estimatedHours,omitempty"`
	ActualHours     float64    `json:"actualHours,omitempty"`
	CompletionDate  *time.Time `json:"completionDate,omitempty"`
	CompletionNotes string     `json:"completionNotes,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type CreateInput struct {
	Title          string
	Description    string
	AssignedTo     string
	AssignedBy     string
	DueDate        time.Time
	Priority       string
	Category       string
	EstimatedHours float64
	Tags           []string
}

// ProgressInput is the assignee-side update: only status, hours and
// notes. Everything else stays admin-owned.
type ProgressInput struct {
	Status          string
	ActualHours     float64
	CompletionNotes string
}

// UpdateInput is the full edit payload. Nil fields are left unchanged.
type UpdateInput struct {
	Title           *string
	Description     *string
	AssignedTo      *string
	DueDate         *time.Time
	Priority        *string
	Status          *string
	Category        *string
	EstimatedHours  *float64
	ActualHours     *float64
	CompletionNotes *string
}

// ProgressOnly reports whether the update touches nothing beyond the
// assignee-editable fields: status, actual hours and completion notes.
func (in UpdateInput) ProgressOnly() bool {
	return in.Title == nil && in.Description == nil && in.AssignedTo == nil &&
		in.DueDate == nil && in.Priority == nil && in.Category == nil && in.EstimatedHours == nil
}

type Filter struct {
	AssignedTo string
	Status     string
	Priority   string
	Category   string
}

type Statistics struct {
	Total      int `json:"totalTasks"`
	Pending    int `json:"pendingTasks"`
	InProgress int `json:"inProgressTasks"`
	Completed  int `json:"completedTasks"`
	Overdue    int `json:"overdueTasks"`
}
