package notifications

const (
	TypeInfo     = "info"
	TypeWarning  = "warning"
	TypeError    = "error"
	TypeSuccess  = "success"
	TypeReminder = "reminder"
)

const (
	CategoryAttendance   = "attendance"
	CategoryTask         = "task"
	CategoryLeave        = "leave"
	CategorySystem       = "system"
	CategoryAnnouncement = "announcement"
)
