// Package dashboard aggregates cross-module counters for the landing
// views. Read-only, it owns no tables.
package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminStats struct {
	TotalEmployees   int `json:"totalEmployees"`
	TotalDepartments int `json:"totalDepartments"`
	PresentToday     int `json:"presentToday"`
	LateToday        int `json:"lateToday"`
	PendingTasks     int `json:"pendingTasks"`
	InProgressTasks  int `json:"inProgressTasks"`
	OverdueTasks     int `json:"overdueTasks"`
	PendingLeaves    int `json:"pendingLeaves"`
	OnLeaveToday     int `json:"onLeaveToday"`
}

type EmployeeStats struct {
	MonthAttendanceDays int     `json:"monthAttendanceDays"`
	MonthLateDays       int     `json:"monthLateDays"`
	MonthTotalHours     float64 `json:"monthTotalHours"`
	PendingTasks        int     `json:"pendingTasks"`
	InProgressTasks     int     `json:"inProgressTasks"`
	CompletedTasks      int     `json:"completedTasks"`
	PendingLeaves       int     `json:"pendingLeaves"`
	CheckedInToday      bool    `json:"checkedInToday"`
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) AdminStats(ctx context.Context, now time.Time) (AdminStats, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var st AdminStats
	err := s.DB.QueryRow(ctx, `
    SELECT
      (SELECT COUNT(1) FROM employees WHERE is_active),
      (SELECT COUNT(1) FROM departments WHERE is_active),
      (SELECT COUNT(1) FROM attendance WHERE day = $1),
      (SELECT COUNT(1) FROM attendance WHERE day = $1 AND is_late),
      (SELECT COUNT(1) FROM tasks WHERE status = 'pending'),
      (SELECT COUNT(1) FROM tasks WHERE status = 'in-progress'),
      (SELECT COUNT(1) FROM tasks WHERE status = 'overdue'),
      (SELECT COUNT(1) FROM leaves WHERE status = 'pending'),
      (SELECT COUNT(1) FROM leaves WHERE status = 'approved' AND start_date <= $1 AND end_date >= $1)
  `, today).Scan(
		&st.TotalEmployees, &st.TotalDepartments, &st.PresentToday, &st.LateToday,
		&st.PendingTasks, &st.InProgressTasks, &st.OverdueTasks,
		&st.PendingLeaves, &st.OnLeaveToday)
	return st, err
}

func (s *Store) EmployeeStats(ctx context.Context, userID string, now time.Time) (EmployeeStats, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var st EmployeeStats
	err := s.DB.QueryRow(ctx, `
    WITH me AS (SELECT id FROM employees WHERE user_id = $1)
    SELECT
      (SELECT COUNT(1) FROM attendance WHERE employee_id IN (SELECT id FROM me) AND day >= $2),
      (SELECT COUNT(1) FROM attendance WHERE employee_id IN (SELECT id FROM me) AND day >= $2 AND is_late),
      (SELECT COALESCE(SUM(total_hours), 0) FROM attendance WHERE employee_id IN (SELECT id FROM me) AND day >= $2),
      (SELECT COUNT(1) FROM tasks WHERE assigned_to IN (SELECT id FROM me) AND status = 'pending'),
      (SELECT COUNT(1) FROM tasks WHERE assigned_to IN (SELECT id FROM me) AND status = 'in-progress'),
      (SELECT COUNT(1) FROM tasks WHERE assigned_to IN (SELECT id FROM me) AND status = 'completed'),
      (SELECT COUNT(1) FROM leaves WHERE employee_id IN (SELECT id FROM me) AND status = 'pending'),
      (SELECT EXISTS (SELECT 1 FROM attendance WHERE employee_id IN (SELECT id FROM me) AND day = $3))
  `, userID, monthStart, today).Scan(
		&st.MonthAttendanceDays, &st.MonthLateDays, &st.MonthTotalHours,
		&st.PendingTasks, &st.InProgressTasks, &st.CompletedTasks,
		&st.PendingLeaves, &st.CheckedInToday)
	return st, err
}
