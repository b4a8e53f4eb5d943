package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("leave application not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const leaveColumns = `
  l.id, l.employee_id, u.full_name, e.employee_number, l.leave_type, l.start_date, l.end_date,
  l.total_days, COALESCE(l.reason, ''), l.status,
  COALESCE(approver.full_name, ''), l.approval_date, COALESCE(l.approval_notes, ''), l.created_at`

const leaveJoins = `
  FROM leaves l
  JOIN employees e ON e.id = l.employee_id
  JOIN users u ON u.id = e.user_id
  LEFT JOIN users approver ON approver.id = l.approved_by`

func scanLeave(row pgx.Row) (Leave, error) {
	var l Leave
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.EmployeeName, &l.EmployeeNumber, &l.LeaveType, &l.StartDate, &l.EndDate,
		&l.TotalDays, &l.Reason, &l.Status,
		&l.ApprovedBy, &l.ApprovalDate, &l.ApprovalNotes, &l.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Leave{}, ErrNotFound
	}
	return l, err
}

func (s *Store) Get(ctx context.Context, leaveID string) (Leave, error) {
	return scanLeave(s.DB.QueryRow(ctx,
		"SELECT"+leaveColumns+leaveJoins+" WHERE l.id = $1", leaveID))
}

// EmployeeUserID resolves the requesting user behind a leave row, used
// for the decision notification and the ownership check.
func (s *Store) EmployeeUserID(ctx context.Context, leaveID string) (string, string, error) {
	var employeeID, userID string
	err := s.DB.QueryRow(ctx, `
    SELECT l.employee_id, e.user_id
    FROM leaves l
    JOIN employees e ON e.id = l.employee_id
    WHERE l.id = $1
  `, leaveID).Scan(&employeeID, &userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return employeeID, userID, err
}

func (s *Store) List(ctx context.Context, f Filter, limit, offset int) ([]Leave, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if f.EmployeeID != "" {
		args = append(args, f.EmployeeID)
		where += fmt.Sprintf(" AND l.employee_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND l.status = $%d", len(args))
	}
	if f.LeaveType != "" {
		args = append(args, f.LeaveType)
		where += fmt.Sprintf(" AND l.leave_type = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+leaveJoins+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx,
		"SELECT"+leaveColumns+leaveJoins+where+
			fmt.Sprintf(" ORDER BY l.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (s *Store) Create(ctx context.Context, employeeID, leaveType string, start, end time.Time, totalDays int, reason string) (Leave, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leaves (employee_id, leave_type, start_date, end_date, total_days, reason)
    VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
    RETURNING id
  `, employeeID, leaveType, start, end, totalDays, reason).Scan(&id)
	if err != nil {
		return Leave{}, err
	}
	return s.Get(ctx, id)
}

// Decide flips a pending application to approved or rejected. The
// status guard in the WHERE clause makes a second decision a no-op.
func (s *Store) Decide(ctx context.Context, leaveID, status, approverID, notes string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leaves
    SET status = $1, approved_by = $2, approval_date = now(), approval_notes = NULLIF($3, ''), updated_at = now()
    WHERE id = $4 AND status = 'pending'
  `, status, approverID, notes, leaveID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) Cancel(ctx context.Context, leaveID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leaves
    SET status = 'cancelled', updated_at = now()
    WHERE id = $1 AND status = 'pending'
  `, leaveID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
