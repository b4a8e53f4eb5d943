package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNoRecord         = errors.New("no attendance record for today")
	ErrAlreadyCheckedIn = errors.New("already checked in today")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const recordColumns = `
  a.id, a.employee_id, u.full_name, e.employee_number, a.day, a.check_in_time, a.check_out_time,
  a.break_minutes, a.total_hours, a.status, a.is_late, a.late_by_minutes,
  a.is_early_checkout, a.early_by_minutes,
  COALESCE(a.check_in_image_url, ''), COALESCE(a.check_in_confidence, 0),
  COALESCE(a.check_out_image_url, ''), COALESCE(a.check_out_confidence, 0),
  COALESCE(a.notes, '')`

const recordJoins = `
  FROM attendance a
  JOIN employees e ON e.id = a.employee_id
  JOIN users u ON u.id = e.user_id`

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.EmployeeName, &r.EmployeeNumber, &r.Day, &r.CheckInTime, &r.CheckOutTime,
		&r.BreakMinutes, &r.TotalHours, &r.Status, &r.IsLate, &r.LateByMinutes,
		&r.IsEarlyCheckout, &r.EarlyByMinutes,
		&r.CheckInImage, &r.CheckInScore,
		&r.CheckOutImage, &r.CheckOutScore,
		&r.Notes,
	)
	return r, err
}

func (s *Store) RecordForDay(ctx context.Context, employeeID string, day time.Time) (Record, error) {
	r, err := scanRecord(s.DB.QueryRow(ctx,
		"SELECT"+recordColumns+recordJoins+" WHERE a.employee_id = $1 AND a.day = $2",
		employeeID, toDay(day)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNoRecord
	}
	return r, err
}

// Create inserts the check-in row. The unique (employee_id, day) index
// is the backstop for concurrent check-ins, the loser surfaces as
// ErrAlreadyCheckedIn.
func (s *Store) Create(ctx context.Context, r Record, in CheckInInput) (Record, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance (employee_id, day, check_in_time, status, is_late, late_by_minutes,
                            check_in_image_url, check_in_confidence, check_in_latitude, check_in_longitude, notes)
    VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, 0), NULLIF($9, 0), NULLIF($10, 0), NULLIF($11, ''))
    RETURNING id
  `, r.EmployeeID, toDay(r.Day), r.CheckInTime, r.Status, r.IsLate, r.LateByMinutes,
		in.ImageURL, in.Confidence, in.Latitude, in.Longitude, in.Notes).Scan(&id)
	if isUniqueViolation(err) {
		return Record{}, ErrAlreadyCheckedIn
	}
	if err != nil {
		return Record{}, err
	}
	return s.get(ctx, id)
}

func (s *Store) CompleteCheckout(ctx context.Context, recordID string, checkOut time.Time, totalHours float64, isEarly bool, earlyMinutes int, in CheckOutInput) (Record, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance
    SET check_out_time = $1, total_hours = $2, is_early_checkout = $3, early_by_minutes = $4,
        break_minutes = $5, check_out_image_url = NULLIF($6, ''), check_out_confidence = NULLIF($7, 0),
        notes = COALESCE(NULLIF($8, ''), notes), updated_at = now()
    WHERE id = $9 AND check_out_time IS NULL
  `, checkOut, totalHours, isEarly, earlyMinutes, in.BreakMinutes, in.ImageURL, in.Confidence, in.Notes, recordID)
	if err != nil {
		return Record{}, err
	}
	// Zero rows means another request filled check_out_time between the
	// service's read and this update.
	if tag.RowsAffected() == 0 {
		return Record{}, ErrAlreadyCheckedOut
	}
	return s.get(ctx, recordID)
}

func (s *Store) get(ctx context.Context, recordID string) (Record, error) {
	return scanRecord(s.DB.QueryRow(ctx,
		"SELECT"+recordColumns+recordJoins+" WHERE a.id = $1", recordID))
}

func (s *Store) List(ctx context.Context, f Filter, limit, offset int) ([]Record, int, error) {
	where, args := buildFilter(f)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+recordJoins+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx,
		"SELECT"+recordColumns+recordJoins+where+
			fmt.Sprintf(" ORDER BY a.day DESC, a.check_in_time DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// DayBoard lists every active employee with their record for the day,
// present or not.
func (s *Store) DayBoard(ctx context.Context, day time.Time) ([]DayEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, u.full_name, e.employee_number, COALESCE(d.name, ''),
           a.id, a.check_in_time, a.check_out_time, a.break_minutes, a.total_hours,
           a.status, a.is_late, a.late_by_minutes, a.is_early_checkout, a.early_by_minutes
    FROM employees e
    JOIN users u ON u.id = e.user_id
    LEFT JOIN departments d ON d.id = e.department_id
    LEFT JOIN attendance a ON a.employee_id = e.id AND a.day = $1
    WHERE e.is_active
    ORDER BY e.employee_number
  `, toDay(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayEntry
	for rows.Next() {
		var entry DayEntry
		var recID *string
		var checkIn, checkOut *time.Time
		var breakMin, lateMin, earlyMin *int
		var totalHours *float64
		var status *string
		var isLate, isEarly *bool
		if err := rows.Scan(&entry.EmployeeID, &entry.EmployeeName, &entry.EmployeeNumber, &entry.Department,
			&recID, &checkIn, &checkOut, &breakMin, &totalHours,
			&status, &isLate, &lateMin, &isEarly, &earlyMin); err != nil {
			return nil, err
		}
		if recID != nil {
			entry.Record = &Record{
				ID:              *recID,
				EmployeeID:      entry.EmployeeID,
				Day:             toDay(day),
				CheckInTime:     *checkIn,
				CheckOutTime:    checkOut,
				BreakMinutes:    *breakMin,
				TotalHours:      *totalHours,
				Status:          *status,
				IsLate:          *isLate,
				LateByMinutes:   *lateMin,
				IsEarlyCheckout: *isEarly,
				EarlyByMinutes:  *earlyMin,
			}
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) Stats(ctx context.Context, f Filter) (Statistics, error) {
	where, args := buildFilter(f)
	var st Statistics
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE a.status IN ('present', 'late')),
           COUNT(1) FILTER (WHERE a.is_late),
           COUNT(1) FILTER (WHERE a.is_early_checkout),
           COALESCE(SUM(a.total_hours), 0),
           COALESCE(ROUND(AVG(a.total_hours), 2), 0)
  `+recordJoins+where, args...).Scan(
		&st.TotalDays, &st.PresentDays, &st.LateDays, &st.EarlyCheckouts, &st.TotalHours, &st.AverageHours)
	return st, err
}

func buildFilter(f Filter) (string, []any) {
	where := " WHERE 1=1"
	args := []any{}
	if f.EmployeeID != "" {
		args = append(args, f.EmployeeID)
		where += fmt.Sprintf(" AND a.employee_id = $%d", len(args))
	}
	if f.DepartmentID != "" {
		args = append(args, f.DepartmentID)
		where += fmt.Sprintf(" AND e.department_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND a.status = $%d", len(args))
	}
	if !f.From.IsZero() {
		args = append(args, toDay(f.From))
		where += fmt.Sprintf(" AND a.day >= $%d", len(args))
	}
	if !f.To.IsZero() {
		args = append(args, toDay(f.To))
		where += fmt.Sprintf(" AND a.day <= $%d", len(args))
	}
	return where, args
}

// toDay truncates an instant to its calendar day in its own location.
func toDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
