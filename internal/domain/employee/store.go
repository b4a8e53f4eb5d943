package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"attendsuite/internal/domain/attendance"
)

var (
	ErrNotFound   = errors.New("employee not found")
	ErrDuplicate  = errors.New("employee number or email already exists")
	ErrNoFaceData = errors.New("no face data registered")
)

type Filter struct {
	DepartmentID string
	Search       string
	ActiveOnly   bool
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
  e.id, e.user_id, e.employee_number, u.full_name, u.email, COALESCE(u.phone, ''),
  e.department_id, COALESCE(d.name, ''), e.position, e.joining_date, COALESCE(e.salary, 0),
  COALESCE(e.address, ''), COALESCE(e.emergency_name, ''), COALESCE(e.emergency_relation, ''), COALESCE(e.emergency_phone, ''),
  e.check_in_time, e.check_out_time, e.working_days,
  e.face_registered, e.face_images, e.is_active, e.created_at`

const employeeJoins = `
  FROM employees e
  JOIN users u ON u.id = e.user_id
  LEFT JOIN departments d ON d.id = e.department_id`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.UserID, &e.EmployeeNumber, &e.FullName, &e.Email, &e.Phone,
		&e.DepartmentID, &e.DepartmentName, &e.Position, &e.JoiningDate, &e.Salary,
		&e.Address, &e.Emergency.Name, &e.Emergency.Relation, &e.Emergency.Phone,
		&e.Schedule.CheckInTime, &e.Schedule.CheckOutTime, &e.Schedule.WorkingDays,
		&e.FaceRegistered, &e.FaceImages, &e.IsActive, &e.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Store) Get(ctx context.Context, employeeID string) (Employee, error) {
	return scanEmployee(s.DB.QueryRow(ctx,
		"SELECT"+employeeColumns+employeeJoins+" WHERE e.id = $1", employeeID))
}

func (s *Store) GetByUserID(ctx context.Context, userID string) (Employee, error) {
	return scanEmployee(s.DB.QueryRow(ctx,
		"SELECT"+employeeColumns+employeeJoins+" WHERE e.user_id = $1", userID))
}

func (s *Store) List(ctx context.Context, f Filter, limit, offset int) ([]Employee, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if f.DepartmentID != "" {
		args = append(args, f.DepartmentID)
		where += fmt.Sprintf(" AND e.department_id = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(" AND (u.full_name ILIKE $%d OR e.employee_number ILIKE $%d OR u.email ILIKE $%d)", len(args), len(args), len(args))
	}
	if f.ActiveOnly {
		where += " AND e.is_active"
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+employeeJoins+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx,
		"SELECT"+employeeColumns+employeeJoins+where+
			fmt.Sprintf(" ORDER BY e.employee_number LIMIT $%d OFFSET $%d", len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// Create inserts the user account and the employee profile together.
// passwordHash arrives already bcrypt-hashed.
func (s *Store) Create(ctx context.Context, in CreateInput, passwordHash string) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var userID string
	err = tx.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, full_name, phone, role)
    VALUES (lower($1), $2, $3, NULLIF($4, ''), $5)
    RETURNING id
  `, in.Email, passwordHash, in.FullName, in.Phone, in.Role).Scan(&userID)
	if isUniqueViolation(err) {
		return "", ErrDuplicate
	}
	if err != nil {
		return "", err
	}

	var employeeID string
	err = tx.QueryRow(ctx, `
    INSERT INTO employees (user_id, employee_number, department_id, position, joining_date, salary,
                           address, emergency_name, emergency_relation, emergency_phone,
                           check_in_time, check_out_time, working_days)
    VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11, $12, $13)
    RETURNING id
  `, userID, in.EmployeeNumber, in.DepartmentID, in.Position, in.JoiningDate, in.Salary,
		in.Address, in.Emergency.Name, in.Emergency.Relation, in.Emergency.Phone,
		in.Schedule.CheckInTime, in.Schedule.CheckOutTime, in.Schedule.WorkingDays).Scan(&employeeID)
	if isUniqueViolation(err) {
		return "", ErrDuplicate
	}
	if err != nil {
		return "", err
	}

	return employeeID, tx.Commit(ctx)
}

func (s *Store) Update(ctx context.Context, employeeID string, in UpdateInput) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE employees
    SET department_id = $1, position = $2, salary = $3, address = NULLIF($4, ''),
        emergency_name = NULLIF($5, ''), emergency_relation = NULLIF($6, ''), emergency_phone = NULLIF($7, ''),
        check_in_time = $8, check_out_time = $9, working_days = $10, is_active = $11, updated_at = now()
    WHERE id = $12
  `, in.DepartmentID, in.Position, in.Salary, in.Address,
		in.Emergency.Name, in.Emergency.Relation, in.Emergency.Phone,
		in.Schedule.CheckInTime, in.Schedule.CheckOutTime, in.Schedule.WorkingDays, in.IsActive, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx, `
    UPDATE users
    SET full_name = $1, phone = NULLIF($2, ''), status = CASE WHEN $3 THEN 'active' ELSE 'inactive' END, updated_at = now()
    WHERE id = (SELECT user_id FROM employees WHERE id = $4)
  `, in.FullName, in.Phone, in.IsActive, employeeID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateSelf applies the employee-editable profile fields for the row
// owned by userID, skipping anything the caller left unset.
func (s *Store) UpdateSelf(ctx context.Context, userID string, in SelfUpdateInput) error {
	sets := []string{"updated_at = now()"}
	args := []any{userID}
	if in.Address != nil {
		args = append(args, *in.Address)
		sets = append(sets, fmt.Sprintf("address = NULLIF($%d, '')", len(args)))
	}
	if in.Emergency != nil {
		args = append(args, in.Emergency.Name, in.Emergency.Relation, in.Emergency.Phone)
		sets = append(sets, fmt.Sprintf(
			"emergency_name = NULLIF($%d, ''), emergency_relation = NULLIF($%d, ''), emergency_phone = NULLIF($%d, '')",
			len(args)-2, len(args)-1, len(args)))
	}

	tag, err := s.DB.Exec(ctx,
		"UPDATE employees SET "+strings.Join(sets, ", ")+" WHERE user_id = $1", args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate keeps the row for attendance history instead of deleting it.
func (s *Store) Deactivate(ctx context.Context, employeeID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, "UPDATE employees SET is_active = false, updated_at = now() WHERE id = $1", employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx,
		"UPDATE users SET status = 'inactive', updated_at = now() WHERE id = (SELECT user_id FROM employees WHERE id = $1)",
		employeeID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SaveFaceData stores the encrypted descriptor blob and flips the
// registration flag the check-in gate looks at.
func (s *Store) SaveFaceData(ctx context.Context, employeeID string, encrypted []byte, images []string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET face_descriptors_enc = $1, face_descriptors = NULL, face_images = $2,
        face_registered = true, face_updated_at = now(), updated_at = now()
    WHERE id = $3
  `, encrypted, images, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) FaceData(ctx context.Context, employeeID string) ([]byte, error) {
	var registered bool
	var encrypted []byte
	err := s.DB.QueryRow(ctx,
		"SELECT face_registered, face_descriptors_enc FROM employees WHERE id = $1",
		employeeID).Scan(&registered, &encrypted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !registered || len(encrypted) == 0 {
		return nil, ErrNoFaceData
	}
	return encrypted, nil
}

func (s *Store) ClearFaceData(ctx context.Context, employeeID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET face_descriptors_enc = NULL, face_descriptors = NULL, face_images = '{}',
        face_registered = false, face_updated_at = now(), updated_at = now()
    WHERE id = $1
  `, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AttendanceProfile satisfies the attendance package's directory
// interface with just the fields its gatekeeping needs.
func (s *Store) AttendanceProfile(ctx context.Context, userID string) (attendance.EmployeeProfile, error) {
	var p attendance.EmployeeProfile
	err := s.DB.QueryRow(ctx, `
    SELECT e.id, e.user_id, u.full_name, e.check_in_time, e.check_out_time, e.working_days, e.face_registered, e.is_active
    FROM employees e
    JOIN users u ON u.id = e.user_id
    WHERE e.user_id = $1
  `, userID).Scan(&p.ID, &p.UserID, &p.FullName, &p.CheckInTime, &p.CheckOutTime, &p.WorkingDays, &p.FaceRegistered, &p.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.EmployeeProfile{}, ErrNotFound
	}
	return p, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
