package department

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("department not found")
	ErrCodeTaken     = errors.New("department code already exists")
	ErrHasEmployees  = errors.New("department has assigned employees")
)

type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	ManagerID   string    `json:"managerId,omitempty"`
	IsActive    bool      `json:"isActive"`
	Employees   int       `json:"employeeCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.name, d.code, COALESCE(d.description, ''), COALESCE(d.manager_id::text, ''), d.is_active,
           (SELECT COUNT(1) FROM employees e WHERE e.department_id = d.id AND e.is_active), d.created_at
    FROM departments d
    ORDER BY d.name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.ManagerID, &d.IsActive, &d.Employees, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, departmentID string) (Department, error) {
	var d Department
	err := s.DB.QueryRow(ctx, `
    SELECT d.id, d.name, d.code, COALESCE(d.description, ''), COALESCE(d.manager_id::text, ''), d.is_active,
           (SELECT COUNT(1) FROM employees e WHERE e.department_id = d.id AND e.is_active), d.created_at
    FROM departments d
    WHERE d.id = $1
  `, departmentID).Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.ManagerID, &d.IsActive, &d.Employees, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, ErrNotFound
	}
	return d, err
}

func (s *Store) Exists(ctx context.Context, departmentID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments WHERE id = $1", departmentID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) Create(ctx context.Context, name, code, description, managerID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, code, description, manager_id)
    VALUES ($1, upper($2), NULLIF($3, ''), NULLIF($4, '')::uuid)
    RETURNING id
  `, name, strings.TrimSpace(code), description, managerID).Scan(&id)
	if isUniqueViolation(err) {
		return "", ErrCodeTaken
	}
	return id, err
}

func (s *Store) Update(ctx context.Context, departmentID, name, code, description, managerID string, isActive bool) (Department, error) {
	_, err := s.DB.Exec(ctx, `
    UPDATE departments
    SET name = $1, code = upper($2), description = NULLIF($3, ''), manager_id = NULLIF($4, '')::uuid, is_active = $5, updated_at = now()
    WHERE id = $6
  `, name, strings.TrimSpace(code), description, managerID, isActive, departmentID)
	if isUniqueViolation(err) {
		return Department{}, ErrCodeTaken
	}
	if err != nil {
		return Department{}, err
	}
	return s.Get(ctx, departmentID)
}

func (s *Store) Delete(ctx context.Context, departmentID string) error {
	var employees int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE department_id = $1", departmentID).Scan(&employees); err != nil {
		return err
	}
	if employees > 0 {
		return ErrHasEmployees
	}
	tag, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE id = $1", departmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
