package holiday

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("holiday not found")

const (
	TypePublic   = "public"
	TypeOptional = "optional"
	TypeCompany  = "company"
)

type Holiday struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Filter struct {
	Year int
	Type string
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Holiday, int, error) {
	query := " FROM holidays WHERE is_active"
	args := []any{}
	if filter.Year > 0 {
		query += fmt.Sprintf(" AND date >= $%d AND date <= $%d", len(args)+1, len(args)+2)
		args = append(args, fmt.Sprintf("%d-01-01", filter.Year), fmt.Sprintf("%d-12-31", filter.Year))
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", len(args)+1)
		args = append(args, filter.Type)
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+query, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := "SELECT id, name, date, type, COALESCE(description, ''), is_active, created_at" + query
	listQuery += fmt.Sprintf(" ORDER BY date LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.Date, &h.Type, &h.Description, &h.IsActive, &h.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, h)
	}
	return out, total, rows.Err()
}

func (s *Store) Get(ctx context.Context, holidayID string) (Holiday, error) {
	var h Holiday
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, date, type, COALESCE(description, ''), is_active, created_at
    FROM holidays
    WHERE id = $1
  `, holidayID).Scan(&h.ID, &h.Name, &h.Date, &h.Type, &h.Description, &h.IsActive, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Holiday{}, ErrNotFound
	}
	return h, err
}

func (s *Store) Create(ctx context.Context, name string, date time.Time, htype, description string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (name, date, type, description)
    VALUES ($1,$2,$3,NULLIF($4, ''))
    RETURNING id
  `, name, date, htype, description).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, holidayID, name string, date time.Time, htype, description string, isActive bool) (Holiday, error) {
	var h Holiday
	err := s.DB.QueryRow(ctx, `
    UPDATE holidays
    SET name = $1, date = $2, type = $3, description = NULLIF($4, ''), is_active = $5, updated_at = now()
    WHERE id = $6
    RETURNING id, name, date, type, COALESCE(description, ''), is_active, created_at
  `, name, date, htype, description, isActive, holidayID).Scan(&h.ID, &h.Name, &h.Date, &h.Type, &h.Description, &h.IsActive, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Holiday{}, ErrNotFound
	}
	return h, err
}

func (s *Store) Delete(ctx context.Context, holidayID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM holidays WHERE id = $1", holidayID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ActiveOn reports the active holiday covering the given day, if any.
// The match window is [start-of-day, start-of-next-day).
func (s *Store) ActiveOn(ctx context.Context, day time.Time) (string, bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	var name string
	err := s.DB.QueryRow(ctx, `
    SELECT name
    FROM holidays
    WHERE is_active AND date >= $1 AND date < $2
    LIMIT 1
  `, start, end).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}
