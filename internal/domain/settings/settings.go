package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound    = errors.New("setting not found")
	ErrNotEditable = errors.New("setting is not editable")
)

type Setting struct {
	ID          string          `json:"id"`
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	IsEditable  bool            `json:"isEditable"`
	UpdatedBy   string          `json:"updatedBy,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context, category string) ([]Setting, error) {
	query := `
    SELECT id, key, value, COALESCE(description, ''), category, is_editable, COALESCE(updated_by::text, ''), updated_at
    FROM settings
  `
	args := []any{}
	if category != "" {
		query += " WHERE category = $1"
		args = append(args, category)
	}
	query += " ORDER BY category, key"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		var setting Setting
		if err := rows.Scan(&setting.ID, &setting.Key, &setting.Value, &setting.Description, &setting.Category, &setting.IsEditable, &setting.UpdatedBy, &setting.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, setting)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, settingID string) (Setting, error) {
	var setting Setting
	err := s.DB.QueryRow(ctx, `
    SELECT id, key, value, COALESCE(description, ''), category, is_editable, COALESCE(updated_by::text, ''), updated_at
    FROM settings
    WHERE id = $1
  `, settingID).Scan(&setting.ID, &setting.Key, &setting.Value, &setting.Description, &setting.Category, &setting.IsEditable, &setting.UpdatedBy, &setting.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Setting{}, ErrNotFound
	}
	return setting, err
}

// Update rejects non-editable settings; the value is stored as raw JSON.
func (s *Store) Update(ctx context.Context, settingID, updatedBy string, value json.RawMessage) (Setting, error) {
	existing, err := s.Get(ctx, settingID)
	if err != nil {
		return Setting{}, err
	}
	if !existing.IsEditable {
		return Setting{}, ErrNotEditable
	}

	err = s.DB.QueryRow(ctx, `
    UPDATE settings
    SET value = $1, updated_by = $2, updated_at = now()
    WHERE id = $3
    RETURNING id, key, value, COALESCE(description, ''), category, is_editable, COALESCE(updated_by::text, ''), updated_at
  `, value, updatedBy, settingID).Scan(&existing.ID, &existing.Key, &existing.Value, &existing.Description, &existing.Category, &existing.IsEditable, &existing.UpdatedBy, &existing.UpdatedAt)
	return existing, err
}
