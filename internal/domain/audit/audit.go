package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

type Event struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actorId"`
	ActorName string          `json:"actorName,omitempty"`
	Action    string          `json:"action"`
	Module    string          `json:"module"`
	Details   json.RawMessage `json:"details,omitempty"`
	Severity  string          `json:"severity"`
	RequestID string          `json:"requestId,omitempty"`
	IP        string          `json:"ip,omitempty"`
	UserAgent string          `json:"userAgent,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Filter struct {
	Module   string
	ActorID  string
	Severity string
	From     time.Time
	To       time.Time
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

type Entry struct {
	ActorID   string
	Action    string
	Module    string
	Details   any
	Severity  string
	RequestID string
	IP        string
	UserAgent string
}

func (s *Service) Record(ctx context.Context, entry Entry) error {
	var details []byte
	if entry.Details != nil {
		payload, err := json.Marshal(entry.Details)
		if err != nil {
			return err
		}
		details = payload
	}
	severity := entry.Severity
	if severity == "" {
		severity = SeverityLow
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_user_id, action, module, details, severity, request_id, ip, user_agent)
    VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5, $6, $7, $8)
  `, entry.ActorID, entry.Action, entry.Module, details, severity, entry.RequestID, entry.IP, entry.UserAgent)
	return err
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, error) {
	query, args := buildBaseQuery(`
    SELECT a.id, COALESCE(a.actor_user_id::text, ''), COALESCE(u.full_name, ''), a.action, a.module,
           a.details, a.severity, COALESCE(a.request_id, ''), COALESCE(a.ip, ''), COALESCE(a.user_agent, ''), a.created_at
  `, filter)
	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	query += fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d", limitPos, offsetPos)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.ActorName, &evt.Action, &evt.Module, &evt.Details, &evt.Severity, &evt.RequestID, &evt.IP, &evt.UserAgent, &evt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events a LEFT JOIN users u ON a.actor_user_id = u.id WHERE 1=1"
	args := []any{}
	if filter.Module != "" {
		query += fmt.Sprintf(" AND a.module = $%d", len(args)+1)
		args = append(args, filter.Module)
	}
	if filter.ActorID != "" {
		query += fmt.Sprintf(" AND a.actor_user_id::text = $%d", len(args)+1)
		args = append(args, filter.ActorID)
	}
	if filter.Severity != "" {
		query += fmt.Sprintf(" AND a.severity = $%d", len(args)+1)
		args = append(args, filter.Severity)
	}
	if !filter.From.IsZero() {
		query += fmt.Sprintf(" AND a.created_at >= $%d", len(args)+1)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += fmt.Sprintf(" AND a.created_at <= $%d", len(args)+1)
		args = append(args, filter.To)
	}
	return query, args
}
