package notifications

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreAPI interface {
	Create(ctx context.Context, userID, ntype, category, title, message, link string) error
	List(ctx context.Context, userID string, onlyUnread bool, category string, limit, offset int) ([]Notification, error)
	Count(ctx context.Context, userID string, onlyUnread bool, category string) (int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, notificationID string) error
	UserEmail(ctx context.Context, userID string) (string, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, userID, ntype, category, title, message, link string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (user_id, type, category, title, message, link)
    VALUES ($1,$2,$3,$4,$5,NULLIF($6, ''))
  `, userID, ntype, category, title, message, link)
	return err
}

func (s *Store) List(ctx context.Context, userID string, onlyUnread bool, category string, limit, offset int) ([]Notification, error) {
	query, args := listQuery("SELECT id, user_id, title, message, type, category, is_read, COALESCE(link, ''), created_at", userID, onlyUnread, category)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Category, &n.IsRead, &n.Link, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, userID string, onlyUnread bool, category string) (int, error) {
	query, args := listQuery("SELECT COUNT(1)", userID, onlyUnread, category)
	var total int
	err := s.DB.QueryRow(ctx, query, args...).Scan(&total)
	return total, err
}

func (s *Store) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND NOT is_read", userID).Scan(&count)
	return count, err
}

func (s *Store) MarkRead(ctx context.Context, userID, notificationID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE notifications SET is_read = true WHERE user_id = $1 AND id = $2", userID, notificationID)
	return err
}

func (s *Store) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE notifications SET is_read = true WHERE user_id = $1 AND NOT is_read", userID)
	return err
}

func (s *Store) Delete(ctx context.Context, userID, notificationID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM notifications WHERE user_id = $1 AND id = $2", userID, notificationID)
	return err
}

func (s *Store) UserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, "SELECT email FROM users WHERE id = $1", userID).Scan(&email)
	return email, err
}

func listQuery(prefix, userID string, onlyUnread bool, category string) (string, []any) {
	query := prefix + " FROM notifications WHERE user_id = $1"
	args := []any{userID}
	if onlyUnread {
		query += " AND NOT is_read"
	}
	if category != "" {
		query += fmt.Sprintf(" AND category = $%d", len(args)+1)
		args = append(args, category)
	}
	return query, args
}
