package notifications

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer, from string) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: from}
}

// Notify persists the notification and best-effort emails the recipient.
// Email failures are logged, never surfaced to the triggering request.
func (s *Service) Notify(ctx context.Context, userID, ntype, category, title, message, link string) error {
	if err := s.store.Create(ctx, userID, ntype, category, title, message, link); err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}
	email, err := s.store.UserEmail(ctx, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, email, title, message); err != nil {
		slog.Warn("notification email send failed", "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID string, onlyUnread bool, category string, limit, offset int) (ListResult, error) {
	items, err := s.store.List(ctx, userID, onlyUnread, category, limit, offset)
	if err != nil {
		return ListResult{}, err
	}
	total, err := s.store.Count(ctx, userID, onlyUnread, category)
	if err != nil {
		return ListResult{}, err
	}
	unread, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total, UnreadCount: unread}, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, notificationID string) error {
	return s.store.Delete(ctx, userID, notificationID)
}
