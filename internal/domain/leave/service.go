package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"attendsuite/internal/domain/employee"
	"attendsuite/internal/domain/notifications"
	"attendsuite/internal/domain/user"
)

var (
	ErrInvalidRange     = errors.New("invalid date range")
	ErrInvalidType      = errors.New("unknown leave type")
	ErrNotOwner         = errors.New("not authorized for this leave")
	ErrAlreadyProcessed = errors.New("leave has already been processed")
)

type Service struct {
	store     *Store
	employees *employee.Store
	users     *user.Store
	notifier  *notifications.Service
}

func NewService(store *Store, employees *employee.Store, users *user.Store, notifier *notifications.Service) *Service {
	return &Service{store: store, employees: employees, users: users, notifier: notifier}
}

// Apply files a leave request for the calling user and pings every
// admin about it.
func (s *Service) Apply(ctx context.Context, userID, leaveType string, start, end time.Time, reason string) (Leave, error) {
	if !ValidType(leaveType) {
		return Leave{}, ErrInvalidType
	}
	totalDays := TotalDays(start, end)
	if totalDays < 1 {
		return Leave{}, ErrInvalidRange
	}

	emp, err := s.employees.GetByUserID(ctx, userID)
	if err != nil {
		return Leave{}, err
	}

	created, err := s.store.Create(ctx, emp.ID, leaveType, start, end, totalDays, reason)
	if err != nil {
		return Leave{}, err
	}

	s.notifyAdmins(ctx, created, emp.FullName)
	return created, nil
}

func (s *Service) MyLeaves(ctx context.Context, userID, status string, limit, offset int) ([]Leave, int, error) {
	emp, err := s.employees.GetByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.store.List(ctx, Filter{EmployeeID: emp.ID, Status: status}, limit, offset)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]Leave, int, error) {
	return s.store.List(ctx, f, limit, offset)
}

func (s *Service) Get(ctx context.Context, leaveID string) (Leave, error) {
	return s.store.Get(ctx, leaveID)
}

// Decide approves or rejects a pending application and notifies the
// requester.
func (s *Service) Decide(ctx context.Context, leaveID, status, approverID, notes string) (Leave, error) {
	if status != StatusApproved && status != StatusRejected {
		return Leave{}, fmt.Errorf("status must be %q or %q", StatusApproved, StatusRejected)
	}

	_, requesterUserID, err := s.store.EmployeeUserID(ctx, leaveID)
	if err != nil {
		return Leave{}, err
	}

	decided, err := s.store.Decide(ctx, leaveID, status, approverID, notes)
	if err != nil {
		return Leave{}, err
	}
	if !decided {
		return Leave{}, ErrAlreadyProcessed
	}

	ntype := notifications.TypeSuccess
	if status == StatusRejected {
		ntype = notifications.TypeWarning
	}
	if err := s.notifier.Notify(ctx, requesterUserID, ntype, notifications.CategoryLeave,
		"Leave "+status, "Your leave application has been "+status, "/leaves/"+leaveID); err != nil {
		slog.Warn("leave decision notification failed", "leaveId", leaveID, "err", err)
	}

	return s.store.Get(ctx, leaveID)
}

// Cancel withdraws the caller's own pending application.
func (s *Service) Cancel(ctx context.Context, userID, leaveID string) error {
	emp, err := s.employees.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	ownerEmployeeID, _, err := s.store.EmployeeUserID(ctx, leaveID)
	if err != nil {
		return err
	}
	if ownerEmployeeID != emp.ID {
		return ErrNotOwner
	}

	cancelled, err := s.store.Cancel(ctx, leaveID)
	if err != nil {
		return err
	}
	if !cancelled {
		return ErrAlreadyProcessed
	}
	return nil
}

func (s *Service) notifyAdmins(ctx context.Context, l Leave, employeeName string) {
	adminIDs, err := s.users.AdminIDs(ctx)
	if err != nil {
		slog.Warn("admin lookup for leave notification failed", "err", err)
		return
	}
	for _, adminID := range adminIDs {
		if err := s.notifier.Notify(ctx, adminID, notifications.TypeInfo, notifications.CategoryLeave,
			"New leave request",
			fmt.Sprintf("%s applied for %s leave (%d days)", employeeName, l.LeaveType, l.TotalDays),
			"/admin/leaves/"+l.ID); err != nil {
			slog.Warn("leave request notification failed", "leaveId", l.ID, "err", err)
		}
	}
}
