package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"attendsuite/internal/domain/employee"
	"attendsuite/internal/domain/notifications"
)

var (
	ErrNotAssignee     = errors.New("task is assigned to someone else")
	ErrInvalidInput    = errors.New("invalid task input")
	ErrRestrictedField = errors.New("employees can only update status, actual hours and completion notes")
)

type Service struct {
	store     *Store
	employees *employee.Store
	notifier  *notifications.Service
}

func NewService(store *Store, employees *employee.Store, notifier *notifications.Service) *Service {
	return &Service{store: store, employees: employees, notifier: notifier}
}

// Create assigns a task and notifies the assignee.
func (s *Service) Create(ctx context.Context, in CreateInput) (Task, error) {
	if in.Title == "" || in.AssignedTo == "" || in.DueDate.IsZero() {
		return Task{}, ErrInvalidInput
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !ValidPriority(in.Priority) {
		return Task{}, fmt.Errorf("%w: priority %q", ErrInvalidInput, in.Priority)
	}

	assignee, err := s.employees.Get(ctx, in.AssignedTo)
	if err != nil {
		return Task{}, err
	}

	created, err := s.store.Create(ctx, in)
	if err != nil {
		return Task{}, err
	}

	if err := s.notifier.Notify(ctx, assignee.UserID, notifications.TypeInfo, notifications.CategoryTask,
		"New task assigned",
		fmt.Sprintf("%q is due %s", created.Title, created.DueDate.Format("2006-01-02")),
		"/tasks/"+created.ID); err != nil {
		slog.Warn("task assignment notification failed", "taskId", created.ID, "err", err)
	}
	return created, nil
}

// List refreshes overdue flags first so stale open tasks never show as
// pending.
func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]Task, int, error) {
	if _, err := s.store.MarkOverdue(ctx); err != nil {
		slog.Warn("overdue sweep failed", "err", err)
	}
	return s.store.List(ctx, f, limit, offset)
}

func (s *Service) MyTasks(ctx context.Context, userID, status string, limit, offset int) ([]Task, int, error) {
	emp, err := s.employees.GetByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.List(ctx, Filter{AssignedTo: emp.ID, Status: status}, limit, offset)
}

// Get enforces visibility: admins see everything, employees only their
// own assignments.
func (s *Service) Get(ctx context.Context, taskID, userID string, isAdmin bool) (Task, error) {
	t, err := s.store.Get(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	if !isAdmin {
		emp, err := s.employees.GetByUserID(ctx, userID)
		if err != nil {
			return Task{}, err
		}
		if t.AssignedTo != emp.ID {
			return Task{}, ErrNotAssignee
		}
	}
	return t, nil
}

// Update is the full edit path. Admins can change any field; the
// assignee is limited to the progress fields and rejected outright if
// anything else is present in the payload.
func (s *Service) Update(ctx context.Context, taskID, userID string, isAdmin bool, in UpdateInput) (Task, error) {
	if in.Priority != nil && !ValidPriority(*in.Priority) {
		return Task{}, fmt.Errorf("%w: priority %q", ErrInvalidInput, *in.Priority)
	}
	if in.Status != nil && !ValidStatus(*in.Status) {
		return Task{}, fmt.Errorf("%w: status %q", ErrInvalidInput, *in.Status)
	}

	if !isAdmin {
		if !in.ProgressOnly() {
			return Task{}, ErrRestrictedField
		}
		emp, err := s.employees.GetByUserID(ctx, userID)
		if err != nil {
			return Task{}, err
		}
		assignedTo, _, err := s.store.AssigneeUserID(ctx, taskID)
		if err != nil {
			return Task{}, err
		}
		if assignedTo != emp.ID {
			return Task{}, ErrNotAssignee
		}
	}

	if in.AssignedTo != nil {
		if _, err := s.employees.Get(ctx, *in.AssignedTo); err != nil {
			return Task{}, err
		}
	}
	return s.store.Update(ctx, taskID, in)
}

// UpdateProgress lets the assignee move their own task through its
// lifecycle.
func (s *Service) UpdateProgress(ctx context.Context, taskID, userID string, isAdmin bool, in ProgressInput) (Task, error) {
	if !ValidStatus(in.Status) {
		return Task{}, fmt.Errorf("%w: status %q", ErrInvalidInput, in.Status)
	}
	if !isAdmin {
		emp, err := s.employees.GetByUserID(ctx, userID)
		if err != nil {
			return Task{}, err
		}
		assignedTo, _, err := s.store.AssigneeUserID(ctx, taskID)
		if err != nil {
			return Task{}, err
		}
		if assignedTo != emp.ID {
			return Task{}, ErrNotAssignee
		}
	}
	return s.store.UpdateProgress(ctx, taskID, in)
}

func (s *Service) Delete(ctx context.Context, taskID string) error {
	return s.store.Delete(ctx, taskID)
}

func (s *Service) Statistics(ctx context.Context, userID string, isAdmin bool) (Statistics, error) {
	assignedTo := ""
	if !isAdmin {
		emp, err := s.employees.GetByUserID(ctx, userID)
		if err != nil {
			return Statistics{}, err
		}
		assignedTo = emp.ID
	}
	return s.store.Stats(ctx, assignedTo)
}
