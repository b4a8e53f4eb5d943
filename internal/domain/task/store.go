package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("task not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const taskColumns = `
  t.id, t.title, COALESCE(t.description, ''), t.assigned_to, u.full_name, e.employee_number,
  t.assigned_by, COALESCE(assigner.full_name, ''), t.due_date, t.priority, t.status,
  COALESCE(t.category, ''), COALESCE(t.estimated_hours, 0), COALESCE(t.actual_hours, 0),
  t.completion_date, COALESCE(t.completion_notes, ''), t.tags, t.created_at`

const taskJoins = `
  FROM tasks t
  JOIN employees e ON e.id = t.assigned_to
  JOIN users u ON u.id = e.user_id
  LEFT JOIN users assigner ON assigner.id = t.assigned_by`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.AssignedTo, &t.AssigneeName, &t.AssigneeNumber,
		&t.AssignedBy, &t.AssignerName, &t.DueDate, &t.Priority, &t.Status,
		&t.Category, &t.EstimatedHours, &t.ActualHours,
		&t.CompletionDate, &t.CompletionNotes, &t.Tags, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (s *Store) Get(ctx context.Context, taskID string) (Task, error) {
	return scanTask(s.DB.QueryRow(ctx, "SELECT"+taskColumns+taskJoins+" WHERE t.id = $1", taskID))
}

func (s *Store) List(ctx context.Context, f Filter, limit, offset int) ([]Task, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if f.AssignedTo != "" {
		args = append(args, f.AssignedTo)
		where += fmt.Sprintf(" AND t.assigned_to = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND t.status = $%d", len(args))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		where += fmt.Sprintf(" AND t.priority = $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where += fmt.Sprintf(" AND t.category = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+taskJoins+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx,
		"SELECT"+taskColumns+taskJoins+where+
			fmt.Sprintf(" ORDER BY t.due_date, t.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (s *Store) Create(ctx context.Context, in CreateInput) (Task, error) {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO tasks (title, description, assigned_to, assigned_by, due_date, priority, category, estimated_hours, tags)
    VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, 0), $9)
    RETURNING id
  `, in.Title, in.Description, in.AssignedTo, in.AssignedBy, in.DueDate, in.Priority, in.Category, in.EstimatedHours, tags).Scan(&id)
	if err != nil {
		return Task{}, err
	}
	return s.Get(ctx, id)
}

// Update applies only the fields the caller set. A status change to
// completed stamps the completion date.
func (s *Store) Update(ctx context.Context, taskID string, in UpdateInput) (Task, error) {
	sets := []string{"updated_at = now()"}
	args := []any{taskID}
	set := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if in.Title != nil {
		set("title = $%d", *in.Title)
	}
	if in.Description != nil {
		set("description = NULLIF($%d, '')", *in.Description)
	}
	if in.AssignedTo != nil {
		set("assigned_to = $%d", *in.AssignedTo)
	}
	if in.DueDate != nil {
		set("due_date = $%d", *in.DueDate)
	}
	if in.Priority != nil {
		set("priority = $%d", *in.Priority)
	}
	if in.Status != nil {
		set("status = $%d", *in.Status)
		sets = append(sets, fmt.Sprintf(
			"completion_date = CASE WHEN $%d = 'completed' THEN now() ELSE completion_date END", len(args)))
	}
	if in.Category != nil {
		set("category = NULLIF($%d, '')", *in.Category)
	}
	if in.EstimatedHours != nil {
		set("estimated_hours = NULLIF($%d::numeric, 0)", *in.EstimatedHours)
	}
	if in.ActualHours != nil {
		set("actual_hours = $%d", *in.ActualHours)
	}
	if in.CompletionNotes != nil {
		set("completion_notes = NULLIF($%d, '')", *in.CompletionNotes)
	}

	tag, err := s.DB.Exec(ctx,
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = $1", args...)
	if err != nil {
		return Task{}, err
	}
	if tag.RowsAffected() == 0 {
		return Task{}, ErrNotFound
	}
	return s.Get(ctx, taskID)
}

// UpdateProgress applies the assignee-editable fields. Completion date
// is stamped when the status lands on completed.
func (s *Store) UpdateProgress(ctx context.Context, taskID string, in ProgressInput) (Task, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE tasks
    SET status = $1,
        actual_hours = COALESCE(NULLIF($2::numeric, 0), actual_hours),
        completion_notes = COALESCE(NULLIF($3, ''), completion_notes),
        completion_date = CASE WHEN $1 = 'completed' THEN now() ELSE completion_date END,
        updated_at = now()
    WHERE id = $4
  `, in.Status, in.ActualHours, in.CompletionNotes, taskID)
	if err != nil {
		return Task{}, err
	}
	if tag.RowsAffected() == 0 {
		return Task{}, ErrNotFound
	}
	return s.Get(ctx, taskID)
}

func (s *Store) Delete(ctx context.Context, taskID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM tasks WHERE id = $1", taskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkOverdue flips past-due open tasks, called lazily on list reads
// rather than from a scheduler.
func (s *Store) MarkOverdue(ctx context.Context) (int, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE tasks
    SET status = 'overdue', updated_at = now()
    WHERE due_date < CURRENT_DATE AND status IN ('pending', 'in-progress')
  `)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) Stats(ctx context.Context, assignedTo string) (Statistics, error) {
	where := ""
	args := []any{}
	if assignedTo != "" {
		where = " WHERE assigned_to = $1"
		args = append(args, assignedTo)
	}
	var st Statistics
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE status = 'pending'),
           COUNT(1) FILTER (WHERE status = 'in-progress'),
           COUNT(1) FILTER (WHERE status = 'completed'),
           COUNT(1) FILTER (WHERE status = 'overdue')
    FROM tasks
  `+where, args...).Scan(&st.Total, &st.Pending, &st.InProgress, &st.Completed, &st.Overdue)
	return st, err
}

// AssigneeUserID resolves the user behind a task's assignee for
// ownership checks and notifications.
func (s *Store) AssigneeUserID(ctx context.Context, taskID string) (string, string, error) {
	var employeeID, userID string
	err := s.DB.QueryRow(ctx, `
    SELECT t.assigned_to, e.user_id
    FROM tasks t
    JOIN employees e ON e.id = t.assigned_to
    WHERE t.id = $1
  `, taskID).Scan(&employeeID, &userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return employeeID, userID, err
}
