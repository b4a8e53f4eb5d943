package taskshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attendsuite/internal/domain/audit"
	"attendsuite/internal/domain/employee"
	"attendsuite/internal/domain/task"
	"attendsuite/internal/domain/user"
	"attendsuite/internal/transport/http/api"
	"attendsuite/internal/transport/http/middleware"
	"attendsuite/internal/transport/http/shared"
)

type Handler struct {
	Service *task.Service
	Audit   *audit.Service
}

func NewHandler(service *task.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/my-tasks", h.handleMyTasks)
		r.Get("/statistics", h.handleStatistics)
		r.Get("/{taskID}", h.handleGet)
		r.Put("/{taskID}", h.handleUpdate)
		r.Patch("/{taskID}/status", h.handleUpdateProgress)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleAdmin))
			r.Get("/", h.handleList)
			r.Post("/", h.handleCreate)
			r.Delete("/{taskID}", h.handleDelete)
		})
	})
}

type createTaskRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	AssignedTo     string   `json:"assignedTo"`
	DueDate        string   `json:"dueDate"`
	Priority       string   `json:"priority"`
	Category       string   `json:"category"`
	EstimatedHours float64  `json:"estimatedHours"`
	Tags           []string `json:"tags"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	var payload createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Required("assignedTo", payload.AssignedTo, "assignee is required")
	due, _ := v.Date("dueDate", payload.DueDate)
	if v.Reject(w, requestID) {
		return
	}

	created, err := h.Service.Create(r.Context(), task.CreateInput{
		Title:          payload.Title,
		Description:    payload.Description,
		AssignedTo:     payload.AssignedTo,
		AssignedBy:     u.UserID,
		DueDate:        due,
		Priority:       payload.Priority,
		Category:       payload.Category,
		EstimatedHours: payload.EstimatedHours,
		Tags:           payload.Tags,
	})
	switch {
	case errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "assignee_not_found", "assignee not found", requestID)
		return
	case errors.Is(err, task.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "invalid_task", err.Error(), requestID)
		return
	case err != nil:
		slog.Error("task create failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "task_create_failed", "failed to create task", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "task.create", map[string]string{"taskId": created.ID, "title": created.Title})
	api.Created(w, created, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	p := shared.ParsePagination(r, 10, 100)

	f := task.Filter{
		AssignedTo: q.Get("assignedTo"),
		Status:     q.Get("status"),
		Priority:   q.Get("priority"),
		Category:   q.Get("category"),
	}
	tasks, total, err := h.Service.List(r.Context(), f, p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_failed", "failed to list tasks", requestID)
		return
	}
	api.Success(w, listResponse(tasks, total, p), requestID)
}

func (h *Handler) handleMyTasks(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	p := shared.ParsePagination(r, 10, 100)

	tasks, total, err := h.Service.MyTasks(r.Context(), u.UserID, r.URL.Query().Get("status"), p.Limit, p.Offset())
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee profile not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_failed", "failed to list tasks", requestID)
		return
	}
	api.Success(w, listResponse(tasks, total, p), requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	t, err := h.Service.Get(r.Context(), chi.URLParam(r, "taskID"), u.UserID, u.Role == user.RoleAdmin)
	switch {
	case errors.Is(err, task.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", requestID)
		return
	case errors.Is(err, task.ErrNotAssignee):
		api.Fail(w, http.StatusForbidden, "not_assignee", "task is assigned to someone else", requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "task_failed", "failed to load task", requestID)
		return
	}
	api.Success(w, t, requestID)
}

type updateTaskRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	AssignedTo      *string  `json:"assignedTo"`
	DueDate         *string  `json:"dueDate"`
	Priority        *string  `json:"priority"`
	Status          *string  `json:"status"`
	Category        *string  `json:"category"`
	EstimatedHours  *float64 `json:"estimatedHours"`
	ActualHours     *float64 `json:"actualHours"`
	CompletionNotes *string  `json:"completionNotes"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	taskID := chi.URLParam(r, "taskID")

	var payload updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	in := task.UpdateInput{
		Title:           payload.Title,
		Description:     payload.Description,
		AssignedTo:      payload.AssignedTo,
		Priority:        payload.Priority,
		Status:          payload.Status,
		Category:        payload.Category,
		EstimatedHours:  payload.EstimatedHours,
		ActualHours:     payload.ActualHours,
		CompletionNotes: payload.CompletionNotes,
	}
	if payload.DueDate != nil {
		due, err := shared.ParseDate(*payload.DueDate)
		if err != nil || due.IsZero() {
			api.Fail(w, http.StatusBadRequest, "invalid_task", "invalid due date", requestID)
			return
		}
		in.DueDate = &due
	}

	updated, err := h.Service.Update(r.Context(), taskID, u.UserID, u.Role == user.RoleAdmin, in)
	switch {
	case errors.Is(err, task.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", requestID)
		return
	case errors.Is(err, task.ErrRestrictedField):
		api.Fail(w, http.StatusBadRequest, "restricted_fields", err.Error(), requestID)
		return
	case errors.Is(err, task.ErrNotAssignee):
		api.Fail(w, http.StatusForbidden, "not_assignee", "task is assigned to someone else", requestID)
		return
	case errors.Is(err, task.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "invalid_task", err.Error(), requestID)
		return
	case errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "assignee_not_found", "assignee not found", requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "task_failed", "failed to update task", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "task.update", map[string]string{"taskId": taskID})
	api.Success(w, updated, requestID)
}

type progressRequest struct {
	Status          string  `json:"status"`
	ActualHours     float64 `json:"actualHours"`
	CompletionNotes string  `json:"completionNotes"`
}

func (h *Handler) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	taskID := chi.URLParam(r, "taskID")

	var payload progressRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	updated, err := h.Service.UpdateProgress(r.Context(), taskID, u.UserID, u.Role == user.RoleAdmin, task.ProgressInput{
		Status:          payload.Status,
		ActualHours:     payload.ActualHours,
		CompletionNotes: payload.CompletionNotes,
	})
	switch {
	case errors.Is(err, task.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", requestID)
		return
	case errors.Is(err, task.ErrNotAssignee):
		api.Fail(w, http.StatusForbidden, "not_assignee", "task is assigned to someone else", requestID)
		return
	case errors.Is(err, task.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "invalid_task", err.Error(), requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "task_failed", "failed to update task", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "task.progress", map[string]string{"taskId": taskID, "status": payload.Status})
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	taskID := chi.URLParam(r, "taskID")

	err := h.Service.Delete(r.Context(), taskID)
	if errors.Is(err, task.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_failed", "failed to delete task", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "task.delete", map[string]string{"taskId": taskID})
	api.Success(w, map[string]string{"message": "task deleted"}, requestID)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	stats, err := h.Service.Statistics(r.Context(), u.UserID, u.Role == user.RoleAdmin)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee profile not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_failed", "failed to compute statistics", requestID)
		return
	}
	api.Success(w, stats, requestID)
}

func listResponse(tasks []task.Task, total int, p shared.Pagination) map[string]any {
	return map[string]any{
		"tasks": tasks,
		"count": len(tasks),
		"total": total,
		"page":  p.Page,
		"pages": shared.Pages(total, p.Limit),
	}
}

func (h *Handler) recordAudit(r *http.Request, actorID, action string, details any) {
	if err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:   actorID,
		Action:    action,
		Module:    "tasks",
		Details:   details,
		Severity:  audit.SeverityLow,
		RequestID: middleware.GetRequestID(r.Context()),
		IP:        shared.ClientIP(r),
		UserAgent: r.UserAgent(),
	}); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
