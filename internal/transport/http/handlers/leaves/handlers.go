package leaveshandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attendsuite/internal/domain/audit"
	"attendsuite/internal/domain/employee"
	"attendsuite/internal/domain/leave"
	"attendsuite/internal/domain/user"
	"attendsuite/internal/transport/http/api"
	"attendsuite/internal/transport/http/middleware"
	"attendsuite/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Audit   *audit.Service
}

func NewHandler(service *leave.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leaves", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", h.handleApply)
		r.Get("/my-leaves", h.handleMyLeaves)
		r.Delete("/{leaveID}", h.handleCancel)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleAdmin))
			r.Get("/", h.handleList)
			r.Put("/{leaveID}", h.handleDecide)
		})
	})
}

type applyRequest struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	var payload applyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("leaveType", payload.LeaveType, "leave type is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, requestID) {
		return
	}

	created, err := h.Service.Apply(r.Context(), u.UserID, payload.LeaveType, start, end, payload.Reason)
	switch {
	case errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee profile not found", requestID)
		return
	case errors.Is(err, leave.ErrInvalidType), errors.Is(err, leave.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_leave", err.Error(), requestID)
		return
	case err != nil:
		slog.Error("leave apply failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "leave_apply_failed", "failed to apply for leave", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "leave.apply", audit.SeverityLow,
		fmt.Sprintf("applied for %s leave (%d days)", created.LeaveType, created.TotalDays))
	api.Created(w, created, requestID)
}

func (h *Handler) handleMyLeaves(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	p := shared.ParsePagination(r, 10, 100)

	leaves, total, err := h.Service.MyLeaves(r.Context(), u.UserID, r.URL.Query().Get("status"), p.Limit, p.Offset())
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee profile not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_failed", "failed to list leaves", requestID)
		return
	}
	api.Success(w, listResponse(leaves, total, p), requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	p := shared.ParsePagination(r, 10, 100)

	f := leave.Filter{
		EmployeeID: q.Get("employeeId"),
		Status:     q.Get("status"),
		LeaveType:  q.Get("leaveType"),
	}
	leaves, total, err := h.Service.List(r.Context(), f, p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_failed", "failed to list leaves", requestID)
		return
	}
	api.Success(w, listResponse(leaves, total, p), requestID)
}

type decideRequest struct {
	Status        string `json:"status"`
	ApprovalNotes string `json:"approvalNotes"`
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	leaveID := chi.URLParam(r, "leaveID")

	var payload decideRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	decided, err := h.Service.Decide(r.Context(), leaveID, payload.Status, u.UserID, payload.ApprovalNotes)
	switch {
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "leave_not_found", "leave application not found", requestID)
		return
	case errors.Is(err, leave.ErrAlreadyProcessed):
		api.Fail(w, http.StatusBadRequest, "already_processed", "leave has already been processed", requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusBadRequest, "leave_decision_failed", err.Error(), requestID)
		return
	}

	h.recordAudit(r, u.UserID, "leave."+payload.Status, audit.SeverityMedium,
		fmt.Sprintf("%s leave application %s", payload.Status, leaveID))
	api.Success(w, decided, requestID)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	leaveID := chi.URLParam(r, "leaveID")

	err := h.Service.Cancel(r.Context(), u.UserID, leaveID)
	switch {
	case errors.Is(err, leave.ErrNotFound), errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "leave_not_found", "leave application not found", requestID)
		return
	case errors.Is(err, leave.ErrNotOwner):
		api.Fail(w, http.StatusForbidden, "not_owner", "not authorized to cancel this leave", requestID)
		return
	case errors.Is(err, leave.ErrAlreadyProcessed):
		api.Fail(w, http.StatusBadRequest, "already_processed", "can only cancel pending leave applications", requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "leave_cancel_failed", "failed to cancel leave", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "leave.cancel", audit.SeverityLow, "cancelled leave application")
	api.Success(w, map[string]string{"message": "leave cancelled"}, requestID)
}

func listResponse(leaves []leave.Leave, total int, p shared.Pagination) map[string]any {
	return map[string]any{
		"leaves": leaves,
		"count":  len(leaves),
		"total":  total,
		"page":   p.Page,
		"pages":  shared.Pages(total, p.Limit),
	}
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, severity, details string) {
	if err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:   actorID,
		Action:    action,
		Module:    "leave",
		Details:   map[string]string{"summary": details},
		Severity:  severity,
		RequestID: middleware.GetRequestID(r.Context()),
		IP:        shared.ClientIP(r),
		UserAgent: r.UserAgent(),
	}); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
