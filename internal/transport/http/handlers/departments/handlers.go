package departmentshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attendsuite/internal/domain/audit"
	"attendsuite/internal/domain/department"
	"attendsuite/internal/domain/user"
	"attendsuite/internal/transport/http/api"
	"attendsuite/internal/transport/http/middleware"
	"attendsuite/internal/transport/http/shared"
)

type Handler struct {
	Store *department.Store
	Audit *audit.Service
}

func NewHandler(store *department.Store, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/departments", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/{departmentID}", h.handleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleAdmin))
			r.Post("/", h.handleCreate)
			r.Put("/{departmentID}", h.handleUpdate)
			r.Delete("/{departmentID}", h.handleDelete)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	departments, err := h.Store.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_failed", "failed to list departments", requestID)
		return
	}
	api.Success(w, departments, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	dep, err := h.Store.Get(r.Context(), chi.URLParam(r, "departmentID"))
	if errors.Is(err, department.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "department_not_found", "department not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_failed", "failed to load department", requestID)
		return
	}
	api.Success(w, dep, requestID)
}

type departmentRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	ManagerID   string `json:"managerId"`
	IsActive    *bool  `json:"isActive"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	var payload departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("code", payload.Code, "code is required")
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Store.Create(r.Context(), payload.Name, payload.Code, payload.Description, payload.ManagerID)
	if errors.Is(err, department.ErrCodeTaken) {
		api.Fail(w, http.StatusConflict, "code_taken", "department code already exists", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_failed", "failed to create department", requestID)
		return
	}

	dep, err := h.Store.Get(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_failed", "failed to load department", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "department.create", map[string]string{"departmentId": id, "code": dep.Code})
	api.Created(w, dep, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	var payload departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}
	dep, err := h.Store.Update(r.Context(), departmentID, payload.Name, payload.Code, payload.Description, payload.ManagerID, isActive)
	switch {
	case errors.Is(err, department.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "department_not_found", "department not found", requestID)
		return
	case errors.Is(err, department.ErrCodeTaken):
		api.Fail(w, http.StatusConflict, "code_taken", "department code already exists", requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "department_failed", "failed to update department", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "department.update", map[string]string{"departmentId": departmentID})
	api.Success(w, dep, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	err := h.Store.Delete(r.Context(), departmentID)
	switch {
	case errors.Is(err, department.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "department_not_found", "department not found", requestID)
		return
	case errors.Is(err, department.ErrHasEmployees):
		api.Fail(w, http.StatusBadRequest, "department_in_use", "department has assigned employees", requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "department_failed", "failed to delete department", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "department.delete", map[string]string{"departmentId": departmentID})
	api.Success(w, map[string]string{"message": "department deleted"}, requestID)
}

func (h *Handler) recordAudit(r *http.Request, actorID, action string, details any) {
	if err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:   actorID,
		Action:    action,
		Module:    "departments",
		Details:   details,
		Severity:  audit.SeverityMedium,
		RequestID: middleware.GetRequestID(r.Context()),
		IP:        shared.ClientIP(r),
		UserAgent: r.UserAgent(),
	}); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
