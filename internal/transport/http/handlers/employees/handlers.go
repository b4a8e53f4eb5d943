package employeeshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attendsuite/internal/domain/audit"
	"attendsuite/internal/domain/employee"
	"attendsuite/internal/domain/user"
	"attendsuite/internal/transport/http/api"
	"attendsuite/internal/transport/http/middleware"
	"attendsuite/internal/transport/http/shared"
)

type Handler struct {
	Service *employee.Service
	Audit   *audit.Service
}

func NewHandler(service *employee.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", h.handleMyProfile)
		r.Put("/me", h.handleUpdateMyProfile)
		r.Post("/face/register", h.handleRegisterFace)
		r.Get("/face/descriptors", h.handleMyDescriptors)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleAdmin))
			r.Get("/", h.handleList)
			r.Post("/", h.handleCreate)
			r.Get("/{employeeID}", h.handleGet)
			r.Put("/{employeeID}", h.handleUpdate)
			r.Delete("/{employeeID}", h.handleDeactivate)
			r.Delete("/{employeeID}/face", h.handleClearFace)
		})
	})
}

func (h *Handler) handleMyProfile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	emp, err := h.Service.GetByUserID(r.Context(), u.UserID)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee profile not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to load profile", requestID)
		return
	}
	api.Success(w, emp, requestID)
}

// selfUpdateRequest deliberately exposes only the two fields an
// employee may change; anything else in the body is dropped on decode.
type selfUpdateRequest struct {
	Address          *string                    `json:"address"`
	EmergencyContact *employee.EmergencyContact `json:"emergencyContact"`
}

func (req selfUpdateRequest) input() employee.SelfUpdateInput {
	return employee.SelfUpdateInput{Address: req.Address, Emergency: req.EmergencyContact}
}

func (h *Handler) handleUpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	var payload selfUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	emp, err := h.Service.UpdateMyProfile(r.Context(), u.UserID, payload.input())
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee profile not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to update profile", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "employee.self_update", audit.SeverityLow, map[string]string{"employeeId": emp.ID})
	api.Success(w, emp, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	p := shared.ParsePagination(r, 10, 100)

	f := employee.Filter{
		DepartmentID: q.Get("departmentId"),
		Search:       q.Get("search"),
		ActiveOnly:   q.Get("includeInactive") == "",
	}

	employees, total, err := h.Service.List(r.Context(), f, p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to list employees", requestID)
		return
	}
	api.Success(w, map[string]any{
		"employees": employees,
		"count":     len(employees),
		"total":     total,
		"page":      p.Page,
		"pages":     shared.Pages(total, p.Limit),
	}, requestID)
}

type createEmployeeRequest struct {
	Email            string                    `json:"email"`
	Password         string                    `json:"password"`
	FullName         string                    `json:"fullName"`
	Phone            string                    `json:"phone"`
	Role             string                    `json:"role"`
	EmployeeNumber   string                    `json:"employeeNumber"`
	DepartmentID     string                    `json:"departmentId"`
	Position         string                    `json:"position"`
	JoiningDate      string                    `json:"joiningDate"`
	Salary           float64                   `json:"salary"`
	Address          string                    `json:"address"`
	EmergencyContact employee.EmergencyContact `json:"emergencyContact"`
	WorkSchedule     employee.WorkSchedule     `json:"workSchedule"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	var payload createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("fullName", payload.FullName, "full name is required")
	v.Required("employeeNumber", payload.EmployeeNumber, "employee number is required")
	v.Required("departmentId", payload.DepartmentID, "department is required")
	v.Required("position", payload.Position, "position is required")
	if len(payload.Password) < 8 {
		v.Add("password", "password must be at least 8 characters")
	}
	joining, _ := v.Date("joiningDate", payload.JoiningDate)
	if payload.Role == "" {
		payload.Role = user.RoleEmployee
	}
	v.Enum("role", payload.Role, []string{user.RoleAdmin, user.RoleEmployee}, "role must be admin or employee")
	if v.Reject(w, requestID) {
		return
	}

	emp, err := h.Service.Create(r.Context(), employee.CreateInput{
		Email:          payload.Email,
		Password:       payload.Password,
		FullName:       payload.FullName,
		Phone:          payload.Phone,
		Role:           payload.Role,
		EmployeeNumber: payload.EmployeeNumber,
		DepartmentID:   payload.DepartmentID,
		Position:       payload.Position,
		JoiningDate:    joining,
		Salary:         payload.Salary,
		Address:        payload.Address,
		Emergency:      payload.EmergencyContact,
		Schedule:       payload.WorkSchedule,
	})
	if errors.Is(err, employee.ErrDuplicate) {
		api.Fail(w, http.StatusConflict, "duplicate_employee", "employee number or email already exists", requestID)
		return
	}
	if err != nil {
		slog.Error("employee create failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusBadRequest, "employee_create_failed", err.Error(), requestID)
		return
	}

	h.recordAudit(r, u.UserID, "employee.create", audit.SeverityMedium, map[string]string{"employeeId": emp.ID, "employeeNumber": emp.EmployeeNumber})
	api.Created(w, emp, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	emp, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to load employee", requestID)
		return
	}
	api.Success(w, emp, requestID)
}

type updateEmployeeRequest struct {
	FullName         string                    `json:"fullName"`
	Phone            string                    `json:"phone"`
	DepartmentID     string                    `json:"departmentId"`
	Position         string                    `json:"position"`
	Salary           float64                   `json:"salary"`
	Address          string                    `json:"address"`
	EmergencyContact employee.EmergencyContact `json:"emergencyContact"`
	WorkSchedule     employee.WorkSchedule     `json:"workSchedule"`
	IsActive         *bool                     `json:"isActive"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload updateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}
	emp, err := h.Service.Update(r.Context(), employeeID, employee.UpdateInput{
		FullName:     payload.FullName,
		Phone:        payload.Phone,
		DepartmentID: payload.DepartmentID,
		Position:     payload.Position,
		Salary:       payload.Salary,
		Address:      payload.Address,
		Emergency:    payload.EmergencyContact,
		Schedule:     payload.WorkSchedule,
		IsActive:     isActive,
	})
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "employee_update_failed", err.Error(), requestID)
		return
	}

	h.recordAudit(r, u.UserID, "employee.update", audit.SeverityLow, map[string]string{"employeeId": employeeID})
	api.Success(w, emp, requestID)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	err := h.Service.Deactivate(r.Context(), employeeID)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to deactivate employee", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "employee.deactivate", audit.SeverityHigh, map[string]string{"employeeId": employeeID})
	api.Success(w, map[string]string{"message": "employee deactivated"}, requestID)
}

type registerFaceRequest struct {
	Descriptors json.RawMessage `json:"descriptors"`
	Images      []string        `json:"images"`
}

func (h *Handler) handleRegisterFace(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	var payload registerFaceRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	emp, err := h.Service.GetByUserID(r.Context(), u.UserID)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee profile not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "face_register_failed", "failed to register face", requestID)
		return
	}

	if err := h.Service.RegisterFace(r.Context(), emp.ID, employee.FaceEnrollment{
		Descriptors: payload.Descriptors,
		Images:      payload.Images,
	}); err != nil {
		api.Fail(w, http.StatusBadRequest, "face_register_failed", err.Error(), requestID)
		return
	}

	h.recordAudit(r, u.UserID, "employee.face.register", audit.SeverityMedium, map[string]string{"employeeId": emp.ID})
	api.Success(w, map[string]string{"message": "face registered"}, requestID)
}

// handleMyDescriptors serves the caller their own stored descriptors so
// the capture client can run the match locally.
func (h *Handler) handleMyDescriptors(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	emp, err := h.Service.GetByUserID(r.Context(), u.UserID)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee profile not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "face_failed", "failed to load face data", requestID)
		return
	}

	descriptors, err := h.Service.FaceDescriptors(r.Context(), emp.ID)
	if errors.Is(err, employee.ErrNoFaceData) {
		api.Fail(w, http.StatusNotFound, "face_not_registered", "no face data registered", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "face_failed", "failed to load face data", requestID)
		return
	}
	api.Success(w, map[string]any{"descriptors": descriptors}, requestID)
}

func (h *Handler) handleClearFace(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	err := h.Service.ClearFace(r.Context(), employeeID)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "face_failed", "failed to clear face data", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "employee.face.clear", audit.SeverityHigh, map[string]string{"employeeId": employeeID})
	api.Success(w, map[string]string{"message": "face data cleared"}, requestID)
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, severity string, details any) {
	if err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:   actorID,
		Action:    action,
		Module:    "employees",
		Details:   details,
		Severity:  severity,
		RequestID: middleware.GetRequestID(r.Context()),
		IP:        shared.ClientIP(r),
		UserAgent: r.UserAgent(),
	}); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
