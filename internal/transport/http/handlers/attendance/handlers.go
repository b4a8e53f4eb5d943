package attendancehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"attendsuite/internal/domain/attendance"
	"attendsuite/internal/domain/audit"
	"attendsuite/internal/domain/employee"
	"attendsuite/internal/domain/user"
	"attendsuite/internal/transport/http/api"
	"attendsuite/internal/transport/http/middleware"
	"attendsuite/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
	Audit   *audit.Service
}

func NewHandler(service *attendance.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/check-in", h.handleCheckIn)
		r.Put("/check-out", h.handleCheckOut)
		r.Get("/today", h.handleToday)
		r.Get("/my-attendance", h.handleMyAttendance)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleAdmin))
			r.Get("/", h.handleList)
			r.Get("/board", h.handleBoard)
			r.Get("/statistics", h.handleStatistics)
			r.Get("/report/{employeeID}", h.handleMonthlyReport)
		})
	})
}

type faceCapture struct {
	ImageURL   string  `json:"imageUrl"`
	Confidence float64 `json:"confidence"`
}

type checkInRequest struct {
	FaceData faceCapture `json:"faceData"`
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	Notes string `json:"notes"`
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	var payload checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	rec, err := h.Service.CheckIn(r.Context(), u.UserID, attendance.CheckInInput{
		ImageURL:   payload.FaceData.ImageURL,
		Confidence: payload.FaceData.Confidence,
		Latitude:   payload.Location.Latitude,
		Longitude:  payload.Location.Longitude,
		Notes:      payload.Notes,
	})
	if err != nil {
		h.failCheckIn(w, r, err, requestID)
		return
	}

	h.recordAudit(r, u.UserID, "attendance.check_in",
		fmt.Sprintf("checked in at %s", rec.CheckInTime.Format("15:04:05")))
	api.Created(w, rec, requestID)
}

func (h *Handler) failCheckIn(w http.ResponseWriter, r *http.Request, err error, requestID string) {
	var holidayErr *attendance.HolidayError
	switch {
	case errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee profile not found", requestID)
	case errors.Is(err, attendance.ErrFaceNotRegistered):
		api.Fail(w, http.StatusBadRequest, "face_not_registered", "please register your face first", requestID)
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		api.Fail(w, http.StatusBadRequest, "already_checked_in", "already checked in today", requestID)
	case errors.Is(err, attendance.ErrNotWorkingDay):
		api.Fail(w, http.StatusBadRequest, "not_working_day", "today is not a working day", requestID)
	case errors.Is(err, attendance.ErrInactiveEmployee):
		api.Fail(w, http.StatusForbidden, "employee_inactive", "employee is not active", requestID)
	case errors.As(err, &holidayErr):
		api.Fail(w, http.StatusBadRequest, "holiday", err.Error(), requestID)
	default:
		slog.Error("check-in failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "check_in_failed", "failed to check in", requestID)
	}
}

type checkOutRequest struct {
	FaceData     faceCapture `json:"faceData"`
	BreakMinutes int         `json:"breakMinutes"`
	Notes        string      `json:"notes"`
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	var payload checkOutRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	rec, err := h.Service.CheckOut(r.Context(), u.UserID, attendance.CheckOutInput{
		ImageURL:     payload.FaceData.ImageURL,
		Confidence:   payload.FaceData.Confidence,
		BreakMinutes: payload.BreakMinutes,
		Notes:        payload.Notes,
	})
	switch {
	case errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee profile not found", requestID)
		return
	case errors.Is(err, attendance.ErrNoRecord):
		api.Fail(w, http.StatusNotFound, "no_check_in", "no check-in record found for today", requestID)
		return
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		api.Fail(w, http.StatusBadRequest, "already_checked_out", "already checked out today", requestID)
		return
	case err != nil:
		slog.Error("check-out failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "check_out_failed", "failed to check out", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "attendance.check_out",
		fmt.Sprintf("checked out at %s", rec.CheckOutTime.Format("15:04:05")))
	api.Success(w, rec, requestID)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	rec, err := h.Service.Today(r.Context(), u.UserID)
	if errors.Is(err, attendance.ErrNoRecord) {
		api.Success(w, nil, requestID)
		return
	}
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee profile not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to load attendance", requestID)
		return
	}
	api.Success(w, rec, requestID)
}

func (h *Handler) handleMyAttendance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	f, ok := parseFilter(w, r, requestID)
	if !ok {
		return
	}
	p := shared.ParsePagination(r, 10, 100)

	records, total, err := h.Service.MyAttendance(r.Context(), u.UserID, f, p.Limit, p.Offset())
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee profile not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to load attendance", requestID)
		return
	}
	api.Success(w, listResponse(records, total, p), requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	f, ok := parseFilter(w, r, requestID)
	if !ok {
		return
	}
	f.EmployeeID = r.URL.Query().Get("employeeId")
	f.DepartmentID = r.URL.Query().Get("departmentId")
	p := shared.ParsePagination(r, 10, 100)

	records, total, err := h.Service.List(r.Context(), f, p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to load attendance", requestID)
		return
	}
	api.Success(w, listResponse(records, total, p), requestID)
}

func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	entries, err := h.Service.TodayBoard(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to load today's board", requestID)
		return
	}
	api.Success(w, entries, requestID)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	f, ok := parseFilter(w, r, requestID)
	if !ok {
		return
	}
	f.EmployeeID = r.URL.Query().Get("employeeId")
	f.DepartmentID = r.URL.Query().Get("departmentId")

	stats, err := h.Service.Statistics(r.Context(), f)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to compute statistics", requestID)
		return
	}
	api.Success(w, stats, requestID)
}

func (h *Handler) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	if errY != nil || errM != nil || month < 1 || month > 12 {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "year and month query parameters are required", requestID)
		return
	}

	pdf, err := h.Service.MonthlyReportPDF(r.Context(), employeeID, year, time.Month(month))
	if err != nil {
		slog.Error("attendance report failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to generate report", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="attendance-%s-%04d-%02d.pdf"`, employeeID, year, month))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("report write failed", "err", err)
	}
}

func parseFilter(w http.ResponseWriter, r *http.Request, requestID string) (attendance.Filter, bool) {
	var f attendance.Filter
	q := r.URL.Query()
	f.Status = q.Get("status")
	if raw := q.Get("startDate"); raw != "" {
		t, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid startDate", requestID)
			return f, false
		}
		f.From = t
	}
	if raw := q.Get("endDate"); raw != "" {
		t, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid endDate", requestID)
			return f, false
		}
		f.To = t
	}
	return f, true
}

func listResponse(records []attendance.Record, total int, p shared.Pagination) map[string]any {
	return map[string]any{
		"records": records,
		"count":   len(records),
		"total":   total,
		"page":    p.Page,
		"pages":   shared.Pages(total, p.Limit),
	}
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, details string) {
	if err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:   actorID,
		Action:    action,
		Module:    "attendance",
		Details:   map[string]string{"summary": details},
		Severity:  audit.SeverityLow,
		RequestID: middleware.GetRequestID(r.Context()),
		IP:        shared.ClientIP(r),
		UserAgent: r.UserAgent(),
	}); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
