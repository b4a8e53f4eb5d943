package holidayshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"attendsuite/internal/domain/audit"
	"attendsuite/internal/domain/holiday"
	"attendsuite/internal/domain/user"
	"attendsuite/internal/transport/http/api"
	"attendsuite/internal/transport/http/middleware"
	"attendsuite/internal/transport/http/shared"
)

type Handler struct {
	Store *holiday.Store
	Audit *audit.Service
}

func NewHandler(store *holiday.Store, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/holidays", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleAdmin))
			r.Post("/", h.handleCreate)
			r.Put("/{holidayID}", h.handleUpdate)
			r.Delete("/{holidayID}", h.handleDelete)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	p := shared.ParsePagination(r, 50, 365)

	var f holiday.Filter
	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be a number", requestID)
			return
		}
		f.Year = year
	}
	f.Type = q.Get("type")

	holidays, total, err := h.Store.List(r.Context(), f, p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_failed", "failed to list holidays", requestID)
		return
	}
	api.Success(w, map[string]any{
		"holidays": holidays,
		"count":    len(holidays),
		"total":    total,
		"page":     p.Page,
		"pages":    shared.Pages(total, p.Limit),
	}, requestID)
}

type holidayRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	var payload holidayRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.Type == "" {
		payload.Type = holiday.TypePublic
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	date, _ := v.Date("date", payload.Date)
	v.Enum("type", payload.Type, []string{holiday.TypePublic, holiday.TypeOptional, holiday.TypeCompany}, "type must be public, optional or company")
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Store.Create(r.Context(), payload.Name, date, payload.Type, payload.Description)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_failed", "failed to create holiday", requestID)
		return
	}
	created, err := h.Store.Get(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_failed", "failed to load holiday", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "holiday.create", map[string]string{"holidayId": id, "name": payload.Name})
	api.Created(w, created, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	holidayID := chi.URLParam(r, "holidayID")

	var payload holidayRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.Type == "" {
		payload.Type = holiday.TypePublic
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	date, _ := v.Date("date", payload.Date)
	v.Enum("type", payload.Type, []string{holiday.TypePublic, holiday.TypeOptional, holiday.TypeCompany}, "type must be public, optional or company")
	if v.Reject(w, requestID) {
		return
	}
	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	updated, err := h.Store.Update(r.Context(), holidayID, payload.Name, date, payload.Type, payload.Description, isActive)
	if errors.Is(err, holiday.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "holiday_not_found", "holiday not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_failed", "failed to update holiday", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "holiday.update", map[string]string{"holidayId": holidayID})
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	holidayID := chi.URLParam(r, "holidayID")

	err := h.Store.Delete(r.Context(), holidayID)
	if errors.Is(err, holiday.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "holiday_not_found", "holiday not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_failed", "failed to delete holiday", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "holiday.delete", map[string]string{"holidayId": holidayID})
	api.Success(w, map[string]string{"message": "holiday deleted"}, requestID)
}

func (h *Handler) recordAudit(r *http.Request, actorID, action string, details any) {
	if err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:   actorID,
		Action:    action,
		Module:    "holidays",
		Details:   details,
		Severity:  audit.SeverityLow,
		RequestID: middleware.GetRequestID(r.Context()),
		IP:        shared.ClientIP(r),
		UserAgent: r.UserAgent(),
	}); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
