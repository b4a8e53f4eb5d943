package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"attendsuite/internal/domain/audit"
	"attendsuite/internal/domain/user"
	"attendsuite/internal/transport/http/api"
	"attendsuite/internal/transport/http/middleware"
	"attendsuite/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit-logs", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(user.RoleAdmin))
		r.Get("/", h.handleList)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	p := shared.ParsePagination(r, 20, 100)

	filter := audit.Filter{
		Module:   q.Get("module"),
		ActorID:  q.Get("userId"),
		Severity: q.Get("severity"),
	}
	if raw := q.Get("startDate"); raw != "" {
		t, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid startDate", requestID)
			return
		}
		filter.From = t
	}
	if raw := q.Get("endDate"); raw != "" {
		t, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid endDate", requestID)
			return
		}
		filter.To = t
	}

	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to count audit events", requestID)
		return
	}
	events, err := h.Service.List(r.Context(), filter, p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to list audit events", requestID)
		return
	}
	api.Success(w, map[string]any{
		"events": events,
		"count":  len(events),
		"total":  total,
		"page":   p.Page,
		"pages":  shared.Pages(total, p.Limit),
	}, requestID)
}
