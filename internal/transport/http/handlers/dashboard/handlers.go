package dashboardhandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"attendsuite/internal/domain/dashboard"
	"attendsuite/internal/domain/user"
	"attendsuite/internal/transport/http/api"
	"attendsuite/internal/transport/http/middleware"
)

type Handler struct {
	Store *dashboard.Store
}

func NewHandler(store *dashboard.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleStats)
	})
}

// handleStats serves the role-appropriate dashboard: org-wide counters
// for admins, personal ones for employees.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	if u.Role == user.RoleAdmin {
		stats, err := h.Store.AdminStats(r.Context(), time.Now())
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to load dashboard", requestID)
			return
		}
		api.Success(w, stats, requestID)
		return
	}

	stats, err := h.Store.EmployeeStats(r.Context(), u.UserID, time.Now())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to load dashboard", requestID)
		return
	}
	api.Success(w, stats, requestID)
}
