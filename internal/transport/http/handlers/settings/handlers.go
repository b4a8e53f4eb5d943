package settingshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attendsuite/internal/domain/audit"
	"attendsuite/internal/domain/settings"
	"attendsuite/internal/domain/user"
	"attendsuite/internal/transport/http/api"
	"attendsuite/internal/transport/http/middleware"
	"attendsuite/internal/transport/http/shared"
)

type Handler struct {
	Store *settings.Store
	Audit *audit.Service
}

func NewHandler(store *settings.Store, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(user.RoleAdmin))
		r.Get("/", h.handleList)
		r.Get("/{settingID}", h.handleGet)
		r.Put("/{settingID}", h.handleUpdate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	items, err := h.Store.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_failed", "failed to list settings", requestID)
		return
	}
	api.Success(w, items, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	setting, err := h.Store.Get(r.Context(), chi.URLParam(r, "settingID"))
	if errors.Is(err, settings.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "setting_not_found", "setting not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_failed", "failed to load setting", requestID)
		return
	}
	api.Success(w, setting, requestID)
}

type updateSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	settingID := chi.URLParam(r, "settingID")

	var payload updateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Value) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "a JSON value is required", requestID)
		return
	}

	updated, err := h.Store.Update(r.Context(), settingID, u.UserID, payload.Value)
	switch {
	case errors.Is(err, settings.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "setting_not_found", "setting not found", requestID)
		return
	case errors.Is(err, settings.ErrNotEditable):
		api.Fail(w, http.StatusBadRequest, "setting_locked", "setting is not editable", requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "settings_failed", "failed to update setting", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:   u.UserID,
		Action:    "settings.update",
		Module:    "settings",
		Details:   map[string]any{"key": updated.Key, "value": json.RawMessage(updated.Value)},
		Severity:  audit.SeverityHigh,
		RequestID: requestID,
		IP:        shared.ClientIP(r),
		UserAgent: r.UserAgent(),
	}); err != nil {
		slog.Warn("audit record failed", "action", "settings.update", "err", err)
	}
	api.Success(w, updated, requestID)
}
