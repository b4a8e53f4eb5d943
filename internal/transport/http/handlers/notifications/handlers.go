package notificationshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"attendsuite/internal/domain/notifications"
	"attendsuite/internal/transport/http/api"
	"attendsuite/internal/transport/http/middleware"
	"attendsuite/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
}

func NewHandler(service *notifications.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Put("/read-all", h.handleMarkAllRead)
		r.Put("/{notificationID}/read", h.handleMarkRead)
		r.Delete("/{notificationID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()
	p := shared.ParsePagination(r, 20, 100)

	result, err := h.Service.List(r.Context(), u.UserID, q.Get("unread") == "true", q.Get("category"), p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to list notifications", requestID)
		return
	}
	api.Success(w, map[string]any{
		"notifications": result.Items,
		"count":         len(result.Items),
		"total":         result.Total,
		"unreadCount":   result.UnreadCount,
		"page":          p.Page,
		"pages":         shared.Pages(result.Total, p.Limit),
	}, requestID)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	if err := h.Service.MarkRead(r.Context(), u.UserID, chi.URLParam(r, "notificationID")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to mark notification read", requestID)
		return
	}
	api.Success(w, map[string]string{"message": "marked as read"}, requestID)
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	if err := h.Service.MarkAllRead(r.Context(), u.UserID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to mark notifications read", requestID)
		return
	}
	api.Success(w, map[string]string{"message": "all notifications marked as read"}, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	if err := h.Service.Delete(r.Context(), u.UserID, chi.URLParam(r, "notificationID")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to delete notification", requestID)
		return
	}
	api.Success(w, map[string]string{"message": "notification deleted"}, requestID)
}
