package authhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"attendsuite/internal/auth"
	"attendsuite/internal/domain/audit"
	"attendsuite/internal/domain/user"
	"attendsuite/internal/transport/http/api"
	"attendsuite/internal/transport/http/middleware"
	"attendsuite/internal/transport/http/shared"
)

type Handler struct {
	Users     *user.Store
	Audit     *audit.Service
	JWTSecret string
	TokenTTL  time.Duration
	Issuer    string
}

func NewHandler(users *user.Store, auditSvc *audit.Service, jwtSecret string, tokenTTL time.Duration, issuer string) *Handler {
	return &Handler{Users: users, Audit: auditSvc, JWTSecret: jwtSecret, TokenTTL: tokenTTL, Issuer: issuer}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", h.handleMe)
			r.Post("/logout", h.handleLogout)
			r.Post("/change-password", h.handleChangePassword)
			r.Post("/mfa/setup", h.handleMFASetup)
			r.Post("/mfa/activate", h.handleMFAActivate)
		})
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode,omitempty"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if payload.Email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "missing_credentials", "email and password are required", requestID)
		return
	}

	creds, err := h.Users.FindByEmail(r.Context(), payload.Email)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
		return
	}
	if creds.Status != user.StatusActive {
		api.Fail(w, http.StatusForbidden, "account_disabled", "account is not active", requestID)
		return
	}
	if err := auth.CheckPassword(creds.PasswordHash, payload.Password); err != nil {
		h.recordAudit(r, creds.ID, "auth.login.failed", audit.SeverityMedium, map[string]string{"email": payload.Email})
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
		return
	}

	if creds.MFAEnabled {
		if payload.MFACode == "" {
			api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", requestID)
			return
		}
		if !auth.ValidateMFACode(creds.MFASecret, payload.MFACode) {
			h.recordAudit(r, creds.ID, "auth.mfa.failed", audit.SeverityHigh, nil)
			api.Fail(w, http.StatusUnauthorized, "invalid_mfa_code", "invalid mfa code", requestID)
			return
		}
	}

	token, err := auth.GenerateToken(h.JWTSecret, auth.Claims{UserID: creds.ID, Role: creds.Role}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_failed", "failed to issue token", requestID)
		return
	}

	if err := h.Users.UpdateLastLogin(r.Context(), creds.ID); err != nil {
		slog.Warn("last login update failed", "userId", creds.ID, "err", err)
	}
	h.recordAudit(r, creds.ID, "auth.login", audit.SeverityLow, nil)

	me, err := h.Users.FindByID(r.Context(), creds.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to load profile", requestID)
		return
	}
	api.Success(w, loginResponse{Token: token, User: me}, requestID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	me, err := h.Users.FindByID(r.Context(), u.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", requestID)
		return
	}
	api.Success(w, me, requestID)
}

// Logout is audit-only. Tokens are stateless, the client discards its
// copy.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.GetUser(r.Context())
	h.recordAudit(r, u.UserID, "auth.logout", audit.SeverityLow, nil)
	api.Success(w, map[string]string{"message": "logged out"}, middleware.GetRequestID(r.Context()))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	var payload changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if len(payload.NewPassword) < 8 {
		api.Fail(w, http.StatusBadRequest, "weak_password", "new password must be at least 8 characters", requestID)
		return
	}

	hash, err := h.Users.PasswordHash(r.Context(), u.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "password_change_failed", "failed to change password", requestID)
		return
	}
	if err := auth.CheckPassword(hash, payload.CurrentPassword); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "current password is incorrect", requestID)
		return
	}

	newHash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "password_change_failed", "failed to change password", requestID)
		return
	}
	if err := h.Users.UpdatePassword(r.Context(), u.UserID, newHash); err != nil {
		api.Fail(w, http.StatusInternalServerError, "password_change_failed", "failed to change password", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "auth.password.change", audit.SeverityMedium, nil)
	api.Success(w, map[string]string{"message": "password changed"}, requestID)
}

func (h *Handler) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	email, err := h.Users.Email(r.Context(), u.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to set up mfa", requestID)
		return
	}
	secret, url, err := auth.GenerateMFASecret(h.Issuer, email)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to set up mfa", requestID)
		return
	}
	if err := h.Users.UpdateMFASecret(r.Context(), u.UserID, secret); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to set up mfa", requestID)
		return
	}
	api.Success(w, map[string]string{"secret": secret, "otpauthUrl": url}, requestID)
}

type mfaActivateRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleMFAActivate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	u, _ := middleware.GetUser(r.Context())

	var payload mfaActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	secret, err := h.Users.MFASecret(r.Context(), u.UserID)
	if err != nil || secret == "" {
		api.Fail(w, http.StatusBadRequest, "mfa_not_set_up", "run mfa setup first", requestID)
		return
	}
	if !auth.ValidateMFACode(secret, payload.Code) {
		api.Fail(w, http.StatusUnauthorized, "invalid_mfa_code", "invalid mfa code", requestID)
		return
	}
	if err := h.Users.SetMFAEnabled(r.Context(), u.UserID, true); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_activate_failed", "failed to activate mfa", requestID)
		return
	}

	h.recordAudit(r, u.UserID, "auth.mfa.activate", audit.SeverityMedium, nil)
	api.Success(w, map[string]string{"message": "mfa activated"}, requestID)
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, severity string, details any) {
	if err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:   actorID,
		Action:    action,
		Module:    "auth",
		Details:   details,
		Severity:  severity,
		RequestID: middleware.GetRequestID(r.Context()),
		IP:        shared.ClientIP(r),
		UserAgent: r.UserAgent(),
	}); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
