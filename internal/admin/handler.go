package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"registration-service/common/httputil"
	"registration-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

type Handler struct {
	service   *Service
	validator *validator.Validate
	cookies   CookieOptions
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewHandler(service *Service, cookies CookieOptions, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
		cookies:   cookies,
		logger:    logger,
		metrics:   m,
	}
}

// RegisterRoutes mounts login, logout and the session probe. The session
// probe sits behind RequireSession.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.With(RequireSession(h.service.Sessions(), h.logger)).Get("/session", h.Session)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "password is required")
		return
	}

	token, expiresAt, err := h.service.Login(req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			h.logger.WarnContext(ctx, "admin login failed", "remote_addr", r.RemoteAddr)
			h.metrics.RecordAdminLogin(ctx, false)
			httputil.RespondWithError(w, http.StatusUnauthorized, "invalid password")
			return
		}
		h.logger.ErrorContext(ctx, "failed to issue admin session", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "admin logged in", "remote_addr", r.RemoteAddr)
	h.metrics.RecordAdminLogin(ctx, true)

	SetSessionCookie(w, token, expiresAt, h.cookies)
	httputil.RespondOK(w, http.StatusOK, loginResponse{ExpiresAt: expiresAt})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w, h.cookies)
	httputil.RespondOK(w, http.StatusOK, nil)
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	httputil.RespondOK(w, http.StatusOK, nil)
}
