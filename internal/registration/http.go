package registration

import (
	"errors"
	"log/slog"
	"net/http"

	"registration-service/common/httputil"
	"registration-service/internal/metrics"

	"github.com/go-chi/chi/v5"
)

const defaultMaxBodyBytes = 64 << 10

type Handler struct {
	service      Service
	logger       *slog.Logger
	metrics      *metrics.Metrics
	maxBodyBytes int64
}

func NewHandler(service Service, logger *slog.Logger, m *metrics.Metrics, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &Handler{
		service:      service,
		logger:       logger,
		metrics:      m,
		maxBodyBytes: maxBodyBytes,
	}
}

// RegisterRoutes mounts the public submission endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Submit)
}

// RegisterAdminRoutes mounts the read side. The caller is responsible for
// putting it behind the admin session middleware.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/registrations", h.List)
}

type submitResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := Decode(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to decode registration", "error", err)
		h.metrics.RecordSubmission(ctx, metrics.OutcomeMalformed)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.service.Submit(ctx, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordSubmission(ctx, metrics.OutcomeAccepted)
	httputil.RespondWithJSON(w, http.StatusOK, submitResponse{OK: true, ID: rec.ID.String()})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "fetching registrations")

	records, err := h.service.List(ctx)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordRegistrationsListed(ctx)
	httputil.RespondOK(w, http.StatusOK, records)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	if verr, ok := AsValidationError(err); ok {
		h.logger.InfoContext(ctx, "registration rejected", "fields", verr.Keys())
		h.metrics.RecordSubmission(ctx, metrics.OutcomeRejected)
		h.metrics.RecordValidationErrors(ctx, len(verr.Fields))
		httputil.RespondFailure(w, http.StatusBadRequest, verr.Fields)
		return
	}

	if errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrStorageRejected) {
		h.logger.ErrorContext(ctx, "registration storage failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if r.Method == http.MethodPost {
			h.metrics.RecordSubmission(ctx, metrics.OutcomeStorageFailed)
			httputil.RespondWithError(w, http.StatusInternalServerError, "failed to save registration")
			return
		}
		httputil.RespondWithError(w, http.StatusInternalServerError, "failed to load registrations")
		return
	}

	h.logger.ErrorContext(ctx, "internal error", "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}
