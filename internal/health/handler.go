package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"registration-service/common/httputil"
	"registration-service/common/metrics"

	"github.com/go-chi/chi/v5"
)

// Checker is a dependency probed by the readiness endpoint.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type Handler struct {
	checks  map[string]Checker
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewHandler(checks map[string]Checker, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		checks:  checks,
		timeout: 2 * time.Second,
		metrics: m,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready pings every dependency and answers 503 if any of them is down.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	ready := true

	for name, check := range h.checks {
		start := time.Now()
		err := check.Ping(ctx)
		h.metrics.Health.RecordDependencyCheck(ctx, name, time.Since(start), err)

		if err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", "dependency", name, "error", err)
			results[name] = "down"
			ready = false
			continue
		}
		results[name] = "up"
	}

	if !ready {
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Checks: results})
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ready", Checks: results})
}
