package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"registration-service/common/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, checks map[string]Checker, path string) (int, HealthResponse) {
	t.Helper()

	h := NewHandler(checks, metrics.NewMock(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return w.Code, resp
}

func TestHealth(t *testing.T) {
	code, resp := serve(t, nil, "/health")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
}

func TestReady(t *testing.T) {
	up := CheckerFunc(func(context.Context) error { return nil })
	down := CheckerFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("AllUp", func(t *testing.T) {
		code, resp := serve(t, map[string]Checker{"postgres": up}, "/ready")

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, "up", resp.Checks["postgres"])
	})

	t.Run("DependencyDown", func(t *testing.T) {
		code, resp := serve(t, map[string]Checker{"postgres": down, "nats": up}, "/ready")

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unavailable", resp.Status)
		assert.Equal(t, "down", resp.Checks["postgres"])
		assert.Equal(t, "up", resp.Checks["nats"])
	})
}
