package registration_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"registration-service/internal/metrics"
	"registration-service/internal/registration"
	"registration-service/internal/registration/mocks"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type envelope struct {
	OK    bool            `json:"ok"`
	ID    string          `json:"id"`
	Error json.RawMessage `json:"error"`
	Data  json.RawMessage `json:"data"`
}

func newRouter(svc registration.Service, maxBody int64) http.Handler {
	h := registration.NewHandler(svc, discardLogger(), metrics.NewMock(), maxBody)
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		h.RegisterRoutes(r)
		r.Route("/admin", h.RegisterAdminRoutes)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return w, env
}

func TestHandler_Submit(t *testing.T) {
	body, err := json.Marshal(validRequest())
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)

		id := uuid.New()
		svc.EXPECT().
			Submit(gomock.Any(), validRequest()).
			Return(&registration.Record{ID: id}, nil)

		w, env := doJSON(t, newRouter(svc, 0), http.MethodPost, "/api/register", string(body))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.True(t, env.OK)
		assert.Equal(t, id.String(), env.ID)
	})

	t.Run("ValidationFailed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)

		svc.EXPECT().
			Submit(gomock.Any(), gomock.Any()).
			Return(nil, &registration.ValidationError{Fields: map[string]string{
				"team_name": "Team name is required",
				"members":   "Teams must have between 2 and 5 members",
			}})

		w, env := doJSON(t, newRouter(svc, 0), http.MethodPost, "/api/register", string(body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.OK)

		var fields map[string]string
		require.NoError(t, json.Unmarshal(env.Error, &fields))
		assert.Equal(t, "Team name is required", fields["team_name"])
		assert.Contains(t, fields, "members")
	})

	t.Run("MalformedBody", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)
		svc.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(0)

		for _, payload := range []string{"", "[]", "not json", `{"members": 2}`} {
			w, env := doJSON(t, newRouter(svc, 0), http.MethodPost, "/api/register", payload)

			assert.Equal(t, http.StatusBadRequest, w.Code, payload)
			assert.False(t, env.OK)
			assert.JSONEq(t, `"invalid request body"`, string(env.Error))
		}
	})

	t.Run("BodyTooLarge", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)
		svc.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(0)

		big := fmt.Sprintf(`{"idea_summary": %q}`, strings.Repeat("a", 2048))
		w, _ := doJSON(t, newRouter(svc, 1024), http.MethodPost, "/api/register", big)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("StorageFailureIsGeneric", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)

		svc.EXPECT().
			Submit(gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("%w: %w", registration.ErrStorageUnavailable, errors.New(`pq: password authentication failed for user "app"`)))

		w, env := doJSON(t, newRouter(svc, 0), http.MethodPost, "/api/register", string(body))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.False(t, env.OK)
		assert.JSONEq(t, `"failed to save registration"`, string(env.Error))
		assert.NotContains(t, w.Body.String(), "password")
	})
}

func TestHandler_List(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)

		svc.EXPECT().List(gomock.Any()).Return([]registration.Record{
			{TeamName: "Newer", Members: []registration.Member{{Name: "A"}}},
			{TeamName: "Older"},
		}, nil)

		w, env := doJSON(t, newRouter(svc, 0), http.MethodGet, "/api/admin/registrations", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.OK)

		var records []registration.Record
		require.NoError(t, json.Unmarshal(env.Data, &records))
		require.Len(t, records, 2)
		assert.Equal(t, "Newer", records[0].TeamName)
	})

	t.Run("StorageFailure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)

		svc.EXPECT().List(gomock.Any()).Return(nil, registration.ErrStorageUnavailable)

		w, env := doJSON(t, newRouter(svc, 0), http.MethodGet, "/api/admin/registrations", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `"failed to load registrations"`, string(env.Error))
	})
}

func TestHandler_Submit_EndToEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

	svc := registration.NewService(registration.NewValidator(registration.DefaultContract()), repo, nil, discardLogger())

	payload := map[string]any{
		"team_name":       "",
		"school_name":     "LNBTI",
		"team_lead_name":  "A. Perera",
		"team_lead_phone": "12",
		"team_lead_email": "a@school.lk",
		"track":           registration.TrackOpenInnovation,
		"idea_summary":    strings.Repeat("i", 50),
		"members":         []map[string]string{{"name": "Kamal", "grade": "11", "phone": "0711111111"}},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(body))
	w := httptest.NewRecorder()
	newRouter(svc, 0).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		OK    bool              `json:"ok"`
		Error map[string]string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	assert.False(t, env.OK)
	assert.Contains(t, env.Error, "team_name")
	assert.Contains(t, env.Error, "team_lead_phone")
	assert.Contains(t, env.Error, "members")
}
