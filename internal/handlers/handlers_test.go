package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytrack-backend/internal/logging"
	"studytrack-backend/internal/middleware"
	"studytrack-backend/internal/models"
	"studytrack-backend/internal/repository"
	"studytrack-backend/internal/services"
)

// failingSessions makes every analytics read fail.
type failingSessions struct{}

func (failingSessions) FindByOwner(ctx context.Context, ownerID string) ([]models.StudySession, error) {
	return nil, repository.ErrUnavailable
}

type testEnv struct {
	router http.Handler
	users  *repository.MemoryUserStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logging.Discard()
	ids := repository.NewVolatileIDGenerator()
	users := repository.NewMemoryUserStore(ids)
	directory := repository.NewUserDirectory(nil, users, log)
	sessions := repository.NewSessionRepository(nil, repository.NewMemorySessionStore(ids), log)

	studies := NewStudySessionHandler(services.NewStudyService(sessions, directory, log))
	analytics := NewAnalyticsHandler(services.NewAnalyticsService(sessions, directory, log))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/studies", studies.List)
	r.Post("/studies", studies.Create)
	r.Put("/studies/{id}", studies.Update)
	r.Delete("/studies/{id}", studies.Delete)
	r.Get("/analytics", analytics.Overview)
	r.Get("/analytics/weak-subjects", analytics.WeakSubjects)
	r.Get("/analytics/consistency-score", analytics.ConsistencyScore)
	r.Get("/analytics/recommendations", analytics.Recommendations)

	return &testEnv{router: r, users: users}
}

func (e *testEnv) do(t *testing.T, user models.CurrentUser, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithCurrentUser(req.Context(), user))

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

var (
	alice = models.CurrentUser{ID: "2001", Name: "Alice", Role: models.RoleUser}
	bob   = models.CurrentUser{ID: "2002", Name: "Bob", Role: models.RoleUser}
)

// ─── Study Session Handler Tests ───

func TestStudies_CreateAndList(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, alice, http.MethodPost, "/studies", map[string]any{
		"title": "Algebra", "subject": "Math", "duration": 45, "status": "Completed",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	created := decode[map[string]any](t, rr)
	assert.Equal(t, "Algebra", created["title"])
	assert.Equal(t, alice.ID, created["ownerId"])
	assert.EqualValues(t, 45, created["duration"])
	assert.NotEmpty(t, created["id"])

	rr = env.do(t, alice, http.MethodGet, "/studies", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 1)

	rr = env.do(t, bob, http.MethodGet, "/studies", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]map[string]any](t, rr))
}

func TestStudies_CreateValidationEnvelope(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, alice, http.MethodPost, "/studies", map[string]any{"title": "Algebra", "duration": "lots"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	resp := decode[models.ErrorResponse](t, rr)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "subject")
	assert.Contains(t, resp.Error.Fields, "duration")
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestStudies_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/studies", bytes.NewBufferString("{not json"))
	req = req.WithContext(middleware.WithCurrentUser(req.Context(), alice))
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStudies_UpdateAndDeleteAreOwnerScoped(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, alice, http.MethodPost, "/studies", map[string]any{"title": "Algebra", "subject": "Math", "duration": 30})
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decode[map[string]any](t, rr)["id"].(string)

	rr = env.do(t, bob, http.MethodPut, "/studies/"+id, map[string]any{"title": "Mine"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, bob, http.MethodDelete, "/studies/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, alice, http.MethodPut, "/studies/"+id, map[string]any{"status": "Completed"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Completed", decode[map[string]any](t, rr)["status"])

	rr = env.do(t, alice, http.MethodDelete, "/studies/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, id, decode[map[string]string](t, rr)["id"])

	rr = env.do(t, alice, http.MethodDelete, "/studies/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// ─── Analytics Handler Tests ───

func TestAnalytics_OverviewShape(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]any{
		{"title": "A", "subject": "Math", "duration": 90, "status": "Completed"},
		{"title": "B", "subject": "Art", "duration": 10},
	} {
		require.Equal(t, http.StatusCreated, env.do(t, alice, http.MethodPost, "/studies", body).Code)
	}

	rr := env.do(t, alice, http.MethodGet, "/analytics", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	overview := decode[map[string]any](t, rr)
	assert.EqualValues(t, 1.7, overview["totalHours"])
	assert.EqualValues(t, 2, overview["totalSessions"])
	assert.EqualValues(t, 1, overview["completedSessions"])
	assert.EqualValues(t, 50, overview["completionRate"])
	assert.Len(t, overview["weeklyActivity"], 7)

	subjects := overview["subjectStats"].(map[string]any)
	math := subjects["Math"].(map[string]any)
	assert.EqualValues(t, 90, math["duration"])
	assert.EqualValues(t, 1, math["count"])
	assert.EqualValues(t, 1, math["completed"])
}

func TestAnalytics_EmptyUserViews(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, alice, http.MethodGet, "/analytics/weak-subjects", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"weakSubjects":[],"strongSubjects":[]}`, rr.Body.String())

	rr = env.do(t, alice, http.MethodGet, "/analytics/consistency-score", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"consistencyScore":0,"level":"Poor"}`, rr.Body.String())

	rr = env.do(t, alice, http.MethodGet, "/analytics/recommendations", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"recommendations":[]}`, rr.Body.String())
}

func TestAnalytics_UnavailableIs503(t *testing.T) {
	h := NewAnalyticsHandler(services.NewAnalyticsService(failingSessions{}, nil, logging.Discard()))

	req := httptest.NewRequest(http.MethodGet, "/analytics", nil)
	req = req.WithContext(middleware.WithCurrentUser(req.Context(), alice))
	rr := httptest.NewRecorder()
	h.Overview(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	resp := decode[models.ErrorResponse](t, rr)
	assert.Equal(t, "ANALYTICS_UNAVAILABLE", resp.Error.Code)
	assert.Equal(t, "Analytics temporarily unavailable", resp.Error.Message)
}

// ─── Error Mapping Tests ───

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"title": "required"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &services.ConflictError{Message: "taken"}, http.StatusConflict, "CONFLICT"},
		{"not found", &services.NotFoundError{Message: "gone"}, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", &services.UnauthorizedError{Message: "no"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", &services.ForbiddenError{Message: "no"}, http.StatusForbidden, "FORBIDDEN"},
		{"rate limited", &services.RateLimitError{Message: "slow down"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"analytics", services.ErrAnalyticsUnavailable, http.StatusServiceUnavailable, "ANALYTICS_UNAVAILABLE"},
		{"store down", repository.ErrUnavailable, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", "req-1")
			rr := httptest.NewRecorder()

			handleServiceError(rr, req, tc.err)

			assert.Equal(t, tc.status, rr.Code)
			resp := decode[models.ErrorResponse](t, rr)
			assert.Equal(t, tc.code, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}
