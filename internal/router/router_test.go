package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytrack-backend/internal/handlers"
	"studytrack-backend/internal/logging"
	"studytrack-backend/internal/middleware"
	"studytrack-backend/internal/models"
	"studytrack-backend/internal/repository"
	"studytrack-backend/internal/services"
)

type testServer struct {
	handler http.Handler
	jwt     *middleware.JWTAuth
	users   *repository.MemoryUserStore
}

func newTestServer(t *testing.T, authLimit int) *testServer {
	t.Helper()
	log := logging.Discard()
	ids := repository.NewVolatileIDGenerator()
	users := repository.NewMemoryUserStore(ids)
	directory := repository.NewUserDirectory(nil, users, log)
	sessions := repository.NewSessionRepository(nil, repository.NewMemorySessionStore(ids), log)

	jwtAuth := middleware.NewJWTAuth("router-test-secret", 15*time.Minute, directory)
	studyService := services.NewStudyService(sessions, directory, log)
	analyticsService := services.NewAnalyticsService(sessions, directory, log)

	h := New(
		jwtAuth,
		middleware.NewRateLimiter(authLimit, time.Minute),
		handlers.NewAuthHandler(services.NewAuthService(directory, nil, jwtAuth, time.Hour, log)),
		handlers.NewStudySessionHandler(studyService),
		handlers.NewAnalyticsHandler(analyticsService),
		handlers.NewAdminHandler(studyService, analyticsService),
		"http://localhost:5173",
	)
	return &testServer{handler: h, jwt: jwtAuth, users: users}
}

// seedUser stores an account directly and returns a bearer token for it.
func (s *testServer) seedUser(t *testing.T, name string, role models.Role) (models.User, string) {
	t.Helper()
	u := models.User{Name: name, Email: name + "@example.com", Role: role, PasswordHash: "unused"}
	require.NoError(t, s.users.Create(context.Background(), &u))

	token, err := s.jwt.GenerateAccessToken(u.ID, u.Role)
	require.NoError(t, err)
	return u, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, 10)

	rr := srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRegisterThenUseToken(t *testing.T) {
	srv := newTestServer(t, 10)

	rr := srv.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var tokens models.AuthTokens
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&tokens))
	assert.Equal(t, models.RoleUser, tokens.User.Role)

	rr = srv.do(t, http.MethodPost, "/api/v1/studies", tokens.AccessToken, map[string]any{
		"title": "Algebra", "subject": "Math", "duration": 30,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = srv.do(t, http.MethodGet, "/api/v1/analytics", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t, 10)

	for _, path := range []string{"/api/v1/studies", "/api/v1/analytics", "/api/v1/analytics/recommendations", "/api/v1/admin/users"} {
		rr := srv.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	rr := srv.do(t, http.MethodGet, "/api/v1/studies", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestTokenForUnknownUserIsRejected(t *testing.T) {
	srv := newTestServer(t, 10)

	token, err := srv.jwt.GenerateAccessToken("999", models.RoleAdmin)
	require.NoError(t, err)

	rr := srv.do(t, http.MethodGet, "/api/v1/admin/users", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminRoutes(t *testing.T) {
	srv := newTestServer(t, 10)
	learner, learnerToken := srv.seedUser(t, "learner", models.RoleUser)
	_, adminToken := srv.seedUser(t, "admin", models.RoleAdmin)

	rr := srv.do(t, http.MethodGet, "/api/v1/admin/users", learnerToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = srv.do(t, http.MethodPost, "/api/v1/studies", learnerToken, map[string]any{
		"title": "Essay", "subject": "English", "duration": 60, "status": "Completed",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created models.StudySession
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))

	rr = srv.do(t, http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "unused", "password hashes never leave the server")

	rr = srv.do(t, http.MethodGet, "/api/v1/admin/analytics", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var rollup services.AdminRollup
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&rollup))
	assert.Equal(t, 1.0, rollup.Global.TotalHours)
	assert.Equal(t, 1, rollup.Global.TotalSessions)
	assert.Equal(t, 100, rollup.Global.CompletionRate)
	require.Len(t, rollup.PerUser, 2)
	assert.Equal(t, learner.ID, rollup.PerUser[0].User.ID)

	rr = srv.do(t, http.MethodGet, "/api/v1/admin/studies", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = srv.do(t, http.MethodDelete, "/api/v1/admin/studies/"+created.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = srv.do(t, http.MethodDelete, "/api/v1/admin/studies/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	srv := newTestServer(t, 2)
	body := map[string]string{"email": "nobody@example.com", "password": "whatever1"}

	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodPost, "/api/v1/auth/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodPost, "/api/v1/auth/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, srv.do(t, http.MethodPost, "/api/v1/auth/login", "", body).Code)
}
