package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytrack-backend/internal/logging"
	"studytrack-backend/internal/middleware"
	"studytrack-backend/internal/models"
	"studytrack-backend/internal/repository"
)

type memoryTokens struct {
	tokens  map[string]string
	saveErr error
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{tokens: make(map[string]string)}
}

func (m *memoryTokens) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.tokens[token] = userID
	return nil
}

func (m *memoryTokens) Take(ctx context.Context, token string) (string, error) {
	userID, ok := m.tokens[token]
	if !ok {
		return "", ErrTokenNotFound
	}
	delete(m.tokens, token)
	return userID, nil
}

func (m *memoryTokens) Revoke(ctx context.Context, token string) error {
	delete(m.tokens, token)
	return nil
}

func newTestAuth(tokens TokenStore) (*AuthService, *middleware.JWTAuth) {
	log := logging.Discard()
	users := repository.NewUserDirectory(nil, repository.NewMemoryUserStore(repository.NewVolatileIDGenerator()), log)
	jwt := middleware.NewJWTAuth("test-secret", 15*time.Minute, users)
	return NewAuthService(users, tokens, jwt, time.Hour, log), jwt
}

func TestAuth_RegisterIssuesTokens(t *testing.T) {
	tokens := newMemoryTokens()
	svc, jwt := newTestAuth(tokens)

	out, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "Ada", Email: "Ada@Example.com", Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", out.User.Email)
	assert.Equal(t, models.RoleUser, out.User.Role)
	assert.Equal(t, 900, out.ExpiresIn)
	assert.NotEmpty(t, out.RefreshToken)
	assert.Equal(t, out.User.ID, tokens.tokens[out.RefreshToken])

	claims, err := jwt.ParseAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestAuth_RegisterValidation(t *testing.T) {
	svc, _ := newTestAuth(nil)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "nope", Password: "123"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestAuth_RegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuth(nil)
	ctx := context.Background()
	req := models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123"}

	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestAuth_Login(t *testing.T) {
	svc, _ := newTestAuth(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)

	out, err := svc.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.Empty(t, out.RefreshToken, "no refresh tokens without a token store")

	var unauthorized *UnauthorizedError
	_, err = svc.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorAs(t, err, &unauthorized)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorAs(t, err, &unauthorized)
}

func TestAuth_RefreshRotatesToken(t *testing.T) {
	tokens := newMemoryTokens()
	svc, _ := newTestAuth(tokens)
	ctx := context.Background()

	first, err := svc.Register(ctx, models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	var unauthorized *UnauthorizedError
	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorAs(t, err, &unauthorized)

	require.NoError(t, svc.Logout(ctx, second.RefreshToken))
	_, err = svc.Refresh(ctx, second.RefreshToken)
	assert.ErrorAs(t, err, &unauthorized)
}

func TestAuth_RefreshWithoutTokenStore(t *testing.T) {
	svc, _ := newTestAuth(nil)

	_, err := svc.Refresh(context.Background(), "anything")
	var unauthorized *UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)
	assert.NoError(t, svc.Logout(context.Background(), "anything"))
}

func TestAuth_TokenStoreFailureStillSignsIn(t *testing.T) {
	tokens := newMemoryTokens()
	tokens.saveErr = errors.New("redis down")
	svc, _ := newTestAuth(tokens)

	out, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.Empty(t, out.RefreshToken)
}
