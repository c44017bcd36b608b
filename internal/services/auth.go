package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"studytrack-backend/internal/logging"
	"studytrack-backend/internal/middleware"
	"studytrack-backend/internal/models"
	"studytrack-backend/internal/repository"
)

// UserDirectory is the account store behind registration and login.
type UserDirectory interface {
	Create(ctx context.Context, u models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type AuthService struct {
	users      UserDirectory
	tokens     TokenStore // nil disables refresh tokens
	jwt        *middleware.JWTAuth
	refreshTTL time.Duration
	log        logging.Logger
}

func NewAuthService(users UserDirectory, tokens TokenStore, jwt *middleware.JWTAuth, refreshTTL time.Duration, log logging.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		jwt:        jwt,
		refreshTTL: refreshTTL,
		log:        log.With("component", "auth_service"),
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const bcryptCost = 12

var errInvalidCredentials = &UnauthorizedError{Message: "Invalid email or password"}

// Register creates a regular user account and signs it in. The admin role is
// never granted here.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthTokens, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	fieldErrors := make(map[string]string)
	if name == "" {
		fieldErrors["name"] = "Name is required"
	}
	if !emailRegex.MatchString(email) {
		fieldErrors["email"] = "Invalid email format"
	}
	if err := validatePassword(req.Password); err != nil {
		fieldErrors["password"] = err.Error()
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, &ConflictError{Message: "Email already in use"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, models.User{
		Name:         name,
		Email:        email,
		Role:         models.RoleUser,
		PasswordHash: string(hash),
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, &ConflictError{Message: "Email already in use"}
	}
	if err != nil {
		s.log.Error(ctx, "failed to register user", "error", err)
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return s.issueTokens(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token: the old one is consumed and a new pair issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	expired := &UnauthorizedError{Message: "Invalid or expired refresh token. Please log in again."}
	if s.tokens == nil || refreshToken == "" {
		return nil, expired
	}

	userID, err := s.tokens.Take(ctx, refreshToken)
	if errors.Is(err, ErrTokenNotFound) {
		return nil, expired
	}
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, expired
	}
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if s.tokens == nil || refreshToken == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, refreshToken)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	tokens := &models.AuthTokens{
		User:        user.Current(),
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwt.AccessTTL.Seconds()),
	}

	if s.tokens == nil {
		return tokens, nil
	}

	refreshToken, err := generateToken(32)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, refreshToken, user.ID, s.refreshTTL); err != nil {
		// Sign-in still succeeds; the client re-authenticates when the access token expires.
		s.log.Warn(ctx, "refresh token not stored", "user_id", user.ID, "error", err)
		return tokens, nil
	}
	tokens.RefreshToken = refreshToken
	return tokens, nil
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func validatePassword(pw string) error {
	if len(pw) < 6 {
		return errors.New("Password must be at least 6 characters")
	}
	return nil
}
