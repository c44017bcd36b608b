package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studytrack-backend/internal/models"
)

type contextKey string

const CurrentUserKey contextKey = "current_user"

// UserResolver looks up the account named by a token's user_id claim.
type UserResolver interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type JWTAuth struct {
	Secret    []byte
	AccessTTL time.Duration
	users     UserResolver
}

func NewJWTAuth(secret string, accessTTL time.Duration, users UserResolver) *JWTAuth {
	return &JWTAuth{Secret: []byte(secret), AccessTTL: accessTTL, users: users}
}

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	UserID string
	Role   models.Role
}

// GenerateAccessToken creates an HS256 JWT that expires after AccessTTL.
func (j *JWTAuth) GenerateAccessToken(userID string, role models.Role) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     now.Add(j.AccessTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

var (
	errTokenExpired = errors.New("token has expired")
	errTokenInvalid = errors.New("invalid token")
)

func (j *JWTAuth) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errTokenExpired
		}
		return nil, errTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errTokenInvalid
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, errTokenInvalid
	}
	role, _ := claims["role"].(string)

	return &AccessClaims{UserID: userID, Role: models.Role(role)}, nil
}

// Middleware validates the bearer token, resolves the account and attaches it
// to the request context.
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header", r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format", r)
			return
		}

		claims, err := j.ParseAccessToken(parts[1])
		if errors.Is(err, errTokenExpired) {
			writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired", r)
			return
		}
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", r)
			return
		}

		// Role comes from the account, not the token, so demotions apply immediately.
		user, err := j.users.GetByID(r.Context(), claims.UserID)
		if err != nil || user == nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "User not found", r)
			return
		}

		ctx := context.WithValue(r.Context(), CurrentUserKey, user.Current())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCurrentUser extracts the authenticated user from the request context.
func GetCurrentUser(ctx context.Context) (models.CurrentUser, bool) {
	u, ok := ctx.Value(CurrentUserKey).(models.CurrentUser)
	return u, ok
}

// WithCurrentUser attaches u to ctx the way Middleware does.
func WithCurrentUser(ctx context.Context, u models.CurrentUser) context.Context {
	return context.WithValue(ctx, CurrentUserKey, u)
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
		},
	})
}
