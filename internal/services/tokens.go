package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore keeps refresh tokens until they are used, revoked or expire.
type TokenStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	// Take returns the owner of token and deletes it. A missing token
	// returns ErrTokenNotFound.
	Take(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

var ErrTokenNotFound = errors.New("refresh token not found")

const refreshTokenPrefix = "refresh_token:"

type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshTokenPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Take(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, refreshTokenPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read refresh token: %w", err)
	}
	return userID, nil
}

func (s *RedisTokenStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, refreshTokenPrefix+token).Err()
}
