package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// RefreshStore keeps opaque refresh tokens in redis with a TTL. Each
// token is single-use; Rotate consumes it.
type RefreshStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRefreshStore constructs RefreshStore.
func NewRefreshStore(rdb *redis.Client, ttl time.Duration) *RefreshStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RefreshStore{rdb: rdb, ttl: ttl}
}

func refreshKey(token string) string {
	return "auth:refresh:" + token
}

// Issue stores a new refresh token for the employee.
func (s *RefreshStore) Issue(ctx context.Context, employeeID int64) (string, error) {
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, refreshKey(token), employeeID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return token, nil
}

// Consume resolves a refresh token to its employee id and deletes it.
func (s *RefreshStore) Consume(ctx context.Context, token string) (int64, error) {
	val, err := s.rdb.GetDel(ctx, refreshKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("%w: unknown refresh token", httpx.ErrUnauthorized)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve refresh token: %w", err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: corrupt refresh token", httpx.ErrUnauthorized)
	}
	return id, nil
}

// Revoke drops a refresh token if it exists.
func (s *RefreshStore) Revoke(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, refreshKey(token)).Err()
}
