package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedSessionPrefix = "session:revoked:"

// SessionRepository 记录已注销的会话 ID，直到令牌自然过期
type SessionRepository struct {
	Redis *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{Redis: rdb}
}

func (r *SessionRepository) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if r.Redis == nil || ttl <= 0 {
		return nil
	}
	return r.Redis.Set(ctx, revokedSessionPrefix+sessionID, "1", ttl).Err()
}

func (r *SessionRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	if r.Redis == nil {
		return false, nil
	}
	n, err := r.Redis.Exists(ctx, revokedSessionPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
