package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const onlineUsersKey = "online_users"

// RedisService mirrors the in-process presence registry into Redis so the
// REST side can answer "who is online" without reaching into the hub, and
// backs the request rate limiter. The hub remains the source of truth.
type RedisService struct {
	client *redis.Client
}

func NewRedisService(client *redis.Client) *RedisService {
	return &RedisService{client: client}
}

func (r *RedisService) SetUserOnline(ctx context.Context, userID uint) error {
	id := strconv.FormatUint(uint64(userID), 10)

	pipe := r.client.Pipeline()
	pipe.SAdd(ctx, onlineUsersKey, id)
	pipe.HSet(ctx, fmt.Sprintf("user:%s:status", id), map[string]interface{}{
		"status":    "online",
		"last_seen": time.Now().Unix(),
	})
	pipe.Expire(ctx, fmt.Sprintf("user:%s:status", id), 5*time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("Failed to set user online", "userID", userID, "error", err)
		return err
	}
	return nil
}

func (r *RedisService) SetUserOffline(ctx context.Context, userID uint) error {
	id := strconv.FormatUint(uint64(userID), 10)

	pipe := r.client.Pipeline()
	pipe.SRem(ctx, onlineUsersKey, id)
	pipe.HSet(ctx, fmt.Sprintf("user:%s:status", id), map[string]interface{}{
		"status":    "offline",
		"last_seen": time.Now().Unix(),
	})
	pipe.Expire(ctx, fmt.Sprintf("user:%s:status", id), 24*time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("Failed to set user offline", "userID", userID, "error", err)
		return err
	}
	return nil
}

func (r *RedisService) IsUserOnline(ctx context.Context, userID uint) (bool, error) {
	id := strconv.FormatUint(uint64(userID), 10)
	return r.client.SIsMember(ctx, onlineUsersKey, id).Result()
}

func (r *RedisService) GetOnlineUsers(ctx context.Context) ([]uint, error) {
	members, err := r.client.SMembers(ctx, onlineUsersKey).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// CheckRateLimit counts requests under key within the window and reports
// whether the caller is still under the limit.
func (r *RedisService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}
