package scheduler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker 여러 인스턴스 중 하나만 작업을 실행하도록 하는 분산 락
type Locker interface {
	// TryLock 획득하면 true. TTL이 지나면 자동 해제.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisLocker SETNX 기반 락
type RedisLocker struct {
	client *redis.Client
	prefix string
}

// NewRedisLocker 생성자
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, prefix: "scheduler:lock:"}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+key, time.Now().Unix(), ttl).Result()
}
