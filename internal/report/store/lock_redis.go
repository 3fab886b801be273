package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "skillaudit/pkg/domain"
)

const remarkLockKeyPrefix = "remarklock:report:"

// RedisRemarkLock is the production remark lock: SETNX is the
// compare-and-set across instances, and the TTL bounds how long an
// abandoned submission can hold the flag.
type RedisRemarkLock struct {
	client *redis.Client
}

func NewRedisRemarkLock(client *redis.Client) *RedisRemarkLock {
	return &RedisRemarkLock{client: client}
}

func (l *RedisRemarkLock) Acquire(ctx context.Context, reportID id.ReportID, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, remarkLockKeyPrefix+reportID.String(), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire remark lock: %w", err)
	}
	return ok, nil
}

func (l *RedisRemarkLock) Release(ctx context.Context, reportID id.ReportID) error {
	if err := l.client.Del(ctx, remarkLockKeyPrefix+reportID.String()).Err(); err != nil {
		return fmt.Errorf("release remark lock: %w", err)
	}
	return nil
}
