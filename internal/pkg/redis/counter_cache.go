package redis

import (
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterCache 计数器的只读缓存，写事务提交后删除对应 key
type CounterCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCounterCache(rdb *redis.Client, ttl time.Duration) *CounterCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CounterCache{rdb: rdb, ttl: ttl}
}

// GetCount 获取计数，未命中或出错时返回 false
func (c *CounterCache) GetCount(ctx context.Context, key string) (int64, bool) {
	value, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WarnContext(ctx, "counter cache read failed", "key", key, "err", err)
		}
		return 0, false
	}
	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// SetCount 设置计数并设置过期时间
func (c *CounterCache) SetCount(ctx context.Context, key string, value int64) {
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		log.WarnContext(ctx, "counter cache write failed", "key", key, "err", err)
	}
}

// Evict 删除一个或多个键
func (c *CounterCache) Evict(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.WarnContext(ctx, "counter cache evict failed", "keys", keys, "err", err)
	}
}

// TryLock 抢占分布式锁
func (c *CounterCache) TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, value, expiration).Result()
}

// UnLock 释放锁
func (c *CounterCache) UnLock(ctx context.Context, key string, value interface{}) {
	c.rdb.Eval(ctx, "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end", []string{key}, value)
}
