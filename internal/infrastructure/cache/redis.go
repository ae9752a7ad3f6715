// Package cache wraps redis for the stock snapshot, invoice sequence and
// cross-instance locks. Every method is safe to call on a Cache with no redis
// client; reads then miss, writes are dropped and locks fall back to an
// in-process mutex.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/tillpoint-api/pkg/logger"
)

// ErrLockNotObtained is returned when another holder owns the lock.
var ErrLockNotObtained = errors.New("lock is held by another operation")

type Cache struct {
	rdb    *redis.Client
	locker *redislock.Client

	mu    sync.Mutex
	local map[string]bool
}

// New wraps an existing client. rdb may be nil.
func New(rdb *redis.Client) *Cache {
	c := &Cache{rdb: rdb, local: make(map[string]bool)}
	if rdb != nil {
		c.locker = redislock.New(rdb)
	}
	return c
}

// Connect dials addr and pings it once. On failure it logs and returns a
// Cache without redis rather than an error.
func Connect(ctx context.Context, addr, password string, db int) *Cache {
	if addr == "" {
		logger.Get().Info("REDIS_ADDR not set; running without redis")
		return New(nil)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 50,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.LogWarn("cache", "Connect", "redis ping failed; running without redis", addr, err)
		_ = rdb.Close()
		return New(nil)
	}
	logger.Get().WithField("addr", addr).Info("connected to redis")
	return New(rdb)
}

// Enabled reports whether a redis client is attached.
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// GetObject decodes key into dest. It reports false on a miss.
func (c *Cache) GetObject(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) SetObject(ctx context.Context, key string, obj interface{}, exp time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, exp).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Incr adds one to key and returns the new value. A freshly created key gets
// exp as its TTL. Without redis it returns (0, nil).
func (c *Cache) Incr(ctx context.Context, key string, exp time.Duration) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 && exp > 0 {
		_ = c.rdb.Expire(ctx, key, exp).Err()
	}
	return n, nil
}

// SetIfAbsent stores value under key only when key does not exist.
func (c *Cache) SetIfAbsent(ctx context.Context, key string, value int64, exp time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.SetNX(ctx, key, value, exp).Err()
}

// WithLock runs fn while holding key. It does not wait: a held lock yields
// ErrLockNotObtained immediately.
func (c *Cache) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	if !c.Enabled() {
		return c.withLocalLock(ctx, key, fn)
	}
	lock, err := c.locker.Obtain(ctx, "lock:"+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return ErrLockNotObtained
	}
	if err != nil {
		return fmt.Errorf("obtain lock %s: %w", key, err)
	}
	defer func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}()
	return fn(ctx)
}

func (c *Cache) withLocalLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	c.mu.Lock()
	if c.local[key] {
		c.mu.Unlock()
		return ErrLockNotObtained
	}
	c.local[key] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.local, key)
		c.mu.Unlock()
	}()
	return fn(ctx)
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}
