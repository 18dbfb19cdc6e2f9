package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/programming666/personal-blog/config"
	"github.com/redis/go-redis/v9"
)

// DispatchLock guarantees that at most one dispatcher run works on a broadcast.
// TryAcquire returns ok=false when another holder owns the lock. The returned
// release function is only valid when ok is true.
type DispatchLock interface {
	TryAcquire(ctx context.Context, broadcastID uint, ttl time.Duration) (release func(), ok bool, err error)
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// releaseScript deletes the lock only if it is still held by the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisDispatchLock implements DispatchLock with SET NX, shared by every process
type RedisDispatchLock struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisDispatchLock creates a new Redis dispatch lock
func NewRedisDispatchLock(client *redis.Client, keyPrefix string) *RedisDispatchLock {
	return &RedisDispatchLock{client: client, keyPrefix: keyPrefix}
}

func (l *RedisDispatchLock) key(broadcastID uint) string {
	return l.keyPrefix + "broadcast:dispatch:" + strconv.FormatUint(uint64(broadcastID), 10)
}

// TryAcquire implements DispatchLock
func (l *RedisDispatchLock) TryAcquire(ctx context.Context, broadcastID uint, ttl time.Duration) (func(), bool, error) {
	key := l.key(broadcastID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}

	release := func() {
		// The run context may already be cancelled; release on a fresh one.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.client, []string{key}, token).Err()
	}
	return release, true, nil
}

// MemoryDispatchLock implements DispatchLock inside one process
type MemoryDispatchLock struct {
	entries *cache.Cache
}

// NewMemoryDispatchLock creates a new in-process dispatch lock
func NewMemoryDispatchLock() *MemoryDispatchLock {
	return &MemoryDispatchLock{entries: cache.New(cache.NoExpiration, time.Minute)}
}

// TryAcquire implements DispatchLock
func (l *MemoryDispatchLock) TryAcquire(_ context.Context, broadcastID uint, ttl time.Duration) (func(), bool, error) {
	key := strconv.FormatUint(uint64(broadcastID), 10)
	token := uuid.NewString()

	// Add fails while an unexpired entry exists
	if err := l.entries.Add(key, token, ttl); err != nil {
		return nil, false, nil
	}

	release := func() {
		if v, found := l.entries.Get(key); found && v.(string) == token {
			l.entries.Delete(key)
		}
	}
	return release, true, nil
}
