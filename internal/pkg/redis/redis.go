package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds redis connection settings.
type Config struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	return nil
}

// Client wraps go-redis with the coordination primitives the application
// needs.
type Client struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// New creates a redis client and verifies connectivity.
func New(cfg *Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("redis client initialized", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// IsNil reports whether err is the redis nil-reply error.
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// unlockScript deletes the key only while it still holds the caller's token,
// so an expired-and-reacquired lock is never released by the old holder.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// TryLock attempts to take a TTL-bounded lock on key. It returns the holder
// token and true on success, and false without error when the lock is held
// elsewhere.
func (c *Client) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()

	ok, err := c.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}

	c.logger.Debug("lock acquired",
		zap.String("key", key),
		zap.Duration("ttl", ttl),
	)
	return token, true, nil
}

// Unlock releases the lock if the caller still holds it. Losing the lock to
// TTL expiry beforehand is not an error.
func (c *Client) Unlock(ctx context.Context, key, token string) error {
	released, err := c.rdb.Eval(ctx, unlockScript, []string{key}, token).Result()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	if released.(int64) == 0 {
		c.logger.Warn("lock expired before release", zap.String("key", key))
	}
	return nil
}
