package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kapu/chess-guru-go/pkg/chessdto"
)

// RedisCache keeps monthly payloads as JSON blobs in Redis.
type RedisCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisCache(rdb *redis.Client, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{rdb: rdb, logger: logger}
}

// NewRedisCacheFromURL dials Redis from a redis:// URL.
func NewRedisCacheFromURL(redisURL string, logger *zap.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return NewRedisCache(redis.NewClient(opt), logger), nil
}

func (c *RedisCache) key(archiveURL string) string { return "archive:" + archiveURL }

func (c *RedisCache) Get(ctx context.Context, archiveURL string) (*chessdto.MonthPayload, bool) {
	raw, err := c.rdb.Get(ctx, c.key(archiveURL)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Debug("archive cache read failed", zap.String("url", archiveURL), zap.Error(err))
		return nil, false
	}
	var payload chessdto.MonthPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.logger.Debug("archive cache decode failed", zap.String("url", archiveURL), zap.Error(err))
		return nil, false
	}
	return &payload, true
}

func (c *RedisCache) Put(ctx context.Context, archiveURL string, payload *chessdto.MonthPayload, ttl time.Duration) {
	raw, err := json.Marshal(payload)
	if err != nil {
		c.logger.Debug("archive cache encode failed", zap.String("url", archiveURL), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, c.key(archiveURL), raw, ttl).Err(); err != nil {
		c.logger.Debug("archive cache write failed", zap.String("url", archiveURL), zap.Error(err))
	}
}
