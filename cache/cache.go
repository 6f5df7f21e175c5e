// Package cache holds the read-through cache for public certificate verification.
package cache

import (
	"context"
	"encoding/json"
	"time"

	courseModels "lms/models/course"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// VerificationCache stores public certificate views by verification code.
// Implementations never fail the caller; a broken cache behaves like a miss.
type VerificationCache interface {
	Get(ctx context.Context, code string) (*courseModels.PublicCertificate, bool)
	Set(ctx context.Context, code string, view courseModels.PublicCertificate)
	Delete(ctx context.Context, code string)
}

type RedisVerificationCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisVerificationCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisVerificationCache {
	return &RedisVerificationCache{client: client, ttl: ttl, log: log}
}

func key(code string) string {
	return "certificate:verify:" + code
}

func (c *RedisVerificationCache) Get(ctx context.Context, code string) (*courseModels.PublicCertificate, bool) {
	val, err := c.client.Get(ctx, key(code)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("verification cache read failed", zap.String("code", code), zap.Error(err))
		}
		return nil, false
	}
	var view courseModels.PublicCertificate
	if err := json.Unmarshal(val, &view); err != nil {
		c.log.Warn("verification cache entry corrupt", zap.String("code", code), zap.Error(err))
		return nil, false
	}
	return &view, true
}

func (c *RedisVerificationCache) Set(ctx context.Context, code string, view courseModels.PublicCertificate) {
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(code), data, c.ttl).Err(); err != nil {
		c.log.Warn("verification cache write failed", zap.String("code", code), zap.Error(err))
	}
}

func (c *RedisVerificationCache) Delete(ctx context.Context, code string) {
	if err := c.client.Del(ctx, key(code)).Err(); err != nil {
		c.log.Warn("verification cache evict failed", zap.String("code", code), zap.Error(err))
	}
}

// Nop is used when no REDIS_ADDR is configured
type Nop struct{}

func (Nop) Get(context.Context, string) (*courseModels.PublicCertificate, bool) { return nil, false }
func (Nop) Set(context.Context, string, courseModels.PublicCertificate)       {}
func (Nop) Delete(context.Context, string)                                      {}
