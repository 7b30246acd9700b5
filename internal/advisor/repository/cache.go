// internal/advisor/repository/cache.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/common/metrics"
	"ai-advisor/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	profileCacheKey       = "advisor:profile"
	modelCacheKeyPrefix   = "advisor:model:"
	articleCacheKeyPrefix = "advisor:article:"
)

// CachedRepository caches the profile and detail lookups in Redis. Redis
// failures never fail a call; the inner repository answers instead.
type CachedRepository struct {
	Repository
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedRepository(inner Repository, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedRepository {
	return &CachedRepository{
		Repository: inner,
		redis:      rdb,
		ttl:        ttl,
		logger:     log.WithFields(map[string]interface{}{"component": "repository-cache"}),
	}
}

func (c *CachedRepository) GetProfile(ctx context.Context) (models.UserProfile, error) {
	var profile models.UserProfile
	if c.lookup(ctx, "profile", profileCacheKey, &profile) {
		return profile, nil
	}
	profile, err := c.Repository.GetProfile(ctx)
	if err != nil {
		return models.UserProfile{}, err
	}
	c.store(ctx, profileCacheKey, profile)
	return profile, nil
}

func (c *CachedRepository) UpsertProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	saved, err := c.Repository.UpsertProfile(ctx, profile)
	if err != nil {
		return models.UserProfile{}, err
	}
	if err := c.redis.Del(ctx, profileCacheKey).Err(); err != nil {
		c.warn("cache invalidation failed", profileCacheKey, err)
	}
	return saved, nil
}

func (c *CachedRepository) GetModelByID(ctx context.Context, id string) (*models.ModelDetail, error) {
	key := modelCacheKeyPrefix + id
	var cached models.ModelDetail
	if c.lookup(ctx, "model", key, &cached) {
		return &cached, nil
	}
	detail, err := c.Repository.GetModelByID(ctx, id)
	if err != nil || detail == nil {
		return detail, err
	}
	c.store(ctx, key, detail)
	return detail, nil
}

func (c *CachedRepository) GetArticleByID(ctx context.Context, id string) (*models.ArticleDetail, error) {
	key := articleCacheKeyPrefix + id
	var cached models.ArticleDetail
	if c.lookup(ctx, "article", key, &cached) {
		return &cached, nil
	}
	detail, err := c.Repository.GetArticleByID(ctx, id)
	if err != nil || detail == nil {
		return detail, err
	}
	c.store(ctx, key, detail)
	return detail, nil
}

// lookup reports a hit only when the key exists and decodes into dst.
func (c *CachedRepository) lookup(ctx context.Context, kind, key string, dst interface{}) bool {
	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return false
	case err != nil:
		metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		c.warn("cache read failed", key, err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		c.warn("cache entry corrupt", key, err)
		return false
	}
	metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
	return true
}

func (c *CachedRepository) store(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.warn("cache write failed", key, err)
	}
}

func (c *CachedRepository) warn(msg, key string, err error) {
	c.logger.Warn(msg, map[string]interface{}{
		"key":   key,
		"error": apperrors.NewCacheUnavailableError(err).Error(),
	})
}
