package viewstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/bankaccount/pkg/query"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RedisCache is a read-through cache in front of another view repository.
// Cache failures degrade to the inner repository; they are logged, never
// surfaced, since the view is an eventually-consistent derived artifact
// anyway.
type RedisCache struct {
	inner  query.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

type cachedView struct {
	Version int64              `json:"version"`
	View    *query.AccountView `json:"view"`
}

// NewRedisCache wraps a view repository with a Redis cache.
func NewRedisCache(
	inner query.Repository,
	opt *redis.Options,
	prefix string,
	ttl time.Duration,
	logger *slog.Logger,
) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{
		inner:  inner,
		client: redis.NewClient(opt),
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisCache) key(viewID string) string { return c.prefix + "view:" + viewID }

// Load implements query.Repository. Concurrent misses for the same view are
// collapsed into a single inner load.
func (c *RedisCache) Load(ctx context.Context, viewID string) (*query.AccountView, int64, error) {
	raw, err := c.client.Get(ctx, c.key(viewID)).Result()
	if err == nil {
		var cached cachedView
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached.View, cached.Version, nil
		}
		c.logger.Warn("discarding corrupt cached view", "view_id", viewID)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Error("view cache get failed", "view_id", viewID, "error", err)
	}

	result, err, _ := c.group.Do(viewID, func() (any, error) {
		view, version, err := c.inner.Load(ctx, viewID)
		if err != nil {
			return nil, err
		}
		if view != nil {
			c.set(ctx, viewID, version, view)
		}
		return cachedView{Version: version, View: view}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	cached := result.(cachedView)
	return cached.View, cached.Version, nil
}

// Save implements query.Repository, writing through to the cache.
func (c *RedisCache) Save(ctx context.Context, viewID string, version int64, view *query.AccountView) error {
	if err := c.inner.Save(ctx, viewID, version, view); err != nil {
		return err
	}
	c.set(ctx, viewID, version, view)
	return nil
}

func (c *RedisCache) set(ctx context.Context, viewID string, version int64, view *query.AccountView) {
	payload, err := json.Marshal(cachedView{Version: version, View: view})
	if err != nil {
		c.logger.Error("failed to serialize view for cache", "view_id", viewID, "error", err)
		return
	}
	if err := c.client.Set(ctx, c.key(viewID), payload, c.ttl).Err(); err != nil {
		c.logger.Error("view cache set failed", "view_id", viewID, "error", err)
	}
}

var _ query.Repository = (*RedisCache)(nil)
