// Package cache keeps serialized document projections in redis so repeat
// reads skip the store hydration queries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pagekeep/pagekeep/internal/compress"
	"github.com/pagekeep/pagekeep/internal/snapshot"
)

const projectionTTL = 10 * time.Minute

func documentKey(id string) string {
	return "document:" + id
}

// ProjectionCache stores document projections keyed by document ID.
type ProjectionCache interface {
	// GetProjection returns the cached projection, or nil on a miss.
	GetProjection(ctx context.Context, id string) (*snapshot.DocumentProjection, error)
	// SetProjection caches a projection.
	SetProjection(ctx context.Context, proj *snapshot.DocumentProjection) error
	// Invalidate drops a document's cached projection.
	Invalidate(ctx context.Context, id string) error
}

var _ ProjectionCache = (*RedisProjectionCache)(nil)

type RedisProjectionCache struct {
	client  *redis.Client
	encoder compress.Codec
}

func NewRedisProjectionCache(addr string) *RedisProjectionCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // No password set
		DB:       0,  // Use default DB
		Protocol: 2,  // Connection protocol
	})
	return &RedisProjectionCache{client: client, encoder: compress.NewGZip()}
}

func (r *RedisProjectionCache) GetProjection(ctx context.Context, id string) (*snapshot.DocumentProjection, error) {
	data, err := r.client.Get(ctx, documentKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	decoded, err := r.encoder.Decode(data)
	if err != nil {
		return nil, err
	}
	var proj snapshot.DocumentProjection
	if err := json.Unmarshal(decoded, &proj); err != nil {
		return nil, err
	}
	return &proj, nil
}

func (r *RedisProjectionCache) SetProjection(ctx context.Context, proj *snapshot.DocumentProjection) error {
	data, err := json.Marshal(proj)
	if err != nil {
		return err
	}
	encoded, err := r.encoder.Encode(data)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, documentKey(proj.ID), encoded, projectionTTL).Err()
}

func (r *RedisProjectionCache) Invalidate(ctx context.Context, id string) error {
	return r.client.Del(ctx, documentKey(id)).Err()
}

// NopProjectionCache is used when redis is not configured.
type NopProjectionCache struct{}

func (NopProjectionCache) GetProjection(ctx context.Context, id string) (*snapshot.DocumentProjection, error) {
	return nil, nil
}

func (NopProjectionCache) SetProjection(ctx context.Context, proj *snapshot.DocumentProjection) error {
	return nil
}

func (NopProjectionCache) Invalidate(ctx context.Context, id string) error { return nil }

// ForAddr returns a redis-backed cache when addr is set, the no-op cache
// otherwise.
func ForAddr(addr string) ProjectionCache {
	if addr == "" {
		logrus.Debug("cache: redis not configured, projections uncached")
		return NopProjectionCache{}
	}
	return NewRedisProjectionCache(addr)
}
