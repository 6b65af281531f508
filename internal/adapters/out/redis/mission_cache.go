// Package redis keeps mission tracking views in Redis so that polling clients do
// not hit the database on every refresh.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dronedispatch/internal/core/domain/model/kernel"
	"dronedispatch/internal/pkg/errs"
	"dronedispatch/internal/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Key layout and the default lifetime of a cached view.
const (
	KeyPrefixMission = "mission"
	DefaultTTL       = 30 * time.Second
)

// Config holds the connection settings. TTL bounds how stale a view can get if
// an invalidation is lost.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// commands is the part of *redis.Client the cache uses.
type commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// MissionCache implements ports.MissionCache with JSON encoded values under
// "mission:<id>" keys.
type MissionCache struct {
	client commands
	closer func() error
	ttl    time.Duration
	log    *logrus.Entry
}

// Connect opens a client and pings the server once.
func Connect(ctx context.Context, cfg Config, log *logrus.Entry) (*MissionCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, errs.NewExternalDependencyError("redis", err)
	}

	cache := NewMissionCache(rdb, cfg.TTL, log)
	cache.closer = rdb.Close
	cache.log.WithField("addr", cfg.Addr).Info("Connected to Redis")
	return cache, nil
}

// NewMissionCache wraps an existing client. A zero ttl uses DefaultTTL.
func NewMissionCache(client commands, ttl time.Duration, log *logrus.Entry) *MissionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Discard()
	}
	return &MissionCache{
		client: client,
		ttl:    ttl,
		log:    logger.Component(log, "mission-cache"),
	}
}

// GenerateKey joins prefix and id, e.g. "mission:7c9e...".
func GenerateKey(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// Get returns (false, nil) on a miss. A value that no longer decodes into dst is
// an error; the caller falls back to the database.
func (c *MissionCache) Get(ctx context.Context, id kernel.UUID, dst any) (bool, error) {
	key := GenerateKey(KeyPrefixMission, id.String())

	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errs.NewExternalDependencyError("redis", err)
	}

	if err = json.Unmarshal([]byte(val), dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal value for key %s: %w", key, err)
	}

	c.log.WithField("key", key).Debug("Mission view served from cache")
	return true, nil
}

// Set stores view with the configured TTL.
func (c *MissionCache) Set(ctx context.Context, id kernel.UUID, view any) error {
	key := GenerateKey(KeyPrefixMission, id.String())

	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if err = c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return errs.NewExternalDependencyError("redis", err)
	}
	return nil
}

// Invalidate deletes the key. Deleting a missing key is not an error.
func (c *MissionCache) Invalidate(ctx context.Context, id kernel.UUID) error {
	key := GenerateKey(KeyPrefixMission, id.String())

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return errs.NewExternalDependencyError("redis", err)
	}

	c.log.WithField("key", key).Debug("Mission view invalidated")
	return nil
}

// Close releases the client opened by Connect.
func (c *MissionCache) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
