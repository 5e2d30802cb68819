// Package cache holds the extended-bundle caches used by the weather service.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-trading-insights/internal/weather"
)

// KeyPrefix namespaces bundle entries in Redis.
const KeyPrefix = "weather:extended:"

// RedisBundleCache stores extended bundles as JSON strings in Redis.
type RedisBundleCache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    logrus.FieldLogger
}

// NewRedisBundleCache wraps client. Entries expire after ttl.
func NewRedisBundleCache(client redis.Cmdable, ttl time.Duration, log logrus.FieldLogger) *RedisBundleCache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RedisBundleCache{
		client: client,
		ttl:    ttl,
		log:    log.WithField("component", "redis-cache"),
	}
}

func (c *RedisBundleCache) key(lat, lon float64) string {
	return KeyPrefix + weather.CoordinateKey(lat, lon)
}

// Get returns the cached bundle. Redis failures are logged and reported as a miss.
func (c *RedisBundleCache) Get(ctx context.Context, lat, lon float64) (weather.RawWeatherBundle, bool) {
	key := c.key(lat, lon)

	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).WithField("key", key).Warn("redis get failed")
		}
		return weather.RawWeatherBundle{}, false
	}

	var bundle weather.RawWeatherBundle
	if err := json.Unmarshal([]byte(data), &bundle); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("discarding undecodable cache entry")
		return weather.RawWeatherBundle{}, false
	}
	return bundle, true
}

// Set stores bundle under the coordinate key.
func (c *RedisBundleCache) Set(ctx context.Context, lat, lon float64, bundle weather.RawWeatherBundle) {
	key := c.key(lat, lon)

	data, err := json.Marshal(bundle)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("failed to encode bundle")
		return
	}
	if err := c.client.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("redis set failed")
	}
}
