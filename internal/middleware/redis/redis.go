// Package redis is a redis cache storage.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "cache:"

var log = logrus.WithField("layer", "middleware").WithField("package", "redis")

// Storage ...
type Storage struct {
	c redis.Cmdable
}

// NewStorage creates new instance of Storage.
func NewStorage(c redis.Cmdable) *Storage {
	return &Storage{c: c}
}

// Get returns cached content. Redis failures are treated as a cache miss.
func (s *Storage) Get(ctx context.Context, key string) []byte {
	b, err := s.c.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Error("failed to get cached content")
		}
		return nil
	}

	return b
}

// Set ...
func (s *Storage) Set(ctx context.Context, key string, content []byte, ttl time.Duration) {
	if err := s.c.Set(ctx, keyPrefix+key, content, ttl).Err(); err != nil {
		log.WithError(err).Error("failed to set cached content")
	}
}
