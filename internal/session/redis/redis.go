// Package redis is implementation of session store.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Decentr-net/photon/internal/session"
)

const keyPrefix = "session:"

type store struct {
	c redis.Cmdable
}

// New creates new instance of store.
func New(c redis.Cmdable) session.Store {
	return store{c: c}
}

func (s store) Save(ctx context.Context, v *session.Session) error {
	ttl := time.Until(v.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s is already expired", v.ID)
	}

	if err := s.c.Set(ctx, keyPrefix+v.ID, v.UserID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set: %w", err)
	}

	return nil
}

func (s store) Get(ctx context.Context, id string) (*session.Session, error) {
	pipe := s.c.Pipeline()
	get := pipe.Get(ctx, keyPrefix+id)
	ttl := pipe.PTTL(ctx, keyPrefix+id)

	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get: %w", err)
	}

	return &session.Session{
		ID:        id,
		UserID:    get.Val(),
		ExpiresAt: time.Now().Add(ttl.Val()).Truncate(time.Second),
	}, nil
}

func (s store) Delete(ctx context.Context, id string) error {
	if err := s.c.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	return nil
}
