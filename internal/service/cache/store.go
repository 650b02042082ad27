package cache

import (
	"context"
	"time"
)

// Store is the read-through cache used by the YouTube and transcript layers.
// Get reports false with a nil error on a miss.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// NopStore never hits. Used when redis is disabled.
type NopStore struct{}

func (NopStore) Get(context.Context, string, any) (bool, error) { return false, nil }

func (NopStore) Set(context.Context, string, any, time.Duration) error { return nil }

func (NopStore) Del(context.Context, string) error { return nil }

var (
	_ Store = (*CacheService)(nil)
	_ Store = NopStore{}
)
