package inmemory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/IlSeki/TheKnife-sub000/pkg/cache"
)

// Config holds the tuning knobs for the in-memory cache, in seconds.
type Config struct {
	DefaultExpiration int
	CleanupInterval   int
}

// InMemoryCache implements cache.Cache on top of patrickmn/go-cache.
type InMemoryCache struct {
	store *gocache.Cache
}

var _ cache.Cache = (*InMemoryCache)(nil)

// NewCache creates an in-memory cache from the given config.
func NewCache(cfg *Config) (*InMemoryCache, error) {
	return &InMemoryCache{
		store: gocache.New(
			time.Duration(cfg.DefaultExpiration)*time.Second,
			time.Duration(cfg.CleanupInterval)*time.Second,
		),
	}, nil
}

func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, error) {
	val, found := c.store.Get(key)
	if !found {
		return nil, cache.ErrKeyNotFound
	}
	return val, nil
}

func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	if expiration == cache.NoExpiration {
		expiration = gocache.NoExpiration
	}
	c.store.Set(key, value, expiration)
	return nil
}

func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}
