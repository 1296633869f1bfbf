/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package app owns the top-level wiring: configuration in, a ready Store
// out. Store lifecycle lives here rather than in lazily-initialized
// singletons, so tests and binaries construct exactly what they need.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/IlSeki/TheKnife-sub000/pkg/cache"
	"github.com/IlSeki/TheKnife-sub000/pkg/cache/inmemory"
	"github.com/IlSeki/TheKnife-sub000/pkg/cache/redis"
	"github.com/IlSeki/TheKnife-sub000/pkg/config"
	"github.com/IlSeki/TheKnife-sub000/pkg/logger"
	"github.com/IlSeki/TheKnife-sub000/pkg/store"
)

// Build constructs the snapshot cache selected by the config and the Store
// over the configured backing files.
func Build(ctx context.Context, cfg *config.AppConfig) (*store.Store, error) {
	c, err := buildCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return store.New(c, store.Paths{
		Restaurants: cfg.Storage.RestaurantsPath(),
		Ownership:   cfg.Storage.OwnershipPath(),
		Reviews:     cfg.Storage.ReviewsPath(),
		Favorites:   cfg.Storage.FavoritesPath(),
	}), nil
}

func buildCache(ctx context.Context, cfg *config.AppConfig) (cache.Cache, error) {
	switch strings.ToLower(cfg.Cache.Backend) {
	case "", "inmemory":
		return inmemory.NewCache(&inmemory.Config{
			DefaultExpiration: cfg.Cache.DefaultExpiration,
			CleanupInterval:   cfg.Cache.CleanupInterval,
		})
	case "redis":
		logger.Logger(ctx).WithField("addr", cfg.Cache.Redis.Addr).Info("using redis snapshot cache")
		return redis.NewCache(ctx, &redis.Config{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
