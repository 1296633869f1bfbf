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

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig is the top-level application configuration.
type AppConfig struct {
	App     App     `mapstructure:"app"`
	Storage Storage `mapstructure:"storage"`
	Cache   Cache   `mapstructure:"cache"`
}

type App struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"logLevel"`
}

// Storage names the directory and per-entity backing files.
type Storage struct {
	Dir             string `mapstructure:"dir"`
	RestaurantsFile string `mapstructure:"restaurantsFile"`
	OwnershipFile   string `mapstructure:"ownershipFile"`
	ReviewsFile     string `mapstructure:"reviewsFile"`
	FavoritesFile   string `mapstructure:"favoritesFile"`
}

// Cache selects and tunes the snapshot cache backend.
type Cache struct {
	Backend           string `mapstructure:"backend"`
	DefaultExpiration int    `mapstructure:"defaultExpiration"`
	CleanupInterval   int    `mapstructure:"cleanupInterval"`
	Redis             Redis  `mapstructure:"redis"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RestaurantsPath returns the full path of the restaurants backing file.
func (s *Storage) RestaurantsPath() string { return filepath.Join(s.Dir, s.RestaurantsFile) }

// OwnershipPath returns the full path of the ownership backing file.
func (s *Storage) OwnershipPath() string { return filepath.Join(s.Dir, s.OwnershipFile) }

// ReviewsPath returns the full path of the reviews backing file.
func (s *Storage) ReviewsPath() string { return filepath.Join(s.Dir, s.ReviewsFile) }

// FavoritesPath returns the full path of the favorites backing file.
func (s *Storage) FavoritesPath() string { return filepath.Join(s.Dir, s.FavoritesFile) }

// Load reads <dir>/<environment>.yaml, applies defaults and environment
// variable overrides (prefix THEKNIFE_, dots replaced by underscores), and
// unmarshals into AppConfig.
func Load(dir, environment string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName(environment)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("THEKNIFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, environment)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config %s/%s.yaml: %w", dir, environment, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, environment string) {
	v.SetDefault("app.name", "theknife")
	v.SetDefault("app.environment", environment)
	v.SetDefault("app.logLevel", "info")

	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.restaurantsFile", "restaurants.csv")
	v.SetDefault("storage.ownershipFile", "ownership.csv")
	v.SetDefault("storage.reviewsFile", "reviews.csv")
	v.SetDefault("storage.favoritesFile", "favorites.csv")

	v.SetDefault("cache.backend", "inmemory")
	v.SetDefault("cache.defaultExpiration", 300)
	v.SetDefault("cache.cleanupInterval", 600)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)
}
