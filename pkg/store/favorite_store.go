package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/IlSeki/TheKnife-sub000/pkg/cache"
	"github.com/IlSeki/TheKnife-sub000/pkg/logger"
	"github.com/IlSeki/TheKnife-sub000/pkg/recordfile"
	"github.com/IlSeki/TheKnife-sub000/pkg/types"
)

const (
	// FavoritesHeader is the fixed header line of the favorites backing file.
	FavoritesHeader      = "username,restaurantName"
	favoritesSnapshotKey = "favorites:snapshot"
)

// FavoriteStore holds per-user favorite lists. It mirrors the ownership
// store but performs no cross-store validation: a favorite may reference a
// restaurant that no longer exists.
type FavoriteStore struct {
	mu    sync.Mutex
	cache cache.Cache
	file  *recordfile.File
}

func newFavoriteStore(c cache.Cache, path string) *FavoriteStore {
	return &FavoriteStore{
		cache: c,
		file:  recordfile.New(path, FavoritesHeader),
	}
}

// Add marks restaurantName as a favorite of username. Re-adding an existing
// favorite is a no-op, keeping List a set.
func (s *FavoriteStore) Add(ctx context.Context, username, restaurantName string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(restaurantName) == "" {
		return fmt.Errorf("%w: username and restaurant name must not be empty", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Username == username && rec.RestaurantName == restaurantName {
			return nil
		}
	}

	rec := types.Favorite{Username: username, RestaurantName: restaurantName}
	line := recordfile.JoinFields([]string{rec.Username, rec.RestaurantName})
	if err := s.file.Append(line); err != nil {
		dropSnapshot(ctx, s.cache, favoritesSnapshotKey)
		return fmt.Errorf("failed to persist favorite %s for %s: %w", restaurantName, username, err)
	}

	refreshSnapshot(ctx, s.cache, favoritesSnapshotKey, s.file, append(records, rec))
	return nil
}

// Remove deletes the favorite; removing an absent one is not an error.
func (s *FavoriteStore) Remove(ctx context.Context, username, restaurantName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	kept := make([]types.Favorite, 0, len(records))
	for _, rec := range records {
		if rec.Username == username && rec.RestaurantName == restaurantName {
			continue
		}
		kept = append(kept, rec)
	}

	lines := make([]string, 0, len(kept))
	for _, rec := range kept {
		lines = append(lines, recordfile.JoinFields([]string{rec.Username, rec.RestaurantName}))
	}
	if err := s.file.Rewrite(lines); err != nil {
		dropSnapshot(ctx, s.cache, favoritesSnapshotKey)
		return fmt.Errorf("failed to rewrite favorites: %w", err)
	}

	refreshSnapshot(ctx, s.cache, favoritesSnapshotKey, s.file, kept)
	return nil
}

// List returns the distinct favorite restaurant names of username, in
// first-seen order.
func (s *FavoriteStore) List(ctx context.Context, username string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	names := []string{}
	for _, rec := range records {
		if rec.Username != username {
			continue
		}
		if _, dup := seen[rec.RestaurantName]; dup {
			continue
		}
		seen[rec.RestaurantName] = struct{}{}
		names = append(names, rec.RestaurantName)
	}
	return names, nil
}

// Contains reports whether restaurantName is a favorite of username.
func (s *FavoriteStore) Contains(ctx context.Context, username, restaurantName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return false, err
	}
	for _, rec := range records {
		if rec.Username == username && rec.RestaurantName == restaurantName {
			return true, nil
		}
	}
	return false, nil
}

func (s *FavoriteStore) loadLocked(ctx context.Context) ([]types.Favorite, error) {
	return loadRecords(ctx, s.cache, favoritesSnapshotKey, s.file, s.parseFavorite)
}

func (s *FavoriteStore) parseFavorite(ctx context.Context, line string) (types.Favorite, bool) {
	fields := recordfile.SplitFields(line)
	if reason := VerifyFavoriteFields(fields); reason != "" {
		logger.Logger(ctx).WithField("file", s.file.Path).WithField("line", line).
			Warn("skipping favorite record")
		return types.Favorite{}, false
	}
	return types.Favorite{Username: fields[0], RestaurantName: fields[1]}, true
}

// VerifyFavoriteFields reports why the loader would drop a favorite record
// with the given fields, or "" when the record parses. Favorites share the
// ownership record shape.
func VerifyFavoriteFields(fields []string) string {
	return VerifyOwnershipFields(fields)
}
