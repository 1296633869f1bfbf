package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/IlSeki/TheKnife-sub000/pkg/cache"
	"github.com/IlSeki/TheKnife-sub000/pkg/logger"
	"github.com/IlSeki/TheKnife-sub000/pkg/recordfile"
	"github.com/IlSeki/TheKnife-sub000/pkg/types"
)

const (
	// OwnershipHeader is the fixed header line of the ownership backing file.
	OwnershipHeader      = "username,restaurantName"
	ownershipSnapshotKey = "ownership:snapshot"
)

// OwnershipStore holds the many-to-many relation between usernames and the
// restaurants they manage. Every read validates each association against the
// restaurant store; orphaned associations are dropped and logged, never
// propagated as errors. Validation runs per read rather than being baked
// into the snapshot: the answer must track the restaurants file even when
// the ownership file itself is unchanged.
type OwnershipStore struct {
	mu          sync.Mutex
	cache       cache.Cache
	file        *recordfile.File
	restaurants restaurantFinder
}

func newOwnershipStore(c cache.Cache, path string, restaurants restaurantFinder) *OwnershipStore {
	return &OwnershipStore{
		cache:       c,
		file:        recordfile.New(path, OwnershipHeader),
		restaurants: restaurants,
	}
}

// GetOwnedRestaurants returns the restaurant names owned by username, in
// backing-file order. Unknown users get an empty slice.
func (s *OwnershipStore) GetOwnedRestaurants(ctx context.Context, username string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	owned := []string{}
	for _, rec := range records {
		if rec.Username == username {
			owned = append(owned, rec.RestaurantName)
		}
	}
	return owned, nil
}

// IsOwner reports whether username owns restaurantName.
func (s *OwnershipStore) IsOwner(ctx context.Context, username, restaurantName string) (bool, error) {
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

// Associate appends one association to the backing store and to the cached
// index, creating the file (and parent directories) when absent.
func (s *OwnershipStore) Associate(ctx context.Context, restaurantName, username string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(restaurantName) == "" {
		return fmt.Errorf("%w: username and restaurant name must not be empty", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.rawLocked(ctx)
	if err != nil {
		return err
	}

	rec := types.Ownership{Username: username, RestaurantName: restaurantName}
	line := recordfile.JoinFields([]string{rec.Username, rec.RestaurantName})
	if err := s.file.Append(line); err != nil {
		dropSnapshot(ctx, s.cache, ownershipSnapshotKey)
		return fmt.Errorf("failed to persist ownership of %s by %s: %w", restaurantName, username, err)
	}

	refreshSnapshot(ctx, s.cache, ownershipSnapshotKey, s.file, append(records, rec))
	return nil
}

func (s *OwnershipStore) loadLocked(ctx context.Context) ([]types.Ownership, error) {
	records, err := s.rawLocked(ctx)
	if err != nil {
		return nil, err
	}
	return s.dropOrphans(ctx, records), nil
}

// rawLocked returns the parsed associations without referential validation.
// The snapshot caches this raw set: an association hidden as orphaned stays
// in the file and comes back once its restaurant reappears.
func (s *OwnershipStore) rawLocked(ctx context.Context) ([]types.Ownership, error) {
	return loadRecords(ctx, s.cache, ownershipSnapshotKey, s.file, s.parseOwnership)
}

// dropOrphans filters out associations whose restaurant does not currently
// exist, consulting the restaurant oracle once per distinct name.
func (s *OwnershipStore) dropOrphans(ctx context.Context, records []types.Ownership) []types.Ownership {
	log := logger.Logger(ctx).WithField("file", s.file.Path)

	known := make(map[string]bool)
	kept := make([]types.Ownership, 0, len(records))
	for _, rec := range records {
		found, checked := known[rec.RestaurantName]
		if !checked {
			var err error
			found, err = s.restaurants.exists(ctx, rec.RestaurantName)
			if err != nil {
				// Keep the association when the oracle itself fails; dropping
				// it would turn a transient read error into data loss.
				log.WithError(err).WithField("restaurant", rec.RestaurantName).
					Warn("could not verify restaurant for ownership record, keeping it")
				kept = append(kept, rec)
				continue
			}
			known[rec.RestaurantName] = found
		}
		if !found {
			log.WithFields(logrus.Fields{
				"username":   rec.Username,
				"restaurant": rec.RestaurantName,
			}).Warn("dropping ownership record for unknown restaurant")
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

func (s *OwnershipStore) parseOwnership(ctx context.Context, line string) (types.Ownership, bool) {
	fields := recordfile.SplitFields(line)
	if reason := VerifyOwnershipFields(fields); reason != "" {
		logger.Logger(ctx).WithField("file", s.file.Path).WithFields(logrus.Fields{
			"line":   line,
			"reason": reason,
		}).Warn("skipping ownership record")
		return types.Ownership{}, false
	}
	return types.Ownership{Username: fields[0], RestaurantName: fields[1]}, true
}

// VerifyOwnershipFields reports why the loader would drop an ownership
// record with the given fields, or "" when the record parses.
func VerifyOwnershipFields(fields []string) string {
	if len(fields) < 2 {
		return "too few fields"
	}
	return ""
}
