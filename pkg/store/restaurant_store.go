package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/IlSeki/TheKnife-sub000/pkg/cache"
	"github.com/IlSeki/TheKnife-sub000/pkg/logger"
	"github.com/IlSeki/TheKnife-sub000/pkg/recordfile"
	"github.com/IlSeki/TheKnife-sub000/pkg/types"
)

const (
	// RestaurantsHeader is the fixed header line of the restaurants backing file.
	RestaurantsHeader = "name,address,locality,price,cuisine,longitude,latitude," +
		"phone,url,website,award,greenStar,services,description"
	restaurantFieldCount   = 14
	restaurantsSnapshotKey = "restaurants:snapshot"
)

// RestaurantStore is the authoritative record set of restaurants, keyed by
// name. It is the leaf store: ownership and reviews consult it for existence
// checks, never the reverse.
type RestaurantStore struct {
	mu     sync.Mutex
	cache  cache.Cache
	file   *recordfile.File
	owners ownershipAssociator
}

// newRestaurantStore creates a RestaurantStore over the given backing file.
// The ownership associator is wired afterwards by New; the two stores
// reference each other only through narrow interfaces.
func newRestaurantStore(c cache.Cache, path string) *RestaurantStore {
	return &RestaurantStore{
		cache: c,
		file:  recordfile.New(path, RestaurantsHeader),
	}
}

// Get returns the restaurant with the given name, or nil when absent.
func (s *RestaurantStore) Get(ctx context.Context, name string) (*types.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Name == name {
			r := records[i]
			return &r, nil
		}
	}
	return nil, nil
}

// List returns all restaurants in backing-file order.
func (s *RestaurantStore) List(ctx context.Context) ([]types.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked(ctx)
}

// ListByNames resolves each name against the record set, silently omitting
// names that do not resolve.
func (s *RestaurantStore) ListByNames(ctx context.Context, names []string) ([]types.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]types.Restaurant, len(records))
	for _, r := range records {
		if _, taken := byName[r.Name]; !taken {
			byName[r.Name] = r
		}
	}

	result := make([]types.Restaurant, 0, len(names))
	for _, name := range names {
		if r, ok := byName[name]; ok {
			result = append(result, r)
		}
	}
	return result, nil
}

// Add appends a new restaurant and records ownerUsername as its owner.
// Duplicate names are rejected: name is the primary key every other store
// keys on.
func (s *RestaurantStore) Add(ctx context.Context, ownerUsername string, restaurant *types.Restaurant) error {
	if strings.TrimSpace(ownerUsername) == "" {
		return fmt.Errorf("%w: owner username must not be empty", ErrInvalidInput)
	}
	if restaurant == nil {
		return fmt.Errorf("%w: restaurant must not be nil", ErrInvalidInput)
	}
	if err := restaurant.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.append(ctx, restaurant); err != nil {
		return err
	}

	// The ownership side effect runs outside the restaurant lock: recording
	// an association reloads the ownership file, which consults this store.
	if err := s.owners.Associate(ctx, restaurant.Name, ownerUsername); err != nil {
		return fmt.Errorf("restaurant %s stored but recording ownership failed: %w", restaurant.Name, err)
	}
	return nil
}

func (s *RestaurantStore) append(ctx context.Context, restaurant *types.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].Name == restaurant.Name {
			return fmt.Errorf("failed to add restaurant %s: %w", restaurant.Name, ErrRestaurantExists)
		}
	}

	line := recordfile.JoinFields(restaurantFields(restaurant))
	if err := s.file.Append(line); err != nil {
		dropSnapshot(ctx, s.cache, restaurantsSnapshotKey)
		return fmt.Errorf("failed to persist restaurant %s: %w", restaurant.Name, err)
	}

	refreshSnapshot(ctx, s.cache, restaurantsSnapshotKey, s.file, append(records, *restaurant))
	return nil
}

// exists implements the restaurantFinder oracle for dependent stores.
func (s *RestaurantStore) exists(ctx context.Context, name string) (bool, error) {
	r, err := s.Get(ctx, name)
	if err != nil {
		return false, err
	}
	return r != nil, nil
}

func (s *RestaurantStore) loadLocked(ctx context.Context) ([]types.Restaurant, error) {
	return loadRecords(ctx, s.cache, restaurantsSnapshotKey, s.file, s.parseRestaurant)
}

// parseRestaurant converts one data line into a Restaurant. Records with
// fewer than 14 fields or unparsable coordinates are skipped with a logged
// warning; the rest of the load continues.
func (s *RestaurantStore) parseRestaurant(ctx context.Context, line string) (types.Restaurant, bool) {
	fields := recordfile.SplitFields(line)
	if reason := VerifyRestaurantFields(fields); reason != "" {
		logger.Logger(ctx).WithField("file", s.file.Path).WithFields(logrus.Fields{
			"line":   line,
			"reason": reason,
		}).Warn("skipping restaurant record")
		return types.Restaurant{}, false
	}

	longitude, _ := parseCoordinate(fields[5])
	latitude, _ := parseCoordinate(fields[6])

	return types.Restaurant{
		Name:      fields[0],
		Address:   fields[1],
		Locality:  fields[2],
		Price:     fields[3],
		Cuisine:   fields[4],
		Longitude: longitude,
		Latitude:  latitude,
		Phone:     fields[7],
		URL:       fields[8],
		Website:   fields[9],
		Award:     fields[10],
		GreenStar: fields[11],
		Services:  fields[12],
		// A description holding unquoted delimiters spills into extra
		// fields; fold them back together.
		Description: strings.Join(fields[13:], ","),
	}, true
}

// VerifyRestaurantFields reports why the loader would drop a restaurant
// record with the given fields, or "" when the record parses. The check
// command reuses it so its report cannot drift from the loader.
func VerifyRestaurantFields(fields []string) string {
	if len(fields) < restaurantFieldCount {
		return "too few fields"
	}
	if _, err := parseCoordinate(fields[5]); err != nil {
		return "unparsable longitude"
	}
	if _, err := parseCoordinate(fields[6]); err != nil {
		return "unparsable latitude"
	}
	return ""
}

// parseCoordinate parses a longitude/latitude field, defaulting to 0.0 when
// the field is absent.
func parseCoordinate(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func restaurantFields(r *types.Restaurant) []string {
	return []string{
		r.Name,
		r.Address,
		r.Locality,
		r.Price,
		r.Cuisine,
		strconv.FormatFloat(r.Longitude, 'f', -1, 64),
		strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		r.Phone,
		r.URL,
		r.Website,
		r.Award,
		r.GreenStar,
		r.Services,
		r.Description,
	}
}
