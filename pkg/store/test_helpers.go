package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IlSeki/TheKnife-sub000/pkg/cache"
	"github.com/IlSeki/TheKnife-sub000/pkg/cache/inmemory"
	"github.com/IlSeki/TheKnife-sub000/pkg/types"
)

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := inmemory.NewCache(&inmemory.Config{
		DefaultExpiration: 300,
		CleanupInterval:   600,
	})
	require.NoError(t, err)
	return c
}

func testPaths(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	return Paths{
		Restaurants: filepath.Join(dir, "restaurants.csv"),
		Ownership:   filepath.Join(dir, "ownership.csv"),
		Reviews:     filepath.Join(dir, "reviews.csv"),
		Favorites:   filepath.Join(dir, "favorites.csv"),
	}
}

func newTestStore(t *testing.T) (*Store, Paths) {
	t.Helper()
	paths := testPaths(t)
	return New(newTestCache(t), paths), paths
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}

// sampleRestaurant builds a restaurant whose text fields exercise the
// awkward cases: embedded delimiters, embedded quotes, multi-value cuisine.
func sampleRestaurant(name string) *types.Restaurant {
	return &types.Restaurant{
		Name:        name,
		Address:     "12 Via Roma",
		Locality:    "Torino, Italy",
		Price:       "€€",
		Cuisine:     "Piedmontese, Italian",
		Longitude:   7.6869,
		Latitude:    45.0703,
		Phone:       "+39 011 000000",
		URL:         "https://guide.example/" + name,
		Website:     "https://" + name + ".example",
		Award:       "1 Star",
		GreenStar:   "No",
		Services:    "Terrace, Wheelchair access",
		Description: `Hearty, seasonal cooking; try the "plin" agnolotti, if available.`,
	}
}

// fakeOwners is an ownershipChecker stub for review store tests.
type fakeOwners struct {
	owns map[string]bool // key: username + "|" + restaurantName
}

func (f *fakeOwners) IsOwner(_ context.Context, username, restaurantName string) (bool, error) {
	return f.owns[username+"|"+restaurantName], nil
}
