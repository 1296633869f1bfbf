package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnershipStore_AssociateAndQuery(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := testContext(t)

	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("Osteria")))
	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("Trattoria")))

	owned, err := s.Ownership.GetOwnedRestaurants(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Osteria", "Trattoria"}, owned)

	owner, err := s.Ownership.IsOwner(ctx, "alice", "Osteria")
	require.NoError(t, err)
	assert.True(t, owner)

	owner, err = s.Ownership.IsOwner(ctx, "bob", "Osteria")
	require.NoError(t, err)
	assert.False(t, owner)
}

func TestOwnershipStore_UnknownUser_EmptySlice(t *testing.T) {
	s, _ := newTestStore(t)

	owned, err := s.Ownership.GetOwnedRestaurants(testContext(t), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, owned)
	assert.Empty(t, owned)
}

func TestOwnershipStore_Associate_Validation(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.Ownership.Associate(testContext(t), "", "alice")
	assert.ErrorIs(t, err, ErrInvalidInput)
	err = s.Ownership.Associate(testContext(t), "Osteria", " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOwnershipStore_Load_DropsOrphanedAssociations(t *testing.T) {
	s, paths := newTestStore(t)
	ctx := testContext(t)

	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("Exists")))

	// Hand-write an ownership file holding one valid association, one
	// orphan and one malformed line.
	content := "username,restaurantName\n" +
		"alice,Exists\n" +
		"alice,Demolished\n" +
		"broken-line\n"
	require.NoError(t, os.WriteFile(paths.Ownership, []byte(content), 0o644))

	owned, err := s.Ownership.GetOwnedRestaurants(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Exists"}, owned)

	owner, err := s.Ownership.IsOwner(ctx, "alice", "Demolished")
	require.NoError(t, err)
	assert.False(t, owner)
}

// An ownership answer must track the restaurants file even when the
// ownership file itself has not changed: the snapshot caches raw
// associations and orphans are filtered out on every read.
func TestOwnershipStore_TracksExternalRestaurantEdits(t *testing.T) {
	s, paths := newTestStore(t)
	ctx := testContext(t)

	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("Gone")))

	// Warm the ownership snapshot.
	owner, err := s.Ownership.IsOwner(ctx, "alice", "Gone")
	require.NoError(t, err)
	require.True(t, owner)

	// Delete the restaurant behind the store's back. The ownership file is
	// untouched, so its snapshot is still current.
	require.NoError(t, os.WriteFile(paths.Restaurants, []byte(RestaurantsHeader+"\n"), 0o644))

	owner, err = s.Ownership.IsOwner(ctx, "alice", "Gone")
	require.NoError(t, err)
	assert.False(t, owner)

	owned, err := s.Ownership.GetOwnedRestaurants(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, owned)

	// The association is hidden, not deleted: it comes back with the
	// restaurant.
	require.NoError(t, s.Restaurants.Add(ctx, "bob", sampleRestaurant("Gone")))
	owner, err = s.Ownership.IsOwner(ctx, "alice", "Gone")
	require.NoError(t, err)
	assert.True(t, owner)
}

func TestOwnershipStore_Associate_CreatesFileAndParents(t *testing.T) {
	c := newTestCache(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "ownership.csv")

	restaurants := newRestaurantStore(c, filepath.Join(dir, "restaurants.csv"))
	ownership := newOwnershipStore(c, path, restaurants)

	require.NoError(t, ownership.Associate(testContext(t), "Osteria", "alice"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "username,restaurantName\nalice,Osteria\n", string(data))
}
