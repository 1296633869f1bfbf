package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IlSeki/TheKnife-sub000/pkg/types"
)

func TestNew(t *testing.T) {
	s, _ := newTestStore(t)

	// Verify all sub-stores are initialized
	assert.NotNil(t, s)
	assert.NotNil(t, s.Restaurants)
	assert.NotNil(t, s.Ownership)
	assert.NotNil(t, s.Reviews)
	assert.NotNil(t, s.Favorites)
}

// TestStore_EndToEnd walks the full owner/reviewer flow across the wired
// stores: add an owned restaurant, review it, reply as the owner, and watch
// a non-owner's reply get rejected.
func TestStore_EndToEnd(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := testContext(t)

	// alice opens her restaurant.
	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("Trattoria")))
	owner, err := s.Ownership.IsOwner(ctx, "alice", "Trattoria")
	require.NoError(t, err)
	assert.True(t, owner)

	// bob reviews it.
	require.NoError(t, s.Reviews.Add(ctx, &types.Review{
		Username:       "bob",
		RestaurantName: "Trattoria",
		Stars:          4,
		Text:           "Great",
	}))
	reviews, err := s.Reviews.ReviewsFor(ctx, "Trattoria")
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	avg, err := s.Reviews.AverageRating(ctx, "Trattoria")
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 1e-9)

	// alice replies.
	require.NoError(t, s.Reviews.Reply(ctx, "alice", "bob", "Trattoria", "Thanks!"))
	reviews, err = s.Reviews.ReviewsFor(ctx, "Trattoria")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Thanks!", reviews[0].Reply)

	// carol, who owns nothing, cannot overwrite it.
	err = s.Reviews.Reply(ctx, "carol", "bob", "Trattoria", "I disagree")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	reviews, err = s.Reviews.ReviewsFor(ctx, "Trattoria")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Thanks!", reviews[0].Reply)
}

// TestVerifyRecordFields covers the exported drop rules the check command
// shares with the loaders.
func TestVerifyRecordFields(t *testing.T) {
	good := restaurantFields(sampleRestaurant("X"))
	assert.Empty(t, VerifyRestaurantFields(good))
	assert.Equal(t, "too few fields", VerifyRestaurantFields([]string{"a", "b"}))

	bad := restaurantFields(sampleRestaurant("X"))
	bad[6] = "north"
	assert.Equal(t, "unparsable latitude", VerifyRestaurantFields(bad))
	bad[5] = "west"
	assert.Equal(t, "unparsable longitude", VerifyRestaurantFields(bad))

	assert.Empty(t, VerifyReviewFields([]string{"bob", "X", "4", "ok", "2025-06-01 12:30:00"}))
	assert.Equal(t, "too few fields", VerifyReviewFields([]string{"bob", "X", "4"}))
	assert.Equal(t, "unparsable star rating", VerifyReviewFields([]string{"bob", "X", "many", "ok", "ts"}))

	assert.Equal(t, "too few fields", VerifyOwnershipFields([]string{"solo"}))
	assert.Empty(t, VerifyOwnershipFields([]string{"alice", "X"}))
	assert.Empty(t, VerifyFavoriteFields([]string{"alice", "X"}))
}

// TestStore_SharedCacheKeysDoNotCollide guards the per-store snapshot key
// prefixes: all four stores share one cache instance.
func TestStore_SharedCacheKeysDoNotCollide(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := testContext(t)

	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("Osteria")))
	require.NoError(t, s.Favorites.Add(ctx, "alice", "Osteria"))
	require.NoError(t, s.Reviews.Add(ctx, &types.Review{
		Username: "bob", RestaurantName: "Osteria", Stars: 5, Text: "x",
	}))

	all, err := s.Restaurants.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	favs, err := s.Favorites.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Osteria"}, favs)

	reviews, err := s.Reviews.ReviewsBy(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}
