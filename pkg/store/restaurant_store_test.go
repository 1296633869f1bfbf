package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IlSeki/TheKnife-sub000/pkg/types"
)

func TestRestaurantStore_AddAndGet_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := testContext(t)

	want := sampleRestaurant("Trattoria Da Mario")
	require.NoError(t, s.Restaurants.Add(ctx, "alice", want))

	got, err := s.Restaurants.Get(ctx, "Trattoria Da Mario")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *want, *got)
}

func TestRestaurantStore_Get_Absent(t *testing.T) {
	s, _ := newTestStore(t)

	got, err := s.Restaurants.Get(testContext(t), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRestaurantStore_Add_Validation(t *testing.T) {
	tests := []struct {
		name       string
		owner      string
		restaurant *types.Restaurant
	}{
		{
			name:       "empty owner",
			owner:      "  ",
			restaurant: sampleRestaurant("Osteria"),
		},
		{
			name:       "nil restaurant",
			owner:      "alice",
			restaurant: nil,
		},
		{
			name:       "empty restaurant name",
			owner:      "alice",
			restaurant: &types.Restaurant{Name: "   "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			err := s.Restaurants.Add(testContext(t), tt.owner, tt.restaurant)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRestaurantStore_Add_RejectsDuplicateName(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := testContext(t)

	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("Osteria")))

	err := s.Restaurants.Add(ctx, "bob", sampleRestaurant("Osteria"))
	assert.ErrorIs(t, err, ErrRestaurantExists)

	// The duplicate must not have clobbered the record set.
	all, err := s.Restaurants.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRestaurantStore_Add_RecordsOwnership(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := testContext(t)

	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("Trattoria")))

	owner, err := s.Ownership.IsOwner(ctx, "alice", "Trattoria")
	require.NoError(t, err)
	assert.True(t, owner)
}

func TestRestaurantStore_List_IdempotentReload(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := testContext(t)

	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("One")))
	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("Two")))

	first, err := s.Restaurants.List(ctx)
	require.NoError(t, err)
	second, err := s.Restaurants.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)
	assert.Len(t, first, 2)
}

func TestRestaurantStore_ListByNames_OmitsUnresolved(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := testContext(t)

	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("One")))
	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("Two")))

	got, err := s.Restaurants.ListByNames(ctx, []string{"Two", "missing", "One"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Two", got[0].Name)
	assert.Equal(t, "One", got[1].Name)
}

func TestRestaurantStore_Load_SkipsMalformedRecords(t *testing.T) {
	s, paths := newTestStore(t)
	ctx := testContext(t)

	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("Good")))

	// Sneak a short record and one with an unparsable latitude into the
	// backing file, the way a hand-edited file would.
	f, err := os.OpenFile(paths.Restaurants, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("too,few,fields\n" +
		"Bad,addr,loc,$,cuisine,1.0,not-a-number,p,u,w,a,No,s,d\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	all, err := s.Restaurants.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Good", all[0].Name)
}

func TestRestaurantStore_Read_ObservesExternalEdits(t *testing.T) {
	s, paths := newTestStore(t)
	ctx := testContext(t)

	require.NoError(t, s.Restaurants.Add(ctx, "alice", sampleRestaurant("Cached")))
	first, err := s.Restaurants.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Replace the backing file behind the store's back.
	content := "name,address,locality,price,cuisine,longitude,latitude,phone,url,website,award,greenStar,services,description\n" +
		"External,addr,loc,$,cuisine,0.5,0.25,p,u,w,a,No,s,added from outside\n"
	require.NoError(t, os.WriteFile(paths.Restaurants, []byte(content), 0o644))

	second, err := s.Restaurants.List(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "External", second[0].Name)
}

func TestRestaurantStore_MissingFile_IsEmptyStore(t *testing.T) {
	s, paths := newTestStore(t)

	all, err := s.Restaurants.List(testContext(t))
	require.NoError(t, err)
	assert.Empty(t, all)

	// First access created the file with just the header.
	data, err := os.ReadFile(paths.Restaurants)
	require.NoError(t, err)
	assert.Equal(t, RestaurantsHeader+"\n", string(data))
}

func TestRestaurantStore_EmptyCoordinates_DefaultToZero(t *testing.T) {
	s, paths := newTestStore(t)
	ctx := testContext(t)

	// Force file creation, then append a record with empty coordinates.
	_, err := s.Restaurants.List(ctx)
	require.NoError(t, err)
	f, err := os.OpenFile(paths.Restaurants, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("NoCoords,addr,loc,$,cuisine,,,p,u,w,a,No,s,d\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, err := s.Restaurants.Get(ctx, "NoCoords")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Zero(t, got.Longitude)
	assert.Zero(t, got.Latitude)
}

func TestRestaurantStore_Add_OwnershipFailureSurfaces(t *testing.T) {
	c := newTestCache(t)
	paths := testPaths(t)
	restaurants := newRestaurantStore(c, paths.Restaurants)
	restaurants.owners = &failingAssociator{}

	err := restaurants.Add(testContext(t), "alice", sampleRestaurant("Osteria"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording ownership failed")
}

type failingAssociator struct{}

func (f *failingAssociator) Associate(_ context.Context, _, _ string) error {
	return errors.New("disk full")
}
