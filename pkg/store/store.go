// Package store implements the flat-file-backed repositories for
// restaurants, ownership, reviews and favorites. Each store owns one backing
// file and a cached snapshot of its parsed contents; reads observe the latest
// on-disk state, writes rewrite or append to the file wholesale.
package store

import (
	"github.com/IlSeki/TheKnife-sub000/pkg/cache"
)

// Paths names the four backing files, one per entity.
type Paths struct {
	Restaurants string
	Ownership   string
	Reviews     string
	Favorites   string
}

// Store bundles the four repositories. Each store guards its
// read-modify-write sequence with its own mutex, so concurrent callers
// cannot lose updates; cross-store calls only ever flow Review -> Ownership
// -> Restaurant, so the locks cannot deadlock.
type Store struct {
	Restaurants RestaurantStoreInterface
	Ownership   OwnershipStoreInterface
	Reviews     ReviewStoreInterface
	Favorites   FavoriteStoreInterface
}

// New creates a Store over the given backing files, wiring the cross-store
// oracles: ownership validates against restaurants at load time, reviews
// authorize replies against ownership, and adding a restaurant records an
// ownership association. Lifecycle is owned by the caller; there are no
// process-wide singletons.
func New(c cache.Cache, paths Paths) *Store {
	restaurants := newRestaurantStore(c, paths.Restaurants)
	ownership := newOwnershipStore(c, paths.Ownership, restaurants)
	restaurants.owners = ownership
	reviews := newReviewStore(c, paths.Reviews, ownership)
	favorites := newFavoriteStore(c, paths.Favorites)

	return &Store{
		Restaurants: restaurants,
		Ownership:   ownership,
		Reviews:     reviews,
		Favorites:   favorites,
	}
}

// Compile-time interface compliance checks
var (
	_ RestaurantStoreInterface = (*RestaurantStore)(nil)
	_ OwnershipStoreInterface  = (*OwnershipStore)(nil)
	_ ReviewStoreInterface     = (*ReviewStore)(nil)
	_ FavoriteStoreInterface   = (*FavoriteStore)(nil)

	_ restaurantFinder    = (*RestaurantStore)(nil)
	_ ownershipChecker    = (*OwnershipStore)(nil)
	_ ownershipAssociator = (*OwnershipStore)(nil)
)
