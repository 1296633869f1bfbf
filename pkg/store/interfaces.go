package store

import (
	"context"

	"github.com/IlSeki/TheKnife-sub000/pkg/types"
)

// RestaurantStoreInterface defines operations on the restaurant record set.
// This interface enables mocking in tests and follows the dependency
// inversion principle.
type RestaurantStoreInterface interface {
	// Get returns the restaurant with the given name, or nil when absent.
	// Absence is not an error.
	Get(ctx context.Context, name string) (*types.Restaurant, error)

	// List returns all restaurants in backing-file order.
	List(ctx context.Context) ([]types.Restaurant, error)

	// ListByNames resolves each name via Get, silently omitting names that
	// do not resolve. It never fails on a missing name.
	ListByNames(ctx context.Context, names []string) ([]types.Restaurant, error)

	// Add appends a new restaurant and records ownerUsername as its owner.
	// This is a side-effecting operation touching two stores.
	// Returns ErrInvalidInput for an empty owner or invalid restaurant, and
	// ErrRestaurantExists when the name is already taken.
	Add(ctx context.Context, ownerUsername string, restaurant *types.Restaurant) error
}

// OwnershipStoreInterface defines operations on the user/restaurant
// ownership relation. Associations referencing a restaurant that does not
// currently exist are dropped (and logged) on every read, so the answers
// track the restaurant record set as it changes.
type OwnershipStoreInterface interface {
	// GetOwnedRestaurants returns the restaurant names owned by username.
	// Unknown users get an empty slice, never an error.
	GetOwnedRestaurants(ctx context.Context, username string) ([]string, error)

	// IsOwner reports whether username owns restaurantName.
	IsOwner(ctx context.Context, username, restaurantName string) (bool, error)

	// Associate records that username manages restaurantName, creating the
	// backing file and its parent directories when absent.
	Associate(ctx context.Context, restaurantName, username string) error
}

// ReviewStoreInterface defines operations on user-submitted reviews, keyed
// by (username, restaurant name).
type ReviewStoreInterface interface {
	// Add stamps the review with the current time and persists it.
	// Returns ErrDuplicateReview when the user already reviewed the
	// restaurant.
	Add(ctx context.Context, review *types.Review) error

	// Edit updates text, stars and timestamp of the first review matching
	// (username, restaurantName). A non-match is a no-op but still rewrites
	// the backing store.
	Edit(ctx context.Context, username, restaurantName, newText string, newStars int) error

	// Delete removes every review matching (username, restaurantName),
	// defensive against accidental duplicates.
	Delete(ctx context.Context, username, restaurantName string) error

	// Reply sets the reply field of the review written by username for
	// restaurantName. It fails with ErrNotAuthorized unless currentUser is
	// a verified owner of the restaurant. The check lives here, at the data
	// layer, because this is the one choke point shared by all reply paths.
	Reply(ctx context.Context, currentUser, username, restaurantName, replyText string) error

	// ReviewsFor returns all reviews of a restaurant.
	ReviewsFor(ctx context.Context, restaurantName string) ([]types.Review, error)

	// ReviewsBy returns all reviews written by a user.
	ReviewsBy(ctx context.Context, username string) ([]types.Review, error)

	// AverageRating returns the unweighted mean of the restaurant's star
	// ratings, or 0.0 when it has no reviews.
	AverageRating(ctx context.Context, restaurantName string) (float64, error)
}

// FavoriteStoreInterface defines operations on per-user favorite lists.
// Unlike ownership, favorites are not validated against the restaurant
// record set.
type FavoriteStoreInterface interface {
	// Add marks restaurantName as a favorite of username. Adding an
	// existing favorite is a no-op.
	Add(ctx context.Context, username, restaurantName string) error

	// Remove deletes the favorite; removing an absent one is not an error.
	Remove(ctx context.Context, username, restaurantName string) error

	// List returns the distinct favorite restaurant names of username.
	List(ctx context.Context, username string) ([]string, error)

	// Contains reports whether restaurantName is a favorite of username.
	Contains(ctx context.Context, username, restaurantName string) (bool, error)
}

// restaurantFinder is the existence oracle consumed by dependent stores.
type restaurantFinder interface {
	exists(ctx context.Context, name string) (bool, error)
}

// ownershipChecker is the ownership oracle consumed by the review store.
type ownershipChecker interface {
	IsOwner(ctx context.Context, username, restaurantName string) (bool, error)
}

// ownershipAssociator lets the restaurant store record the ownership side
// effect of Add without depending on the concrete ownership store.
type ownershipAssociator interface {
	Associate(ctx context.Context, restaurantName, username string) error
}
