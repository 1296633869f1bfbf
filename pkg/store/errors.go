package store

import "errors"

var (
	// ErrInvalidInput is returned when a mutating operation receives an
	// empty or otherwise unusable argument.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRestaurantExists is returned when adding a restaurant whose name
	// is already taken. Name is the primary key, so duplicates are rejected.
	ErrRestaurantExists = errors.New("a restaurant with this name already exists")

	// ErrDuplicateReview is returned when a user who already reviewed a
	// restaurant submits a second review for it.
	ErrDuplicateReview = errors.New("user has already reviewed this restaurant")

	// ErrNotAuthorized is returned when a reply is attempted by a user who
	// does not own the reviewed restaurant.
	ErrNotAuthorized = errors.New("user is not an owner of this restaurant")
)
