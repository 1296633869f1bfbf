package types

import (
	"errors"
	"strings"
)

// Restaurant is the authoritative record for a single restaurant.
// Name is the primary key (case-sensitive). Treat values as immutable once
// created; mutations go through replace-on-write in the store.
type Restaurant struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Locality    string  `json:"locality"`
	Price       string  `json:"price"`
	Cuisine     string  `json:"cuisine"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	Phone       string  `json:"phone"`
	URL         string  `json:"url"`
	Website     string  `json:"website"`
	Award       string  `json:"award"`
	GreenStar   string  `json:"greenStar"`
	Services    string  `json:"services"`
	Description string  `json:"description"`
}

// Validate checks the invariants a restaurant must satisfy before it is
// accepted into the store.
func (r *Restaurant) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("restaurant name must not be empty")
	}
	return nil
}

// HasGreenStar reports whether the free-text green star flag means "yes".
// An empty value or any casing of "no" means false.
func (r *Restaurant) HasGreenStar() bool {
	v := strings.TrimSpace(r.GreenStar)
	return v != "" && !strings.EqualFold(v, "no")
}
