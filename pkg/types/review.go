package types

// TimestampFormat is the fixed layout used for review timestamps.
const TimestampFormat = "2006-01-02 15:04:05"

// Review is a user-submitted review, keyed by (Username, RestaurantName).
// An empty Reply means the owner has not responded yet.
type Review struct {
	Username       string `json:"username"`
	RestaurantName string `json:"restaurantName"`
	Stars          int    `json:"stars"`
	Text           string `json:"text"`
	Timestamp      string `json:"timestamp"`
	Reply          string `json:"reply,omitempty"`
}

// HasReply reports whether the restaurant owner has replied to this review.
func (r *Review) HasReply() bool {
	return r.Reply != ""
}

// Ownership associates a user with a restaurant they manage.
type Ownership struct {
	Username       string `json:"username"`
	RestaurantName string `json:"restaurantName"`
}

// Favorite marks a restaurant as liked by a user.
type Favorite struct {
	Username       string `json:"username"`
	RestaurantName string `json:"restaurantName"`
}
