package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/IlSeki/TheKnife-sub000/pkg/cache"
	"github.com/IlSeki/TheKnife-sub000/pkg/logger"
	"github.com/IlSeki/TheKnife-sub000/pkg/recordfile"
	"github.com/IlSeki/TheKnife-sub000/pkg/types"
)

const (
	// ReviewsHeader is the fixed header line of the reviews backing file.
	ReviewsHeader      = "username,restaurantName,stars,text,timestamp,reply"
	reviewsSnapshotKey = "reviews:snapshot"
)

// ReviewStore holds user-submitted reviews keyed by (username, restaurant
// name). Reply writes are authorization-gated through the ownership oracle;
// this is the one business rule enforced at the data layer.
type ReviewStore struct {
	mu     sync.Mutex
	cache  cache.Cache
	file   *recordfile.File
	owners ownershipChecker

	// now is swappable in tests.
	now func() time.Time
}

func newReviewStore(c cache.Cache, path string, owners ownershipChecker) *ReviewStore {
	return &ReviewStore{
		cache:  c,
		file:   recordfile.New(path, ReviewsHeader),
		owners: owners,
		now:    time.Now,
	}
}

// Add stamps the review with the current time and persists it. A second
// review by the same user for the same restaurant is rejected.
func (s *ReviewStore) Add(ctx context.Context, review *types.Review) error {
	if review == nil {
		return fmt.Errorf("%w: review must not be nil", ErrInvalidInput)
	}
	if strings.TrimSpace(review.Username) == "" || strings.TrimSpace(review.RestaurantName) == "" {
		return fmt.Errorf("%w: review username and restaurant name must not be empty", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].Username == review.Username && records[i].RestaurantName == review.RestaurantName {
			return fmt.Errorf("failed to add review by %s for %s: %w",
				review.Username, review.RestaurantName, ErrDuplicateReview)
		}
	}

	review.Timestamp = s.now().Format(types.TimestampFormat)
	return s.persistLocked(ctx, append(records, *review))
}

// Edit updates text, stars and timestamp of the first review matching
// (username, restaurantName). When nothing matches the rewrite still happens.
func (s *ReviewStore) Edit(ctx context.Context, username, restaurantName, newText string, newStars int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	for i := range records {
		if records[i].Username == username && records[i].RestaurantName == restaurantName {
			records[i].Text = newText
			records[i].Stars = newStars
			records[i].Timestamp = s.now().Format(types.TimestampFormat)
			break
		}
	}
	return s.persistLocked(ctx, records)
}

// Delete removes every review matching (username, restaurantName).
func (s *ReviewStore) Delete(ctx context.Context, username, restaurantName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	kept := make([]types.Review, 0, len(records))
	for _, rec := range records {
		if rec.Username == username && rec.RestaurantName == restaurantName {
			continue
		}
		kept = append(kept, rec)
	}
	return s.persistLocked(ctx, kept)
}

// Reply sets the reply field of the review written by username for
// restaurantName, provided currentUser is a verified owner of the
// restaurant. The ownership check must stay here even for trusted callers:
// it is the only choke point shared by every reply path.
func (s *ReviewStore) Reply(ctx context.Context, currentUser, username, restaurantName, replyText string) error {
	owner, err := s.owners.IsOwner(ctx, currentUser, restaurantName)
	if err != nil {
		return fmt.Errorf("failed to verify ownership of %s: %w", restaurantName, err)
	}
	if !owner {
		return fmt.Errorf("user %s cannot reply to reviews of %s: %w", currentUser, restaurantName, ErrNotAuthorized)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	matched := false
	for i := range records {
		if records[i].Username == username && records[i].RestaurantName == restaurantName {
			records[i].Reply = replyText
			matched = true
			break
		}
	}
	if !matched {
		logger.Logger(ctx).WithFields(logrus.Fields{
			"username":   username,
			"restaurant": restaurantName,
		}).Warn("no review found to attach reply to")
	}
	return s.persistLocked(ctx, records)
}

// ReviewsFor returns all reviews of a restaurant, in backing-file order.
func (s *ReviewStore) ReviewsFor(ctx context.Context, restaurantName string) ([]types.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	reviews := []types.Review{}
	for _, rec := range records {
		if rec.RestaurantName == restaurantName {
			reviews = append(reviews, rec)
		}
	}
	return reviews, nil
}

// ReviewsBy returns all reviews written by a user, in backing-file order.
func (s *ReviewStore) ReviewsBy(ctx context.Context, username string) ([]types.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	reviews := []types.Review{}
	for _, rec := range records {
		if rec.Username == username {
			reviews = append(reviews, rec)
		}
	}
	return reviews, nil
}

// AverageRating returns the unweighted arithmetic mean of the restaurant's
// star ratings, or 0.0 when it has none.
func (s *ReviewStore) AverageRating(ctx context.Context, restaurantName string) (float64, error) {
	reviews, err := s.ReviewsFor(ctx, restaurantName)
	if err != nil {
		return 0, err
	}
	if len(reviews) == 0 {
		return 0, nil
	}

	sum := 0
	for _, rev := range reviews {
		sum += rev.Stars
	}
	return float64(sum) / float64(len(reviews)), nil
}

func (s *ReviewStore) loadLocked(ctx context.Context) ([]types.Review, error) {
	return loadRecords(ctx, s.cache, reviewsSnapshotKey, s.file, s.parseReview)
}

// persistLocked rewrites the whole backing file from records and refreshes
// the snapshot. On failure the snapshot is dropped: on-disk state is unknown
// and the next read must re-parse.
func (s *ReviewStore) persistLocked(ctx context.Context, records []types.Review) error {
	lines := make([]string, 0, len(records))
	for i := range records {
		lines = append(lines, recordfile.JoinFields(reviewFields(&records[i])))
	}

	if err := s.file.Rewrite(lines); err != nil {
		dropSnapshot(ctx, s.cache, reviewsSnapshotKey)
		return fmt.Errorf("failed to rewrite reviews: %w", err)
	}

	refreshSnapshot(ctx, s.cache, reviewsSnapshotKey, s.file, records)
	return nil
}

// parseReview converts one data line into a Review. Records are 5 or 6
// fields wide; a missing trailing reply means "no reply yet". Unparsable
// star ratings skip the record with a logged warning.
func (s *ReviewStore) parseReview(ctx context.Context, line string) (types.Review, bool) {
	fields := recordfile.SplitFields(line)
	if reason := VerifyReviewFields(fields); reason != "" {
		logger.Logger(ctx).WithField("file", s.file.Path).WithFields(logrus.Fields{
			"line":   line,
			"reason": reason,
		}).Warn("skipping review record")
		return types.Review{}, false
	}

	stars, _ := strconv.Atoi(fields[2])
	rev := types.Review{
		Username:       fields[0],
		RestaurantName: fields[1],
		Stars:          stars,
		Text:           fields[3],
		Timestamp:      fields[4],
	}
	if len(fields) >= 6 {
		rev.Reply = fields[5]
	}
	return rev, true
}

// VerifyReviewFields reports why the loader would drop a review record with
// the given fields, or "" when the record parses.
func VerifyReviewFields(fields []string) string {
	if len(fields) < 5 {
		return "too few fields"
	}
	if _, err := strconv.Atoi(fields[2]); err != nil {
		return "unparsable star rating"
	}
	return ""
}

func reviewFields(r *types.Review) []string {
	fields := []string{
		r.Username,
		r.RestaurantName,
		strconv.Itoa(r.Stars),
		r.Text,
		r.Timestamp,
	}
	if r.Reply != "" {
		fields = append(fields, r.Reply)
	}
	return fields
}
