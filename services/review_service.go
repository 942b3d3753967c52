package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"staybook/logger"
	"staybook/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewInput struct {
	BookingID uint `json:"booking"`
	models.Ratings
	Comment string `json:"comment"`
}

// ReviewManager enforces one review per completed booking, written by the
// booking's guest, and keeps the place's aggregate rating current.
type ReviewManager struct {
	store
	guard    Guard
	cache    Cache
	log      *logger.Logger
	redelete time.Duration
}

// NewReviewManager builds the manager. cache may be nil; when set, the
// affected place's cached reads are dropped after every write.
func NewReviewManager(db *gorm.DB, cfg StoreConfig, cache Cache, l *logger.Logger) *ReviewManager {
	return &ReviewManager{
		store:    store{db: db, timeout: cfg.Timeout},
		cache:    cache,
		log:      l,
		redelete: cacheRedeleteDelay,
	}
}

// Upsert creates the review for in.BookingID, or updates it when one exists.
// The returned bool is true when a new review was created.
func (m *ReviewManager) Upsert(ctx context.Context, reviewerID uint, in ReviewInput) (*models.Review, bool, error) {
	if err := in.validate(); err != nil {
		return nil, false, err
	}

	db, cancel := m.session(ctx)
	defer cancel()

	booking, err := m.eligibleBooking(db, reviewerID, in.BookingID)
	if err != nil {
		return nil, false, err
	}

	var existing models.Review
	err = db.Where("booking_id = ?", booking.ID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		review := &models.Review{
			BookingID:  booking.ID,
			PlaceID:    booking.PlaceID,
			ReviewerID: reviewerID,
			Ratings:    in.Ratings,
			Comment:    strings.TrimSpace(in.Comment),
			Version:    1,
		}
		if err := db.Create(review).Error; err != nil {
			return nil, false, storeErr("create review", err)
		}
		m.refreshPlaceRating(db, booking.PlaceID)
		return review, true, nil
	case err != nil:
		return nil, false, storeErr("load review", err)
	}

	review, err := m.write(db, &existing, in)
	if err != nil {
		return nil, false, err
	}
	return review, false, nil
}

// UpdateByID edits an existing review. The booking, listing and reviewer are
// taken from the stored review; only ratings and comment come from in.
func (m *ReviewManager) UpdateByID(ctx context.Context, reviewerID, reviewID uint, in ReviewInput) (*models.Review, error) {
	if err := in.validateContent(); err != nil {
		return nil, err
	}

	db, cancel := m.session(ctx)
	defer cancel()

	var existing models.Review
	if err := db.First(&existing, reviewID).Error; err != nil {
		return nil, storeErr("load review", err)
	}
	if _, err := m.eligibleBooking(db, reviewerID, existing.BookingID); err != nil {
		return nil, err
	}

	return m.write(db, &existing, in)
}

func (m *ReviewManager) ListForListing(ctx context.Context, placeID uint) ([]models.Review, error) {
	db, cancel := m.session(ctx)
	defer cancel()

	if err := placeExists(db, placeID); err != nil {
		return nil, err
	}

	reviews := []models.Review{}
	if err := db.Where("place_id = ?", placeID).Order("created_at DESC, id DESC").Find(&reviews).Error; err != nil {
		return nil, storeErr("list place reviews", err)
	}
	return reviews, nil
}

func (m *ReviewManager) ListForReviewer(ctx context.Context, reviewerID uint) ([]models.Review, error) {
	db, cancel := m.session(ctx)
	defer cancel()

	reviews := []models.Review{}
	if err := db.Where("reviewer_id = ?", reviewerID).Order("created_at DESC, id DESC").Find(&reviews).Error; err != nil {
		return nil, storeErr("list user reviews", err)
	}
	return reviews, nil
}

// AverageRating is the mean, over the place's reviews, of each review's
// six-category mean. A place without reviews yields ErrNoReviews; an unknown
// place yields ErrNotFound.
func (m *ReviewManager) AverageRating(ctx context.Context, placeID uint) (float64, error) {
	db, cancel := m.session(ctx)
	defer cancel()

	if err := placeExists(db, placeID); err != nil {
		return 0, err
	}

	avg, count, err := averageOf(db, placeID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrNoReviews
	}
	return avg, nil
}

// eligibleBooking loads the booking and checks it may be reviewed by
// reviewerID: it must be completed and reviewerID must be its guest.
func (m *ReviewManager) eligibleBooking(db *gorm.DB, reviewerID, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := db.First(&booking, bookingID).Error; err != nil {
		return nil, storeErr("load booking", err)
	}
	if booking.Status != models.BookingCompleted {
		return nil, fmt.Errorf("booking %d is %s: %w", booking.ID, booking.Status, ErrNotEligible)
	}
	if err := m.guard.Authorize(reviewerID, booking.GuestID); err != nil {
		return nil, fmt.Errorf("review booking %d: %w", booking.ID, err)
	}
	return &booking, nil
}

// write updates ratings and comment, conditional on the version read.
func (m *ReviewManager) write(db *gorm.DB, existing *models.Review, in ReviewInput) (*models.Review, error) {
	comment := strings.TrimSpace(in.Comment)
	res := db.Model(&models.Review{}).
		Where("id = ? AND version = ?", existing.ID, existing.Version).
		Updates(map[string]any{
			"cleanliness":   in.Cleanliness,
			"accuracy":      in.Accuracy,
			"check_in":      in.CheckIn,
			"communication": in.Communication,
			"location":      in.Location,
			"value":         in.Value,
			"comment":       comment,
			"version":       gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, storeErr("update review", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("review %d changed concurrently: %w", existing.ID, ErrConflict)
	}

	var updated models.Review
	if err := db.First(&updated, existing.ID).Error; err != nil {
		return nil, storeErr("reload review", err)
	}

	m.refreshPlaceRating(db, updated.PlaceID)
	return &updated, nil
}

// refreshPlaceRating recomputes the place's denormalized rating. The place
// row is locked first and the aggregate is computed in the same statement
// that stores it, so concurrent refreshes cannot write back a stale value.
// The review write has already landed, so failures are logged rather than
// returned.
func (m *ReviewManager) refreshPlaceRating(db *gorm.DB, placeID uint) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var place models.Place
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&place, placeID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Place{}).Where("id = ?", placeID).Updates(map[string]any{
			"rating":       gorm.Expr("(SELECT AVG(("+ratingSum+") / 6.0) FROM reviews WHERE place_id = ?)", placeID),
			"review_count": gorm.Expr("(SELECT COUNT(*) FROM reviews WHERE place_id = ?)", placeID),
		}).Error
	})
	if err != nil {
		m.log.LogErrorf("refresh rating of place %d: %v", placeID, err)
		return
	}

	invalidatePlace(m.cache, m.log, placeID, m.redelete)
}

const ratingSum = "cleanliness + accuracy + check_in + communication + location + value"

func placeExists(db *gorm.DB, placeID uint) error {
	var place models.Place
	if err := db.Select("id").First(&place, placeID).Error; err != nil {
		return storeErr("load place", err)
	}
	return nil
}

func averageOf(db *gorm.DB, placeID uint) (float64, int, error) {
	var reviews []models.Review
	if err := db.Select("cleanliness", "accuracy", "check_in", "communication", "location", "value").
		Where("place_id = ?", placeID).Find(&reviews).Error; err != nil {
		return 0, 0, storeErr("load place ratings", err)
	}
	if len(reviews) == 0 {
		return 0, 0, nil
	}

	var sum float64
	for _, r := range reviews {
		sum += r.Mean()
	}
	return sum / float64(len(reviews)), len(reviews), nil
}

func (in ReviewInput) validate() error {
	verr := newValidationError()
	if in.BookingID == 0 {
		verr.add("booking", "is required")
	}
	in.check(verr)
	return verr.orNil()
}

func (in ReviewInput) validateContent() error {
	verr := newValidationError()
	in.check(verr)
	return verr.orNil()
}

func (in ReviewInput) check(verr *ValidationError) {
	if err := verr.merge(in.Ratings.Validate()); err != nil {
		verr.add("ratings", "is invalid")
	}
	if strings.TrimSpace(in.Comment) == "" {
		verr.add("comment", "must not be empty")
	}
}
