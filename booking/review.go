package booking

import (
	"context"
	"errors"
	"math"

	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddReview attaches the customer's single review to a completed booking.
func (s *Service) AddReview(ctx context.Context, actor Actor, bookingID uint, rating int, comment string) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("booking")
			}
			return err
		}
		if !ownedByCustomer(actor, &booking) {
			return utils.NewAuthorizationError("Only the booking's customer can review it")
		}
		if booking.Status != models.StatusCompleted {
			return utils.NewStateError(string(booking.Status), "Only completed bookings can be reviewed")
		}
		if !models.ValidRating(rating) {
			return utils.NewValidationError("rating", "Rating must be between 1 and 5")
		}

		review = models.Review{
			BookingID:  booking.ID,
			CustomerID: booking.CustomerID,
			ProviderID: booking.ProviderID,
			Rating:     rating,
			Comment:    comment,
		}
		exists, err := review.HasExistingReview(tx)
		if err != nil {
			return err
		}
		if exists {
			return utils.NewValidationError("booking_id", "This booking has already been reviewed")
		}
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.NewValidationError("booking_id", "This booking has already been reviewed")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("review added",
		zap.Uint("booking_id", review.BookingID),
		zap.Uint("provider_id", review.ProviderID),
		zap.Int("rating", review.Rating))
	return &review, nil
}

// ListReviews returns a provider's reviews, newest first.
func (s *Service) ListReviews(ctx context.Context, providerID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reviews).Error
	return reviews, err
}

// RatingSummary returns the average rating rounded to one decimal and the review count.
func (s *Service) RatingSummary(ctx context.Context, providerID uint) (float64, int64, error) {
	var summary struct {
		Average float64
		Total   int64
	}
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("provider_id = ?", providerID).
		Scan(&summary).Error
	if err != nil {
		return 0, 0, err
	}
	return math.Round(summary.Average*10) / 10, summary.Total, nil
}
