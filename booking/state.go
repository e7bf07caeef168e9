package booking

import (
	"context"
	"errors"

	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/notifications"
	"github.com/meropanditlama/booking-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// outcome is what a transition step decided inside the transaction.
type outcome struct {
	status    models.BookingStatus
	reason    string
	syncSlots *bool
	event     notifications.EventType
	recipient uint
}

type step func(booking *models.Booking, provider *models.ProviderProfile) (*outcome, error)

// transition loads the booking, takes the provider lock, runs the step and
// writes status and slot flags in one transaction. The notification goes out
// after commit.
func (s *Service) transition(ctx context.Context, name string, bookingID uint, fn step) (*models.Booking, error) {
	var (
		result   *outcome
		snapshot models.Booking
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "provider_id").First(&snapshot, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("booking")
			}
			return err
		}

		provider, err := lockProvider(tx, snapshot.ProviderID)
		if err != nil {
			return err
		}

		// Re-read under the lock so the status check sees committed state.
		if err := tx.First(&snapshot, bookingID).Error; err != nil {
			return err
		}

		result, err = fn(&snapshot, provider)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":     result.status,
			"updated_at": s.clock(),
		}
		if result.status == models.StatusCancelled {
			updates["cancellation_reason"] = result.reason
		}
		if err := tx.Model(&models.Booking{}).Where("id = ?", snapshot.ID).Updates(updates).Error; err != nil {
			return err
		}

		if result.syncSlots != nil {
			return s.syncSlots(tx, &snapshot, *result.syncSlots)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking "+name,
		zap.Uint("booking_id", booking.ID),
		zap.Uint("provider_id", booking.ProviderID),
		zap.String("status", string(booking.Status)))

	if result.event != "" {
		s.notify(ctx, booking, result.event, result.recipient)
	}
	return booking, nil
}

func ownedByProvider(actor Actor, provider *models.ProviderProfile) bool {
	return actor.IsProvider() && provider.UserID == actor.UserID
}

func ownedByCustomer(actor Actor, booking *models.Booking) bool {
	return booking.CustomerID == actor.UserID && !actor.IsProvider()
}

func boolPtr(v bool) *bool { return &v }
