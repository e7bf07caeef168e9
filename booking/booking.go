package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/notifications"
	"github.com/meropanditlama/booking-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxReasonLength      = 500
	defaultRejectReason  = "Rejected by provider"
	cancelledByReasonFmt = "Cancelled by %s"
)

type CreateRequest struct {
	ProviderID        uint
	ServiceID         uint
	RequestedDatetime time.Time
	DurationMinutes   int
	Notes             string
}

// CreateBooking records a pending booking for a customer. The conflict check
// and the insert run under the provider lock so concurrent requests for the
// same provider cannot both pass.
func (s *Service) CreateBooking(ctx context.Context, actor Actor, req CreateRequest) (*models.Booking, error) {
	if !actor.IsCustomer() {
		return nil, utils.NewAuthorizationError("Only customers can create bookings")
	}
	if req.ProviderID == 0 {
		return nil, utils.NewValidationError("provider_id", "This field is required.")
	}
	if req.ServiceID == 0 {
		return nil, utils.NewValidationError("service_id", "This field is required.")
	}
	if err := checkDuration(req.DurationMinutes); err != nil {
		return nil, err
	}
	start := req.RequestedDatetime.UTC()
	if err := checkLeadTime(start, s.clock()); err != nil {
		return nil, err
	}

	var (
		booking  models.Booking
		provider *models.ProviderProfile
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		provider, err = lockProvider(tx, req.ProviderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewValidationError("provider_id", "Provider not found or not verified")
			}
			return err
		}
		if !provider.Verified {
			return utils.NewValidationError("provider_id", "Provider not found or not verified")
		}

		var service models.Service
		if err := tx.Select("id").First(&service, req.ServiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewValidationError("service_id", "Service not found")
			}
			return err
		}

		if err := checkConflict(tx, provider.ID, start, req.DurationMinutes); err != nil {
			return err
		}

		now := s.clock()
		booking = models.Booking{
			CustomerID:        actor.UserID,
			ProviderID:        provider.ID,
			ServiceID:         &service.ID,
			RequestedDatetime: start,
			DurationMinutes:   req.DurationMinutes,
			Status:            models.StatusPending,
			Notes:             req.Notes,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		return nil, err
	}

	created, err := s.load(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking requested",
		zap.Uint("booking_id", created.ID),
		zap.Uint("customer_id", created.CustomerID),
		zap.Uint("provider_id", created.ProviderID),
		zap.Time("requested_datetime", created.RequestedDatetime))

	s.notify(ctx, created, notifications.EventRequested, provider.UserID)
	return created, nil
}

// ConfirmBooking moves a pending booking to confirmed and books matching slots.
func (s *Service) ConfirmBooking(ctx context.Context, actor Actor, bookingID uint) (*models.Booking, error) {
	return s.transition(ctx, "confirmed", bookingID, func(b *models.Booking, p *models.ProviderProfile) (*outcome, error) {
		if !ownedByProvider(actor, p) {
			return nil, utils.NewAuthorizationError("You can only confirm your own bookings")
		}
		if b.Status != models.StatusPending {
			return nil, utils.NewStateError(string(b.Status), fmt.Sprintf("Cannot confirm booking with status: %s", b.Status))
		}
		return &outcome{
			status:    models.StatusConfirmed,
			syncSlots: boolPtr(true),
			event:     notifications.EventConfirmed,
			recipient: b.CustomerID,
		}, nil
	})
}

// RejectBooking cancels a pending booking on the provider's behalf.
func (s *Service) RejectBooking(ctx context.Context, actor Actor, bookingID uint, reason string) (*models.Booking, error) {
	reason, err := cleanReason(reason)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = defaultRejectReason
	}

	return s.transition(ctx, "rejected", bookingID, func(b *models.Booking, p *models.ProviderProfile) (*outcome, error) {
		if !ownedByProvider(actor, p) {
			return nil, utils.NewAuthorizationError("You can only reject your own bookings")
		}
		if b.Status != models.StatusPending {
			return nil, utils.NewStateError(string(b.Status), fmt.Sprintf("Cannot reject booking with status: %s", b.Status))
		}
		return &outcome{
			status:    models.StatusCancelled,
			reason:    reason,
			event:     notifications.EventCancelled,
			recipient: b.CustomerID,
		}, nil
	})
}

// CancelBooking lets either party cancel a booking that has not started yet.
// The other party is notified.
func (s *Service) CancelBooking(ctx context.Context, actor Actor, bookingID uint, reason string) (*models.Booking, error) {
	reason, err := cleanReason(reason)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = fmt.Sprintf(cancelledByReasonFmt, s.displayName(ctx, actor))
	}

	return s.transition(ctx, "cancelled", bookingID, func(b *models.Booking, p *models.ProviderProfile) (*outcome, error) {
		byCustomer := ownedByCustomer(actor, b)
		if !byCustomer && !ownedByProvider(actor, p) {
			return nil, utils.NewAuthorizationError("Not authorized to cancel this booking")
		}
		if !b.CanCancel(s.clock()) {
			return nil, utils.NewStateError(string(b.Status), "This booking cannot be cancelled")
		}

		out := &outcome{
			status: models.StatusCancelled,
			reason: reason,
			event:  notifications.EventCancelled,
		}
		if b.Status == models.StatusConfirmed {
			out.syncSlots = boolPtr(false)
		}
		if byCustomer {
			out.recipient = p.UserID
		} else {
			out.recipient = b.CustomerID
		}
		return out, nil
	})
}

// CompleteBooking closes a confirmed booking. Slots stay booked.
func (s *Service) CompleteBooking(ctx context.Context, actor Actor, bookingID uint) (*models.Booking, error) {
	return s.transition(ctx, "completed", bookingID, func(b *models.Booking, p *models.ProviderProfile) (*outcome, error) {
		if !ownedByProvider(actor, p) {
			return nil, utils.NewAuthorizationError("You can only complete your own bookings")
		}
		if b.Status != models.StatusConfirmed {
			return nil, utils.NewStateError(string(b.Status), "Only confirmed bookings can be marked as completed")
		}
		return &outcome{status: models.StatusCompleted}, nil
	})
}

func (s *Service) displayName(ctx context.Context, actor Actor) string {
	if actor.Name != "" {
		return actor.Name
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, actor.UserID).Error; err != nil {
		return "user"
	}
	return user.FullName()
}

func cleanReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) > maxReasonLength {
		return "", utils.NewValidationError("cancellation_reason", "Ensure this field has no more than 500 characters")
	}
	return reason, nil
}
