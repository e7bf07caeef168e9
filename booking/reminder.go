package booking

import (
	"context"
	"time"

	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/notifications"
	"go.uber.org/zap"
)

// ReminderWindow should match the reminder job's schedule so every booking
// falls into exactly one run.
const ReminderWindow = 15 * time.Minute

// SendReminders notifies customers of confirmed bookings starting between
// LeadTime-ReminderWindow and LeadTime from now.
func (s *Service) SendReminders(ctx context.Context) (int, error) {
	now := s.clock()
	from := now.Add(LeadTime - ReminderWindow)
	to := now.Add(LeadTime)

	var bookings []models.Booking
	err := withRelations(s.db.WithContext(ctx).Model(&models.Booking{})).
		Where("status = ?", models.StatusConfirmed).
		Where("requested_datetime >= ? AND requested_datetime < ?", from, to).
		Order("requested_datetime ASC").
		Find(&bookings).Error
	if err != nil {
		return 0, err
	}

	for i := range bookings {
		s.notify(ctx, &bookings[i], notifications.EventReminder, bookings[i].CustomerID)
	}
	s.log.Info("booking reminders dispatched", zap.Int("count", len(bookings)))
	return len(bookings), nil
}
