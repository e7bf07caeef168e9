package booking

import (
	"time"

	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/utils"
	"gorm.io/gorm"
)

const (
	// LeadTime is the minimum notice between now and a requested start.
	LeadTime = 24 * time.Hour
	// ConflictBuffer reaches back from a requested start when looking for
	// existing bookings that start too close to it.
	ConflictBuffer = 60 * time.Minute
)

var activeStatuses = []models.BookingStatus{models.StatusPending, models.StatusConfirmed}

// ConflictWindow returns [start-60m, start+duration). An active booking of the
// same provider whose start lies in this window conflicts with the request.
// Only existing start times are compared, not their full intervals.
func ConflictWindow(start time.Time, durationMinutes int) (time.Time, time.Time) {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	return start.Add(-ConflictBuffer), end
}

func checkLeadTime(start, now time.Time) error {
	if start.Before(now.Add(LeadTime)) {
		return utils.NewValidationError("requested_datetime", "Bookings must be made at least 24 hours in advance")
	}
	return nil
}

func checkDuration(minutes int) error {
	if minutes < models.MinDurationMinutes {
		return utils.NewValidationError("duration_minutes", "Duration must be at least 30 minutes")
	}
	return nil
}

// checkConflict must run inside the transaction holding the provider lock.
func checkConflict(tx *gorm.DB, providerID uint, start time.Time, durationMinutes int) error {
	from, to := ConflictWindow(start.UTC(), durationMinutes)

	var count int64
	err := tx.Model(&models.Booking{}).
		Where("provider_id = ? AND status IN ?", providerID, activeStatuses).
		Where("requested_datetime >= ? AND requested_datetime < ?", from, to).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return utils.NewValidationError("requested_datetime", "This time slot is not available. Please choose another time.")
	}
	return nil
}
