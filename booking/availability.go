package booking

import (
	"context"
	"errors"
	"time"

	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxSlotNotes = 200

// SlotInput describes a slot to create. Times accept HH:MM or HH:MM:SS.
type SlotInput struct {
	Date      string
	StartTime string
	EndTime   string
	Notes     string
}

// SlotUpdate carries the fields to change; nil fields are left alone.
type SlotUpdate struct {
	Date      *string
	StartTime *string
	EndTime   *string
	Notes     *string
}

func normalizeSlot(date, start, end, notes string) (models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	var err error

	if slot.Date, err = utils.NormalizeDate(date); err != nil {
		return slot, utils.NewValidationError("date", err.Error())
	}
	if slot.StartTime, err = utils.NormalizeClock(start); err != nil {
		return slot, utils.NewValidationError("start_time", err.Error())
	}
	if slot.EndTime, err = utils.NormalizeClock(end); err != nil {
		return slot, utils.NewValidationError("end_time", err.Error())
	}
	if slot.EndTime <= slot.StartTime {
		return slot, utils.NewValidationError("end_time", "End time must be after start time")
	}
	if len([]rune(notes)) > maxSlotNotes {
		return slot, utils.NewValidationError("notes", "Notes must be at most 200 characters")
	}
	slot.Notes = notes
	return slot, nil
}

var errDuplicateSlot = utils.NewValidationError("start_time", "A slot already exists for this date and start time")

func ensureSlotUnique(tx *gorm.DB, slot *models.AvailabilitySlot) error {
	var count int64
	q := tx.Model(&models.AvailabilitySlot{}).
		Where("provider_id = ? AND date = ? AND start_time = ?", slot.ProviderID, slot.Date, slot.StartTime)
	if slot.ID != 0 {
		q = q.Where("id <> ?", slot.ID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errDuplicateSlot
	}
	return nil
}

// CreateSlot adds a free slot to the actor's provider profile.
func (s *Service) CreateSlot(ctx context.Context, actor Actor, in SlotInput) (*models.AvailabilitySlot, error) {
	slot, err := normalizeSlot(in.Date, in.StartTime, in.EndTime, in.Notes)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := providerFor(tx, actor)
		if err != nil {
			return err
		}
		if _, err := lockProvider(tx, profile.ID); err != nil {
			return err
		}

		slot.ProviderID = profile.ID
		if err := ensureSlotUnique(tx, &slot); err != nil {
			return err
		}
		if err := tx.Create(&slot).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDuplicateSlot
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("availability slot created",
		zap.Uint("slot_id", slot.ID),
		zap.Uint("provider_id", slot.ProviderID),
		zap.String("date", slot.Date),
		zap.String("start_time", slot.StartTime))
	return &slot, nil
}

// ownSlot loads a slot of the actor's profile under the provider lock.
// Booked slots are frozen.
func ownSlot(tx *gorm.DB, actor Actor, slotID uint) (*models.AvailabilitySlot, error) {
	profile, err := providerFor(tx, actor)
	if err != nil {
		return nil, err
	}
	if _, err := lockProvider(tx, profile.ID); err != nil {
		return nil, err
	}

	var slot models.AvailabilitySlot
	if err := tx.Where("id = ? AND provider_id = ?", slotID, profile.ID).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("availability slot")
		}
		return nil, err
	}
	if slot.Booked {
		return nil, utils.NewConflictError("Booked slots cannot be modified or deleted")
	}
	return &slot, nil
}

func (s *Service) UpdateSlot(ctx context.Context, actor Actor, slotID uint, in SlotUpdate) (*models.AvailabilitySlot, error) {
	var updated *models.AvailabilitySlot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := ownSlot(tx, actor, slotID)
		if err != nil {
			return err
		}

		date, start, end, notes := slot.Date, slot.StartTime, slot.EndTime, slot.Notes
		if in.Date != nil {
			date = *in.Date
		}
		if in.StartTime != nil {
			start = *in.StartTime
		}
		if in.EndTime != nil {
			end = *in.EndTime
		}
		if in.Notes != nil {
			notes = *in.Notes
		}

		next, err := normalizeSlot(date, start, end, notes)
		if err != nil {
			return err
		}
		next.ID = slot.ID
		next.ProviderID = slot.ProviderID
		if err := ensureSlotUnique(tx, &next); err != nil {
			return err
		}

		err = tx.Model(&models.AvailabilitySlot{}).Where("id = ?", slot.ID).Updates(map[string]interface{}{
			"date":       next.Date,
			"start_time": next.StartTime,
			"end_time":   next.EndTime,
			"notes":      next.Notes,
			"updated_at": s.clock(),
		}).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDuplicateSlot
			}
			return err
		}

		updated = &models.AvailabilitySlot{}
		return tx.First(updated, slot.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteSlot(ctx context.Context, actor Actor, slotID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := ownSlot(tx, actor, slotID)
		if err != nil {
			return err
		}
		return tx.Delete(&models.AvailabilitySlot{}, slot.ID).Error
	})
}

// SlotFilter narrows ListSlots. Empty dates are unbounded.
type SlotFilter struct {
	DateFrom string
	DateTo   string
	FreeOnly bool
}

func (s *Service) ListSlots(ctx context.Context, providerID uint, filter SlotFilter) ([]models.AvailabilitySlot, error) {
	q := s.db.WithContext(ctx).Where("provider_id = ?", providerID)
	if filter.DateFrom != "" {
		from, err := utils.NormalizeDate(filter.DateFrom)
		if err != nil {
			return nil, utils.NewValidationError("date_from", err.Error())
		}
		q = q.Where("date >= ?", from)
	}
	if filter.DateTo != "" {
		to, err := utils.NormalizeDate(filter.DateTo)
		if err != nil {
			return nil, utils.NewValidationError("date_to", err.Error())
		}
		q = q.Where("date <= ?", to)
	}
	if filter.FreeOnly {
		q = q.Where("is_booked = ?", false)
	}

	var slots []models.AvailabilitySlot
	if err := q.Order("date ASC").Order("start_time ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// markBooked is the only writer of the booked flag. It flips every slot of
// the provider on date whose [start, end) contains clock, and must run in the
// transaction that writes the booking status. Releasing skips slots that still
// contain the start of another confirmed booking.
func (s *Service) markBooked(tx *gorm.DB, providerID uint, date, clock string, booked bool) (int64, error) {
	q := tx.Model(&models.AvailabilitySlot{}).
		Where("provider_id = ? AND date = ? AND start_time <= ? AND end_time > ?", providerID, date, clock, clock)
	if !booked {
		held, err := s.heldSlots(tx, providerID, date)
		if err != nil {
			return 0, err
		}
		if len(held) > 0 {
			q = q.Where("id NOT IN ?", held)
		}
	}
	result := q.Updates(map[string]interface{}{
			"is_booked":  booked,
			"updated_at": s.clock(),
		})
	return result.RowsAffected, result.Error
}

// heldSlots returns the booked slots on date that contain the local start of
// a confirmed booking.
func (s *Service) heldSlots(tx *gorm.DB, providerID uint, date string) ([]uint, error) {
	dayStart, err := time.ParseInLocation(utils.DateLayout, date, s.loc)
	if err != nil {
		return nil, err
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	var confirmed []models.Booking
	err = tx.Select("id", "requested_datetime").
		Where("provider_id = ? AND status = ? AND requested_datetime >= ? AND requested_datetime < ?",
			providerID, models.StatusConfirmed, dayStart.UTC(), dayEnd.UTC()).
		Find(&confirmed).Error
	if err != nil || len(confirmed) == 0 {
		return nil, err
	}

	var slots []models.AvailabilitySlot
	if err := tx.Where("provider_id = ? AND date = ? AND is_booked = ?", providerID, date, true).Find(&slots).Error; err != nil {
		return nil, err
	}

	var held []uint
	for _, slot := range slots {
		for _, b := range confirmed {
			if _, clock := utils.SplitDateTime(b.RequestedDatetime, s.loc); slot.Contains(clock) {
				held = append(held, slot.ID)
				break
			}
		}
	}
	return held, nil
}

// syncSlots maps a booking's start onto provider-local slot coordinates.
func (s *Service) syncSlots(tx *gorm.DB, booking *models.Booking, booked bool) error {
	date, clock := utils.SplitDateTime(booking.RequestedDatetime, s.loc)
	n, err := s.markBooked(tx, booking.ProviderID, date, clock, booked)
	if err != nil {
		return err
	}
	s.log.Debug("availability synced",
		zap.Uint("booking_id", booking.ID),
		zap.Bool("booked", booked),
		zap.Int64("slots", n))
	return nil
}

