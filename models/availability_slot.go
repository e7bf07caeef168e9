package models

import "time"

// AvailabilitySlot is a provider-defined window on one local calendar date.
// Booked is maintained by the booking workflow and is read-only elsewhere.
type AvailabilitySlot struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ProviderID uint      `json:"provider_id" gorm:"not null;uniqueIndex:idx_slot_provider_date_start,priority:1"`
	Date       string    `json:"date" gorm:"size:10;not null;uniqueIndex:idx_slot_provider_date_start,priority:2"`
	StartTime  string    `json:"start_time" gorm:"size:8;not null;uniqueIndex:idx_slot_provider_date_start,priority:3"`
	EndTime    string    `json:"end_time" gorm:"size:8;not null"`
	Booked     bool      `json:"is_booked" gorm:"column:is_booked;default:false"`
	Notes      string    `json:"notes" gorm:"size:200"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Contains reports whether clock ("HH:MM:SS") falls within [StartTime, EndTime).
func (s *AvailabilitySlot) Contains(clock string) bool {
	return s.StartTime <= clock && clock < s.EndTime
}
