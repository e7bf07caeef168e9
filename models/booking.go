package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

const (
	MinDurationMinutes     = 30
	DefaultDurationMinutes = 60
)

type Booking struct {
	ID                 uint             `json:"id" gorm:"primaryKey"`
	CustomerID         uint             `json:"customer_id" gorm:"index;not null"`
	Customer           *User            `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	ProviderID         uint             `json:"provider_id" gorm:"index:idx_booking_provider_status;not null"`
	Provider           *ProviderProfile `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	ServiceID          *uint            `json:"service_id"`
	Service            *Service         `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	RequestedDatetime  time.Time        `json:"requested_datetime" gorm:"not null"`
	DurationMinutes    int              `json:"duration_minutes" gorm:"not null;default:60"`
	Status             BookingStatus    `json:"status" gorm:"size:20;not null;index:idx_booking_provider_status"`
	Notes              string           `json:"notes" gorm:"type:text"`
	CancellationReason string           `json:"cancellation_reason" gorm:"type:text"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = StatusPending
	}
	if b.DurationMinutes == 0 {
		b.DurationMinutes = DefaultDurationMinutes
	}
	return nil
}

// EndTime is the requested start plus the booked duration.
func (b *Booking) EndTime() time.Time {
	return b.RequestedDatetime.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// IsActive reports whether the booking still holds the provider's time.
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanCancel holds for active bookings whose requested time is still ahead.
func (b *Booking) CanCancel(now time.Time) bool {
	return b.IsActive() && b.RequestedDatetime.After(now)
}

// CanTransitionTo encodes the status graph. Completed and cancelled are terminal.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch b.Status {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}
