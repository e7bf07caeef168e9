package notifications

import (
	"context"

	"github.com/meropanditlama/booking-api/models"
)

type EventType string

const (
	EventRequested EventType = "requested"
	EventConfirmed EventType = "confirmed"
	EventCancelled EventType = "cancelled"
	EventReminder  EventType = "reminder"
)

// Dispatcher delivers booking notifications. Implementations must not block
// the caller on delivery and never report delivery failures back.
type Dispatcher interface {
	Notify(ctx context.Context, booking *models.Booking, event EventType, recipientID uint)
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(context.Context, *models.Booking, EventType, uint) {}
