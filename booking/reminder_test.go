package booking

import (
	"context"
	"testing"
	"time"

	"github.com/meropanditlama/booking-api/notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendReminders(t *testing.T) {
	f := newFixture(t)

	inWindow := f.confirmed(f.customerActor, baseNow.Add(25*time.Hour))
	f.confirmed(f.otherCustomer, baseNow.Add(30*time.Hour))
	f.book(f.otherCustomer, baseNow.Add(27*time.Hour))
	f.notifier.reset()

	// The first booking now starts in 23h55m.
	f.now = baseNow.Add(time.Hour + 5*time.Minute)
	sent, err := f.svc.SendReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sent)
	assert.Equal(t, []sentNotification{
		{BookingID: inWindow.ID, Event: notifications.EventReminder, RecipientID: f.customerA.ID},
	}, f.notifier.all())
}

func TestSendReminders_WindowBounds(t *testing.T) {
	f := newFixture(t)
	b := f.confirmed(f.customerActor, baseNow.Add(25*time.Hour))

	// Exactly LeadTime ahead is outside the half-open window.
	f.now = b.RequestedDatetime.Add(-LeadTime)
	f.notifier.reset()
	sent, err := f.svc.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	// Exactly LeadTime-ReminderWindow ahead is inside.
	f.now = b.RequestedDatetime.Add(-(LeadTime - ReminderWindow))
	sent, err = f.svc.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}
