package booking

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/notifications"
	"github.com/meropanditlama/booking-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmBooking_BooksCoveringSlot(t *testing.T) {
	f := newFixture(t)
	covering := f.slot("2025-06-01", "09:00", "12:00")
	other := f.slot("2025-06-01", "14:00", "16:00")
	b := f.book(f.customerActor, at(1, 10, 0))
	f.notifier.reset()

	confirmed, err := f.svc.ConfirmBooking(context.Background(), f.providerActor, b.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	assert.True(t, f.isBooked(covering.ID))
	assert.False(t, f.isBooked(other.ID))
	assert.Equal(t, sentNotification{BookingID: b.ID, Event: notifications.EventConfirmed, RecipientID: f.customerA.ID}, f.notifier.last())
}

func TestConfirmBooking_SlotIntervalIsHalfOpen(t *testing.T) {
	f := newFixture(t)
	before := f.slot("2025-06-01", "09:00", "10:00")
	from := f.slot("2025-06-01", "10:00", "11:00")
	b := f.book(f.customerActor, at(1, 10, 0))

	_, err := f.svc.ConfirmBooking(context.Background(), f.providerActor, b.ID)
	require.NoError(t, err)

	assert.False(t, f.isBooked(before.ID))
	assert.True(t, f.isBooked(from.ID))
}

func TestConfirmBooking_Twice(t *testing.T) {
	f := newFixture(t)
	slot := f.slot("2025-06-01", "09:00", "12:00")
	b := f.confirmed(f.customerActor, at(1, 10, 0))
	f.notifier.reset()

	_, err := f.svc.ConfirmBooking(context.Background(), f.providerActor, b.ID)
	appErr := requireKind(t, err, utils.KindState)
	assert.Equal(t, string(models.StatusConfirmed), appErr.Status)

	assert.True(t, f.isBooked(slot.ID))
	assert.Equal(t, models.StatusConfirmed, f.status(b.ID))
	assert.Empty(t, f.notifier.all())
}

func TestConfirmBooking_Authorization(t *testing.T) {
	f := newFixture(t)
	_, otherProvider := f.secondProvider()
	b := f.book(f.customerActor, at(1, 10, 0))

	_, err := f.svc.ConfirmBooking(context.Background(), otherProvider, b.ID)
	requireKind(t, err, utils.KindAuthorization)

	_, err = f.svc.ConfirmBooking(context.Background(), f.customerActor, b.ID)
	requireKind(t, err, utils.KindAuthorization)

	assert.Equal(t, models.StatusPending, f.status(b.ID))
}

func TestTransitions_OwnershipCheckedBeforeState(t *testing.T) {
	f := newFixture(t)
	_, otherProvider := f.secondProvider()
	b := f.confirmed(f.customerActor, at(1, 10, 0))

	_, err := f.svc.ConfirmBooking(context.Background(), otherProvider, b.ID)
	requireKind(t, err, utils.KindAuthorization)

	_, err = f.svc.RejectBooking(context.Background(), otherProvider, b.ID, "")
	requireKind(t, err, utils.KindAuthorization)

	_, err = f.svc.CancelBooking(context.Background(), f.otherCustomer, b.ID, "")
	requireKind(t, err, utils.KindAuthorization)
}

func TestTransitions_UnknownBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ConfirmBooking(context.Background(), f.providerActor, 777)
	requireKind(t, err, utils.KindNotFound)
	_, err = f.svc.RejectBooking(context.Background(), f.providerActor, 777, "")
	requireKind(t, err, utils.KindNotFound)
	_, err = f.svc.CancelBooking(context.Background(), f.customerActor, 777, "")
	requireKind(t, err, utils.KindNotFound)
	_, err = f.svc.CompleteBooking(context.Background(), f.providerActor, 777)
	requireKind(t, err, utils.KindNotFound)
}

func TestCompleteBooking_KeepsSlotBooked(t *testing.T) {
	f := newFixture(t)
	slot := f.slot("2025-06-01", "09:00", "12:00")
	b := f.confirmed(f.customerActor, at(1, 10, 0))
	f.notifier.reset()

	completed, err := f.svc.CompleteBooking(context.Background(), f.providerActor, b.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.True(t, f.isBooked(slot.ID))
	assert.False(t, completed.CanCancel(f.now))
	assert.Empty(t, f.notifier.all())
}

func TestCompleteBooking_RequiresConfirmed(t *testing.T) {
	f := newFixture(t)
	b := f.book(f.customerActor, at(1, 10, 0))

	_, err := f.svc.CompleteBooking(context.Background(), f.providerActor, b.ID)
	appErr := requireKind(t, err, utils.KindState)
	assert.Equal(t, string(models.StatusPending), appErr.Status)
}

func TestRejectBooking(t *testing.T) {
	f := newFixture(t)
	b := f.book(f.customerActor, at(1, 10, 0))
	f.notifier.reset()

	rejected, err := f.svc.RejectBooking(context.Background(), f.providerActor, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, rejected.Status)
	assert.Equal(t, "Rejected by provider", rejected.CancellationReason)
	assert.Equal(t, sentNotification{BookingID: b.ID, Event: notifications.EventCancelled, RecipientID: f.customerA.ID}, f.notifier.last())

	_, err = f.svc.RejectBooking(context.Background(), f.providerActor, b.ID, "again")
	appErr := requireKind(t, err, utils.KindState)
	assert.Equal(t, string(models.StatusCancelled), appErr.Status)
	assert.Len(t, f.notifier.all(), 1)
}

func TestRejectBooking_CustomReason(t *testing.T) {
	f := newFixture(t)
	b := f.book(f.customerActor, at(1, 10, 0))

	_, err := f.svc.RejectBooking(context.Background(), f.providerActor, b.ID, strings.Repeat("x", 501))
	appErr := requireKind(t, err, utils.KindValidation)
	assert.Equal(t, "cancellation_reason", appErr.Field)

	rejected, err := f.svc.RejectBooking(context.Background(), f.providerActor, b.ID, "  Travelling that week ")
	require.NoError(t, err)
	assert.Equal(t, "Travelling that week", rejected.CancellationReason)
}

func TestRejectBooking_ConfirmedIsStateError(t *testing.T) {
	f := newFixture(t)
	b := f.confirmed(f.customerActor, at(1, 10, 0))

	_, err := f.svc.RejectBooking(context.Background(), f.providerActor, b.ID, "")
	requireKind(t, err, utils.KindState)
}

func TestCancelBooking_PendingLeavesSlotsAlone(t *testing.T) {
	f := newFixture(t)
	slot := f.slot("2025-06-01", "09:00", "12:00")
	b := f.book(f.customerActor, at(1, 10, 0))
	f.notifier.reset()

	cancelled, err := f.svc.CancelBooking(context.Background(), f.customerActor, b.ID, "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "Cancelled by Sita Sharma", cancelled.CancellationReason)
	assert.False(t, f.isBooked(slot.ID))
	assert.Equal(t, sentNotification{BookingID: b.ID, Event: notifications.EventCancelled, RecipientID: f.providerUser.ID}, f.notifier.last())
}

func TestCancelBooking_ConfirmedFreesSlot(t *testing.T) {
	f := newFixture(t)
	slot := f.slot("2025-06-01", "09:00", "12:00")
	b := f.confirmed(f.customerActor, at(1, 10, 0))
	require.True(t, f.isBooked(slot.ID))
	f.notifier.reset()

	cancelled, err := f.svc.CancelBooking(context.Background(), f.providerActor, b.ID, "Family emergency")
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "Family emergency", cancelled.CancellationReason)
	assert.False(t, f.isBooked(slot.ID))
	assert.Equal(t, sentNotification{BookingID: b.ID, Event: notifications.EventCancelled, RecipientID: f.customerA.ID}, f.notifier.last())
}

func TestCancelBooking_DefaultReasonWithoutActorName(t *testing.T) {
	f := newFixture(t)
	b := f.book(f.customerActor, at(1, 10, 0))
	actor := f.customerActor
	actor.Name = ""

	cancelled, err := f.svc.CancelBooking(context.Background(), actor, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Cancelled by Sita Sharma", cancelled.CancellationReason)
}

func TestCancelBooking_TerminalStates(t *testing.T) {
	f := newFixture(t)
	completed := f.confirmed(f.customerActor, at(1, 10, 0))
	_, err := f.svc.CompleteBooking(context.Background(), f.providerActor, completed.ID)
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(context.Background(), f.customerActor, completed.ID, "")
	appErr := requireKind(t, err, utils.KindState)
	assert.Equal(t, string(models.StatusCompleted), appErr.Status)

	cancelled := f.book(f.customerActor, at(2, 10, 0))
	_, err = f.svc.CancelBooking(context.Background(), f.customerActor, cancelled.ID, "")
	require.NoError(t, err)
	_, err = f.svc.CancelBooking(context.Background(), f.customerActor, cancelled.ID, "")
	appErr = requireKind(t, err, utils.KindState)
	assert.Equal(t, string(models.StatusCancelled), appErr.Status)
}

func TestCancelBooking_PastBooking(t *testing.T) {
	f := newFixture(t)
	b := f.confirmed(f.customerActor, at(1, 10, 0))

	f.now = at(1, 10, 0).Add(time.Minute)
	_, err := f.svc.CancelBooking(context.Background(), f.customerActor, b.ID, "")
	appErr := requireKind(t, err, utils.KindState)
	assert.Equal(t, string(models.StatusConfirmed), appErr.Status)
}

func TestCancelBooking_ReasonTooLong(t *testing.T) {
	f := newFixture(t)
	b := f.book(f.customerActor, at(1, 10, 0))

	_, err := f.svc.CancelBooking(context.Background(), f.customerActor, b.ID, strings.Repeat("é", 501))
	requireKind(t, err, utils.KindValidation)
	assert.Equal(t, models.StatusPending, f.status(b.ID))
}

func TestCancelBooking_UpdatesTimestamp(t *testing.T) {
	f := newFixture(t)
	b := f.book(f.customerActor, at(1, 10, 0))

	f.now = baseNow.Add(2 * time.Hour)
	cancelled, err := f.svc.CancelBooking(context.Background(), f.customerActor, b.ID, "")
	require.NoError(t, err)
	assert.True(t, cancelled.UpdatedAt.Equal(f.now), cancelled.UpdatedAt.String())
}

func TestMarkBooked_MatchesAllCoveringSlots(t *testing.T) {
	f := newFixture(t)
	wide := f.slot("2025-06-01", "08:00", "18:00")
	narrow := f.slot("2025-06-01", "10:00", "10:30")
	nextDay := f.slot("2025-06-02", "08:00", "18:00")

	n, err := f.svc.markBooked(f.db, f.provider.ID, "2025-06-01", "10:15:00", true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.True(t, f.isBooked(wide.ID))
	assert.True(t, f.isBooked(narrow.ID))
	assert.False(t, f.isBooked(nextDay.ID))
}

func TestSyncSlots_UsesProviderLocation(t *testing.T) {
	f := newFixture(t)
	f.svc.loc = time.FixedZone("NPT", 5*3600+45*60)
	// 04:15 UTC is 10:00 in Kathmandu.
	slot := f.slot("2025-06-01", "10:00", "11:00")
	b := f.book(f.customerActor, time.Date(2025, 6, 1, 4, 15, 0, 0, time.UTC))

	_, err := f.svc.ConfirmBooking(context.Background(), f.providerActor, b.ID)
	require.NoError(t, err)
	assert.True(t, f.isBooked(slot.ID))
}

func TestCancelConfirmed_KeepsSlotHeldByAnotherBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slot := f.slot("2025-06-10", "09:00", "12:00")
	early := f.confirmed(f.customerActor, at(10, 9, 0))
	late := f.confirmed(f.otherCustomer, at(10, 11, 0))
	require.True(t, f.isBooked(slot.ID))

	_, err := f.svc.CancelBooking(ctx, f.customerActor, early.ID, "")
	require.NoError(t, err)
	assert.True(t, f.isBooked(slot.ID))
	requireKind(t, f.svc.DeleteSlot(ctx, f.providerActor, slot.ID), utils.KindConflict)

	_, err = f.svc.CancelBooking(ctx, f.otherCustomer, late.ID, "")
	require.NoError(t, err)
	assert.False(t, f.isBooked(slot.ID))
	require.NoError(t, f.svc.DeleteSlot(ctx, f.providerActor, slot.ID))
}
