package booking

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/meropanditlama/booking-api/db"
	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/notifications"
	"github.com/meropanditlama/booking-api/utils"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sentNotification struct {
	BookingID   uint
	Event       notifications.EventType
	RecipientID uint
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingDispatcher) Notify(_ context.Context, b *models.Booking, event notifications.EventType, recipientID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{BookingID: b.ID, Event: event, RecipientID: recipientID})
}

func (r *recordingDispatcher) all() []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentNotification(nil), r.sent...)
}

func (r *recordingDispatcher) last() sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return sentNotification{}
	}
	return r.sent[len(r.sent)-1]
}

func (r *recordingDispatcher) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

var baseNow = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	t        *testing.T
	db       *gorm.DB
	svc      *Service
	notifier *recordingDispatcher
	now      time.Time

	service      models.Service
	provider     models.ProviderProfile
	providerUser models.User
	customerA    models.User
	customerB    models.User

	providerActor Actor
	customerActor Actor
	otherCustomer Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.InitSQLite(filepath.Join(t.TempDir(), "booking.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	f := &fixture{t: t, db: conn, notifier: &recordingDispatcher{}, now: baseNow}
	f.svc = NewService(conn, f.notifier,
		WithClock(func() time.Time { return f.now }),
		WithLocation(time.UTC),
		WithLogger(zap.NewNop()))

	f.service = models.Service{Name: "Ghar Puja", DefaultPrice: 3000}
	require.NoError(t, conn.Create(&f.service).Error)

	f.providerUser = f.createUser("pandit@example.com", "Ram", "Adhikari", models.RoleProvider)
	f.provider = f.createProfile(f.providerUser, true)
	f.customerA = f.createUser("sita@example.com", "Sita", "Sharma", models.RoleCustomer)
	f.customerB = f.createUser("hari@example.com", "Hari", "Thapa", models.RoleCustomer)

	f.providerActor = actorFor(f.providerUser)
	f.customerActor = actorFor(f.customerA)
	f.otherCustomer = actorFor(f.customerB)
	return f
}

func actorFor(u models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role, Name: u.FullName()}
}

func (f *fixture) createUser(email, first, last string, role models.Role) models.User {
	f.t.Helper()
	u := models.User{Email: email, Password: "hash", FirstName: first, LastName: last, Role: role}
	require.NoError(f.t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) createProfile(u models.User, verified bool) models.ProviderProfile {
	f.t.Helper()
	p := models.ProviderProfile{UserID: u.ID, ReligionType: models.ReligionHindu, Location: "Kathmandu"}
	require.NoError(f.t, f.db.Create(&p).Error)
	if verified {
		require.NoError(f.t, f.db.Model(&p).Update("verified", true).Error)
		p.Verified = true
	}
	return p
}

// secondProvider returns another verified provider and its actor.
func (f *fixture) secondProvider() (models.ProviderProfile, Actor) {
	f.t.Helper()
	u := f.createUser("lama@example.com", "Tenzing", "Lama", models.RoleProvider)
	return f.createProfile(u, true), actorFor(u)
}

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 6, day, hour, minute, 0, 0, time.UTC)
}

func (f *fixture) request(start time.Time, minutes int) CreateRequest {
	return CreateRequest{
		ProviderID:        f.provider.ID,
		ServiceID:         f.service.ID,
		RequestedDatetime: start,
		DurationMinutes:   minutes,
	}
}

func (f *fixture) book(actor Actor, start time.Time) *models.Booking {
	f.t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), actor, f.request(start, 60))
	require.NoError(f.t, err)
	return b
}

func (f *fixture) confirmed(actor Actor, start time.Time) *models.Booking {
	f.t.Helper()
	b := f.book(actor, start)
	b, err := f.svc.ConfirmBooking(context.Background(), f.providerActor, b.ID)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) slot(date, start, end string) models.AvailabilitySlot {
	f.t.Helper()
	s, err := f.svc.CreateSlot(context.Background(), f.providerActor, SlotInput{Date: date, StartTime: start, EndTime: end})
	require.NoError(f.t, err)
	return *s
}

func (f *fixture) isBooked(slotID uint) bool {
	f.t.Helper()
	var s models.AvailabilitySlot
	require.NoError(f.t, f.db.First(&s, slotID).Error)
	return s.Booked
}

func (f *fixture) status(bookingID uint) models.BookingStatus {
	f.t.Helper()
	var b models.Booking
	require.NoError(f.t, f.db.First(&b, bookingID).Error)
	return b.Status
}

func requireKind(t *testing.T, err error, kind utils.ErrorKind) *utils.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := utils.AsAppError(err)
	require.Truef(t, ok, "expected AppError, got %v", err)
	require.Equal(t, kind, appErr.Kind, appErr.Error())
	return appErr
}
