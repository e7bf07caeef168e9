// Package booking implements the booking workflow: availability slots,
// conflict detection and the booking status state machine.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/notifications"
	"github.com/meropanditlama/booking-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Actor is the authenticated caller as reported by the identity layer.
type Actor struct {
	UserID uint
	Role   models.Role
	Name   string
}

func (a Actor) IsProvider() bool { return a.Role == models.RoleProvider }
func (a Actor) IsCustomer() bool { return a.Role == models.RoleCustomer }

// Service runs booking operations against a single relational store.
type Service struct {
	db       *gorm.DB
	notifier notifications.Dispatcher
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

type Option func(*Service)

// WithClock overrides the time source used for lead-time and cancellation checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone slot dates and times are expressed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(db *gorm.DB, notifier notifications.Dispatcher, opts ...Option) *Service {
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	s := &Service{
		db:       db,
		notifier: notifier,
		loc:      time.UTC,
		now:      time.Now,
		log:      zap.L(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("booking")
	return s
}

// Location is the zone slot dates and times are expressed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// lockProvider takes the per-provider row lock that serializes booking mutations.
func lockProvider(tx *gorm.DB, providerID uint) (*models.ProviderProfile, error) {
	var profile models.ProviderProfile
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&profile, providerID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// providerFor resolves the actor's own provider profile.
func providerFor(tx *gorm.DB, actor Actor) (*models.ProviderProfile, error) {
	if !actor.IsProvider() {
		return nil, utils.NewAuthorizationError("Only providers can perform this action")
	}
	var profile models.ProviderProfile
	if err := tx.Where("user_id = ?", actor.UserID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("provider profile")
		}
		return nil, err
	}
	return &profile, nil
}

// ProviderProfile returns the actor's provider profile with its services.
func (s *Service) ProviderProfile(ctx context.Context, actor Actor) (*models.ProviderProfile, error) {
	profile, err := providerFor(s.db.WithContext(ctx), actor)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Preload("User").Preload("Services").First(profile, profile.ID).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) notify(ctx context.Context, booking *models.Booking, event notifications.EventType, recipientID uint) {
	s.log.Debug("dispatching notification",
		zap.Uint("booking_id", booking.ID),
		zap.String("event", string(event)),
		zap.Uint("recipient_id", recipientID))
	s.notifier.Notify(ctx, booking, event, recipientID)
}

func (s *Service) load(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Provider.User").
		Preload("Service").
		First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("booking")
		}
		return nil, err
	}
	return &booking, nil
}
