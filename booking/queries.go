package booking

import (
	"context"

	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/utils"
	"gorm.io/gorm"
)

const (
	HistoryLimit        = 10
	recentBookingsLimit = 5
)

// GetBooking returns the booking only to its customer or owning provider.
func (s *Service) GetBooking(ctx context.Context, actor Actor, bookingID uint) (*models.Booking, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID == actor.UserID && !actor.IsProvider() {
		return booking, nil
	}
	if actor.IsProvider() && booking.Provider != nil && booking.Provider.UserID == actor.UserID {
		return booking, nil
	}
	return nil, utils.NewNotFoundError("booking")
}

// scope restricts a booking query to the actor's side of the relationship.
func (s *Service) scope(ctx context.Context, actor Actor) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Booking{})
	if actor.IsProvider() {
		return q.Where("provider_id IN (?)",
			s.db.Model(&models.ProviderProfile{}).Select("id").Where("user_id = ?", actor.UserID))
	}
	return q.Where("customer_id = ?", actor.UserID)
}

func withRelations(q *gorm.DB) *gorm.DB {
	return q.Preload("Customer").Preload("Provider.User").Preload("Service")
}

// ListBookings returns the actor's bookings, newest first, optionally by status.
func (s *Service) ListBookings(ctx context.Context, actor Actor, status string) ([]models.Booking, error) {
	q := s.scope(ctx, actor)
	if status != "" {
		st := models.BookingStatus(status)
		switch st {
		case models.StatusPending, models.StatusConfirmed, models.StatusCompleted, models.StatusCancelled:
			q = q.Where("status = ?", st)
		default:
			return nil, utils.NewValidationError("status", "Select a valid choice. "+status+" is not one of the available choices.")
		}
	}

	var bookings []models.Booking
	if err := withRelations(q).Order("created_at DESC").Order("id DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// History groups the actor's bookings for the history view.
type History struct {
	Upcoming  []models.Booking `json:"upcoming"`
	Completed []models.Booking `json:"completed"`
	Cancelled []models.Booking `json:"cancelled"`
}

// History returns confirmed bookings soonest first, completed ones most recent
// first and cancelled ones most recently updated first, at most ten each.
func (s *Service) History(ctx context.Context, actor Actor) (*History, error) {
	h := &History{
		Upcoming:  []models.Booking{},
		Completed: []models.Booking{},
		Cancelled: []models.Booking{},
	}

	groups := []struct {
		status models.BookingStatus
		order  string
		dest   *[]models.Booking
	}{
		{models.StatusConfirmed, "requested_datetime ASC", &h.Upcoming},
		{models.StatusCompleted, "requested_datetime DESC", &h.Completed},
		{models.StatusCancelled, "updated_at DESC", &h.Cancelled},
	}
	for _, g := range groups {
		err := withRelations(s.scope(ctx, actor)).
			Where("status = ?", g.status).
			Order(g.order).
			Order("id DESC").
			Limit(HistoryLimit).
			Find(g.dest).Error
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}

type DashboardStats struct {
	TotalBookings     int64   `json:"total_bookings"`
	PendingBookings   int64   `json:"pending_bookings"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	CompletedBookings int64   `json:"completed_bookings"`
	CancelledBookings int64   `json:"cancelled_bookings"`
	AverageRating     float64 `json:"average_rating"`
	TotalReviews      int64   `json:"total_reviews"`
}

type Dashboard struct {
	Provider       *models.ProviderProfile `json:"provider"`
	Stats          DashboardStats          `json:"stats"`
	RecentBookings []models.Booking        `json:"recent_bookings"`
}

// Dashboard summarises a provider's bookings and reviews.
func (s *Service) Dashboard(ctx context.Context, actor Actor) (*Dashboard, error) {
	profile, err := s.ProviderProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var counts []struct {
		Status models.BookingStatus
		Total  int64
	}
	err = db.Model(&models.Booking{}).
		Select("status, COUNT(*) AS total").
		Where("provider_id = ?", profile.ID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Provider: profile, RecentBookings: []models.Booking{}}
	for _, c := range counts {
		d.Stats.TotalBookings += c.Total
		switch c.Status {
		case models.StatusPending:
			d.Stats.PendingBookings = c.Total
		case models.StatusConfirmed:
			d.Stats.ConfirmedBookings = c.Total
		case models.StatusCompleted:
			d.Stats.CompletedBookings = c.Total
		case models.StatusCancelled:
			d.Stats.CancelledBookings = c.Total
		}
	}

	if d.Stats.AverageRating, d.Stats.TotalReviews, err = s.RatingSummary(ctx, profile.ID); err != nil {
		return nil, err
	}

	err = withRelations(db.Model(&models.Booking{})).
		Where("provider_id = ?", profile.ID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(recentBookingsLimit).
		Find(&d.RecentBookings).Error
	if err != nil {
		return nil, err
	}
	return d, nil
}
