package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/meropanditlama/booking-api/models"
	"github.com/meropanditlama/booking-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sender is the outbound mail transport.
type Sender interface {
	Send(to, subject, body string) error
}

const brand = "MeroPanditLama"

var subjects = map[string]map[EventType]string{
	models.LanguageEnglish: {
		EventRequested: "New Booking Request - " + brand,
		EventConfirmed: "Booking Confirmed - " + brand,
		EventCancelled: "Booking Cancelled - " + brand,
		EventReminder:  "Booking Reminder - " + brand,
	},
	models.LanguageNepali: {
		EventRequested: "नयाँ बुकिंग अनुरोध - " + brand,
		EventConfirmed: "बुकिंग पुष्टि भयो - " + brand,
		EventCancelled: "बुकिंग रद्द भयो - " + brand,
		EventReminder:  "बुकिंग सम्झना - " + brand,
	},
}

// Subject picks the subject line for the recipient's language, defaulting to English.
func Subject(language string, event EventType) string {
	byEvent, ok := subjects[language]
	if !ok {
		byEvent = subjects[models.LanguageEnglish]
	}
	if subject, ok := byEvent[event]; ok {
		return subject
	}
	return brand + " Notification"
}

var headlines = map[string]map[EventType]string{
	models.LanguageEnglish: {
		EventRequested: "You have a new booking request.",
		EventConfirmed: "Your booking has been confirmed.",
		EventCancelled: "A booking has been cancelled.",
		EventReminder:  "This is a reminder for your upcoming booking.",
	},
	models.LanguageNepali: {
		EventRequested: "तपाईंलाई नयाँ बुकिंग अनुरोध आएको छ।",
		EventConfirmed: "तपाईंको बुकिंग पुष्टि भएको छ।",
		EventCancelled: "बुकिंग रद्द गरिएको छ।",
		EventReminder:  "तपाईंको आगामी बुकिंगको सम्झना।",
	},
}

var bodyTemplate = template.Must(template.New("booking").Parse(`
<p>{{.Greeting}} {{.RecipientName}},</p>
<p>{{.Headline}}</p>
<ul>
	<li><strong>Booking:</strong> #{{.BookingID}}</li>
	<li><strong>Service:</strong> {{.ServiceName}}</li>
	<li><strong>Customer:</strong> {{.CustomerName}}</li>
	<li><strong>Provider:</strong> {{.ProviderName}}{{if .ProviderPhone}} ({{.ProviderPhone}}){{end}}</li>
	{{if .ProviderLocation}}<li><strong>Location:</strong> {{.ProviderLocation}}</li>{{end}}
	<li><strong>When:</strong> {{.When}}</li>
	<li><strong>Duration:</strong> {{.DurationMinutes}} minutes</li>
	{{if .Notes}}<li><strong>Notes:</strong> {{.Notes}}</li>{{end}}
	{{if .CancellationReason}}<li><strong>Reason:</strong> {{.CancellationReason}}</li>{{end}}
</ul>
<p><a href="{{.BookingURL}}">{{.BookingURL}}</a></p>
<p>{{.Brand}}</p>
`))

type emailContext struct {
	Greeting           string
	RecipientName      string
	Headline           string
	BookingID          uint
	ServiceName        string
	CustomerName       string
	ProviderName       string
	ProviderPhone      string
	ProviderLocation   string
	When               string
	DurationMinutes    int
	Notes              string
	CancellationReason string
	BookingURL         string
	Brand              string
}

// EmailDispatcher renders booking emails and sends them on a background goroutine.
type EmailDispatcher struct {
	db          *gorm.DB
	sender      Sender
	frontendURL string
	loc         *time.Location
	log         *zap.Logger
	wg          sync.WaitGroup
}

func NewEmailDispatcher(db *gorm.DB, sender Sender, frontendURL string, loc *time.Location, log *zap.Logger) *EmailDispatcher {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.L()
	}
	return &EmailDispatcher{
		db:          db,
		sender:      sender,
		frontendURL: frontendURL,
		loc:         loc,
		log:         log.Named("notifications"),
	}
}

func (d *EmailDispatcher) Notify(ctx context.Context, booking *models.Booking, event EventType, recipientID uint) {
	if booking == nil {
		return
	}
	bookingID := booking.ID
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("notification panicked",
					zap.Any("panic", r),
					zap.Uint("booking_id", bookingID),
					zap.String("event", string(event)))
			}
		}()

		if err := d.deliver(ctx, bookingID, event, recipientID); err != nil {
			d.log.Error("failed to send booking notification",
				zap.Error(err),
				zap.Uint("booking_id", bookingID),
				zap.Uint("recipient_id", recipientID),
				zap.String("event", string(event)))
			return
		}
		d.log.Info("booking notification sent",
			zap.Uint("booking_id", bookingID),
			zap.Uint("recipient_id", recipientID),
			zap.String("event", string(event)))
	}()
}

// Wait blocks until every in-flight notification has finished.
func (d *EmailDispatcher) Wait() {
	d.wg.Wait()
}

func (d *EmailDispatcher) deliver(ctx context.Context, bookingID uint, event EventType, recipientID uint) error {
	var recipient models.User
	if err := d.db.WithContext(ctx).First(&recipient, recipientID).Error; err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}

	var booking models.Booking
	err := d.db.WithContext(ctx).
		Preload("Customer").
		Preload("Provider.User").
		Preload("Service").
		First(&booking, bookingID).Error
	if err != nil {
		return fmt.Errorf("load booking: %w", err)
	}

	body, err := d.render(&booking, &recipient, event)
	if err != nil {
		return err
	}
	return d.sender.Send(recipient.Email, Subject(recipient.LanguagePref, event), body)
}

func (d *EmailDispatcher) render(booking *models.Booking, recipient *models.User, event EventType) (string, error) {
	lang := recipient.LanguagePref
	if _, ok := headlines[lang]; !ok {
		lang = models.LanguageEnglish
	}
	greeting := "Dear"
	if lang == models.LanguageNepali {
		greeting = "नमस्ते"
	}

	data := emailContext{
		Greeting:           greeting,
		RecipientName:      recipient.FullName(),
		Headline:           headlines[lang][event],
		BookingID:          booking.ID,
		ServiceName:        "Service",
		When:               utils.HumanDateTime(booking.RequestedDatetime, d.loc),
		DurationMinutes:    booking.DurationMinutes,
		Notes:              booking.Notes,
		CancellationReason: booking.CancellationReason,
		BookingURL:         fmt.Sprintf("%s/bookings/%d", d.frontendURL, booking.ID),
		Brand:              brand,
	}
	if booking.Service != nil {
		data.ServiceName = booking.Service.Name
	}
	if booking.Customer != nil {
		data.CustomerName = booking.Customer.FullName()
	}
	if booking.Provider != nil {
		data.ProviderLocation = booking.Provider.Location
		if booking.Provider.User != nil {
			data.ProviderName = booking.Provider.User.FullName()
			data.ProviderPhone = booking.Provider.User.Phone
		}
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", event, err)
	}
	return buf.String(), nil
}
