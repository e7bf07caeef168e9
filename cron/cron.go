package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// runTimeout bounds a single reminder sweep.
const runTimeout = 5 * time.Minute

// Reminder sends reminders for bookings that are about to start.
type Reminder interface {
	SendReminders(ctx context.Context) (int, error)
}

// StartReminderJob schedules the reminder sweep and starts the scheduler.
// The caller stops it with Stop on shutdown.
func StartReminderJob(schedule string, reminder Reminder, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { runReminders(reminder, log) }); err != nil {
		return nil, err
	}
	c.Start()
	log.Info("reminder scheduler started", zap.String("schedule", schedule))
	return c, nil
}

func runReminders(reminder Reminder, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("reminder sweep panicked", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	sent, err := reminder.SendReminders(ctx)
	if err != nil {
		log.Error("reminder sweep failed", zap.Error(err))
		return
	}
	log.Info("reminder sweep finished", zap.Int("sent", sent))
}
