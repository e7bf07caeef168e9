package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/meropanditlama/booking-api/booking"
	"github.com/meropanditlama/booking-api/config"
	"github.com/meropanditlama/booking-api/controllers"
	"github.com/meropanditlama/booking-api/cron"
	"github.com/meropanditlama/booking-api/db"
	"github.com/meropanditlama/booking-api/middleware"
	"github.com/meropanditlama/booking-api/notifications"
	cache "github.com/meropanditlama/booking-api/redis"
	"github.com/meropanditlama/booking-api/routes"
	"github.com/meropanditlama/booking-api/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := utils.InitializeLogger(utils.LoggerOptions{
		Production: cfg.IsProduction(),
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck
	if !cfg.DotEnvLoaded {
		log.Info("no .env file found, using environment variables only")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	database, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.Migrate(database); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}
	seeded, err := db.SeedServices(database)
	if err != nil {
		log.Fatal("failed to seed services", zap.Error(err))
	}
	log.Info("database ready", zap.Int("services_seeded", seeded))

	ctx := context.Background()
	redisClient, err := cache.NewClient(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	var idempotencyStore middleware.IdempotencyStore
	if redisClient != nil {
		defer redisClient.Close()
		idempotencyStore = cache.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL)
	} else {
		log.Info("REDIS_ADDR not set, Idempotency-Key replay disabled")
	}

	loc := utils.LoadLocation(cfg.Timezone)

	var notifier notifications.Dispatcher = notifications.Nop{}
	var emailDispatcher *notifications.EmailDispatcher
	if cfg.MailEnabled() {
		mailer := utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass, cfg.Sender())
		emailDispatcher = notifications.NewEmailDispatcher(database, mailer, cfg.FrontendURL, loc, log)
		notifier = emailDispatcher
	} else {
		log.Info("SMTP not configured, booking emails disabled")
	}

	bookings := booking.NewService(database, notifier,
		booking.WithLocation(loc),
		booking.WithLogger(log))

	if cfg.RemindersEnabled {
		scheduler, err := cron.StartReminderJob(cfg.ReminderSchedule, bookings, log)
		if err != nil {
			log.Fatal("failed to schedule reminders", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName: "Mero Pandit Lama",
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Request-ID",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	handler := controllers.New(database, bookings, cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour, log)
	routes.Setup(app, handler, routes.Deps{
		Protected:   middleware.Protected(cfg.JWTSecret),
		AuthLimiter: middleware.NewRateLimiter(cfg.AuthRatePerMin).Handler(),
		Idempotency: middleware.Idempotency(idempotencyStore),
	})

	go func() {
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.AppPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if emailDispatcher != nil {
		emailDispatcher.Wait()
	}
}
