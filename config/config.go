package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort        string `mapstructure:"APP_PORT"`
	Env            string `mapstructure:"ENV"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	JWTExpiryHours int    `mapstructure:"JWT_EXPIRY_HOURS"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogFile        string `mapstructure:"LOG_FILE"`
	Timezone       string `mapstructure:"TIMEZONE"`
	CORSOrigins    string `mapstructure:"CORS_ORIGINS"`
	AuthRatePerMin int    `mapstructure:"AUTH_RATE_PER_MIN"`

	// SMTP configuration for booking notifications.
	SMTPHost    string `mapstructure:"SMTP_HOST"`
	SMTPPort    int    `mapstructure:"SMTP_PORT"`
	EmailUser   string `mapstructure:"EMAIL_USER"`
	EmailPass   string `mapstructure:"EMAIL_PASS"`
	EmailFrom   string `mapstructure:"EMAIL_FROM"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	// Redis backs the Idempotency-Key cache. Empty address disables it.
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	IdempotencyTTL time.Duration `mapstructure:"IDEMPOTENCY_TTL"`

	RemindersEnabled bool   `mapstructure:"REMINDERS_ENABLED"`
	ReminderSchedule string `mapstructure:"REMINDER_SCHEDULE"`

	// DotEnvLoaded reports whether a .env file was found.
	DotEnvLoaded bool `mapstructure:"-"`
}

var defaults = map[string]interface{}{
	"APP_PORT":          "8000",
	"ENV":               "development",
	"DATABASE_URL":      "",
	"JWT_SECRET":        "",
	"JWT_EXPIRY_HOURS":  24,
	"LOG_LEVEL":         "info",
	"LOG_FILE":          "",
	"TIMEZONE":          "Asia/Kathmandu",
	"CORS_ORIGINS":      "*",
	"AUTH_RATE_PER_MIN": 20,
	"SMTP_HOST":         "",
	"SMTP_PORT":         587,
	"EMAIL_USER":        "",
	"EMAIL_PASS":        "",
	"EMAIL_FROM":        "",
	"FRONTEND_URL":      "http://localhost:5173",
	"REDIS_ADDR":        "",
	"REDIS_PASSWORD":    "",
	"REDIS_DB":          0,
	"IDEMPOTENCY_TTL":   "24h",
	"REMINDERS_ENABLED": false,
	"REMINDER_SCHEDULE": "*/15 * * * *",
}

// Load reads a .env file when present, then environment variables over defaults.
func Load() (*Config, error) {
	dotEnvErr := godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.DotEnvLoaded = dotEnvErr == nil
	return &cfg, nil
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is not set"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.JWTExpiryHours <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY_HOURS must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MailEnabled reports whether SMTP settings are complete enough to send mail.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.EmailUser != ""
}

// Sender returns the From address for outgoing mail.
func (c *Config) Sender() string {
	if c.EmailFrom != "" {
		return c.EmailFrom
	}
	return c.EmailUser
}

// AllowedOrigins returns CORS_ORIGINS normalized for the fiber cors middleware.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}
