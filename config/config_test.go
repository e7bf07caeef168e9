package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.AppPort)
	assert.Equal(t, "Asia/Kathmandu", cfg.Timezone)
	assert.Equal(t, 24, cfg.JWTExpiryHours)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.False(t, cfg.RemindersEnabled)
	assert.Equal(t, "*/15 * * * *", cfg.ReminderSchedule)
	assert.False(t, cfg.DotEnvLoaded)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_FILE=dotenv.log\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("LOG_FILE", "")
	require.NoError(t, os.Unsetenv("LOG_FILE"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.DotEnvLoaded)
	assert.Equal(t, "dotenv.log", cfg.LogFile)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("IDEMPOTENCY_TTL", "30m")
	t.Setenv("REMINDERS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, 2, cfg.JWTExpiryHours)
	assert.Equal(t, 30*time.Minute, cfg.IdempotencyTTL)
	assert.True(t, cfg.RemindersEnabled)
}

func TestValidate(t *testing.T) {
	cfg := &Config{JWTExpiryHours: 24}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg.DatabaseURL = "postgres://localhost/booking"
	cfg.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: " https://a.example, ,https://b.example "}
	assert.Equal(t, "https://a.example,https://b.example", cfg.AllowedOrigins())

	cfg.CORSOrigins = ""
	assert.Equal(t, "*", cfg.AllowedOrigins())
}

func TestSender(t *testing.T) {
	cfg := &Config{EmailUser: "bookings@example.com"}
	assert.Equal(t, "bookings@example.com", cfg.Sender())
	cfg.EmailFrom = "MeroPanditLama <noreply@example.com>"
	assert.Equal(t, "MeroPanditLama <noreply@example.com>", cfg.Sender())
}
