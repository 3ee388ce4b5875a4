package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://localhost/care")
	t.Setenv("INITIAL_ADMIN_PIN", "1234")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RABBITMQ_DSN", "amqp://localhost")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 7200, cfg.BulkSession.Expiration)
	assert.Equal(t, "bulk_session_", cfg.BulkSession.KeyPrefix)
	assert.Equal(t, "guanliyuan", cfg.InitialAdmin.NameReading)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidTimezone(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FACILITY_TIMEZONE", "Mars/Olympus")

	_, err := LoadConfig()
	assert.Error(t, err)
}
