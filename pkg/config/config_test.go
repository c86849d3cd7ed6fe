package config_test

import (
	"io"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/amirasaad/bankaccount/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs before any tests and applies globally for all tests in the package.
func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	log.SetOutput(io.Discard)

	exitVal := m.Run()
	os.Exit(exitVal)
}

func TestLoadDefaults(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cfg, err := config.Load("testdata/nonexistent.env")
	require.NoError(err)

	assert.Equal("development", cfg.Env)
	assert.Equal(3000, cfg.Server.Port)
	assert.Equal("USD", cfg.View.DisplayCurrency)
	assert.Equal("migrations", cfg.DB.MigrationsPath)
	assert.Equal(100, cfg.RateLimit.MaxRequests)
	assert.Equal(time.Minute, cfg.RateLimit.Window)
	assert.False(cfg.Kafka.Enabled)
	assert.False(cfg.Redis.Enabled)
	assert.Equal("bankaccount.events", cfg.Kafka.Topic)
}

func TestLoadFromEnvironment(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	t.Setenv("APP_ENV", "production")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("VIEW_DISPLAY_CURRENCY", "EUR")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := config.Load("testdata/nonexistent.env")
	require.NoError(err)

	assert.Equal("production", cfg.Env)
	assert.Equal(8080, cfg.Server.Port)
	assert.Equal("EUR", cfg.View.DisplayCurrency)
	assert.Equal(30*time.Second, cfg.RateLimit.Window)
}
