package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/cwa-weather-push/internal/weather"
	"github.com/i474232898/cwa-weather-push/internal/weather/providers"
)

var configEnv = []string{
	"CWA_API_KEY", "DISCORD_WEBHOOK_URL", "CWA_BASE_URL", "WEATHER_CITIES",
	"PUSH_SCHEDULE", "PUSH_TIMEZONE", "PUSH_MODE", "FETCH_TIMEOUT",
	"PUBLISH_TIMEOUT", "RUN_HISTORY", "RUN_MAX_AGE", "PORT",
}

// clearEnv blanks every variable Load reads; empty means "use the default".
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.CWAAPIKey, "missing credentials are not a load error")
	assert.Empty(t, cfg.WebhookURL)
	assert.Equal(t, providers.DefaultCWABaseURL, cfg.CWABaseURL)
	assert.Equal(t, weather.SixCities, cfg.Cities)
	assert.Equal(t, "30 5,17 * * *", cfg.Schedule)
	assert.Equal(t, "Asia/Taipei", cfg.Location.String())
	assert.Equal(t, weather.ModeEmbed, cfg.PushMode)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 10*time.Second, cfg.PublishTimeout)
	assert.Equal(t, 14, cfg.RunHistory)
	assert.Equal(t, 7*24*time.Hour, cfg.RunMaxAge)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CWA_API_KEY", "CWA-123")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/1/abc")
	t.Setenv("WEATHER_CITIES", " 宜蘭縣, ,花蓮縣 ")
	t.Setenv("PUSH_TIMEZONE", "UTC")
	t.Setenv("PUSH_MODE", "text")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("RUN_HISTORY", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "CWA-123", cfg.CWAAPIKey)
	assert.Equal(t, "https://discord.com/api/webhooks/1/abc", cfg.WebhookURL)
	assert.Equal(t, []string{"宜蘭縣", "花蓮縣"}, cfg.Cities)
	assert.Equal(t, time.UTC.String(), cfg.Location.String())
	assert.Equal(t, weather.ModeText, cfg.PushMode)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Zero(t, cfg.RunHistory)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"PUSH_TIMEZONE":   "Mars/Olympus",
		"PUSH_MODE":       "carrier-pigeon",
		"FETCH_TIMEOUT":   "soon",
		"PUBLISH_TIMEOUT": "-1s",
		"RUN_HISTORY":     "many",
		"CWA_BASE_URL":    "not a url",
		"WEATHER_CITIES":  " , ",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
