package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // PUSH_TIMEZONE must resolve on minimal images

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/cwa-weather-push/internal/common"
	"github.com/i474232898/cwa-weather-push/internal/scheduler"
	"github.com/i474232898/cwa-weather-push/internal/weather"
	"github.com/i474232898/cwa-weather-push/internal/weather/providers"
)

var validate = validator.New()

type AppConfig struct {
	// Credentials are checked where they are used, not here.
	CWAAPIKey  string
	WebhookURL string

	CWABaseURL string `validate:"required,url"`

	// Cities to fetch, in table order.
	Cities []string `validate:"min=1,dive,required"`

	// Schedule is a five-field cron expression evaluated in Location.
	Schedule string `validate:"required"`
	Location *time.Location

	PushMode weather.RenderMode `validate:"oneof=embed text"`

	FetchTimeout   time.Duration `validate:"gt=0"`
	PublishTimeout time.Duration `validate:"gt=0"`

	// In-memory run log retention.
	RunHistory int           `validate:"gte=0"` // max number of run reports (0 = unlimited)
	RunMaxAge  time.Duration `validate:"gte=0"` // max age of run reports (0 = unlimited)

	Port string `validate:"required,numeric"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.CWAAPIKey = os.Getenv("CWA_API_KEY")
	cfg.WebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")
	cfg.CWABaseURL = getenvDefault("CWA_BASE_URL", providers.DefaultCWABaseURL)

	cfg.Cities = append([]string(nil), weather.SixCities...)
	if v := os.Getenv("WEATHER_CITIES"); v != "" {
		cfg.Cities = common.SplitList(v)
	}

	cfg.Schedule = getenvDefault("PUSH_SCHEDULE", scheduler.DefaultSchedule)

	tz := getenvDefault("PUSH_TIMEZONE", "Asia/Taipei")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid PUSH_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	cfg.PushMode = weather.RenderMode(getenvDefault("PUSH_MODE", string(weather.ModeEmbed)))

	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.PublishTimeout, err = getenvDuration("PUBLISH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	// Two runs a day: a week of history by default.
	if cfg.RunHistory, err = getenvInt("RUN_HISTORY", 14); err != nil {
		return nil, err
	}
	if cfg.RunMaxAge, err = getenvDuration("RUN_MAX_AGE", 7*24*time.Hour); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
