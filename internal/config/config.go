package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-report/internal/common"
	"github.com/i474232898/weather-report/internal/weather"
)

type AppConfig struct {
	Port string

	// EnvFileErr records why .env was not loaded. It is informational; the
	// environment alone is a complete configuration.
	EnvFileErr error

	// Forecast service.
	NWSBaseURL   string
	UserAgent    string
	HTTPTimeout  time.Duration
	RateLimitRPS float64
	RateBurst    int
	MaxStations  int

	DefaultUnit weather.Unit

	LogLevel  string
	LogFormat string

	// Optional city sources on top of the built-in list.
	CitiesFile    string
	GazetteerFile string

	// Cities reported on a schedule; empty disables the scheduler.
	WatchCities   []string
	WatchInterval time.Duration
	WatchDays     int
}

// Load reads configuration from the environment (and .env, if present)
// with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	cfg.EnvFileErr = godotenv.Load()
	var err error

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.NWSBaseURL = getenvDefault("NWS_BASE_URL", "https://api.weather.gov")
	cfg.UserAgent = getenvDefault("NWS_USER_AGENT", "weather-report (contact@example.com)")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getenvFloat("NWS_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	cfg.RateBurst = getenvInt("NWS_RATE_BURST", 5)
	cfg.MaxStations = getenvInt("NWS_MAX_STATIONS", 10)

	if cfg.DefaultUnit, err = weather.ParseUnit(getenvDefault("DEFAULT_UNIT", "F")); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_UNIT: %w", err)
	}

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "console")

	cfg.CitiesFile = os.Getenv("CITIES_FILE")
	cfg.GazetteerFile = os.Getenv("GAZETTEER_FILE")

	// City names contain commas, so the list is semicolon separated.
	cfg.WatchCities = common.SplitList(os.Getenv("WATCH_CITIES"), ";")
	if cfg.WatchInterval, err = getenvDuration("WATCH_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}
	cfg.WatchDays = getenvInt("WATCH_DAYS", 3)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that cannot be expressed as defaults.
func (c *AppConfig) Validate() error {
	switch {
	case c.UserAgent == "":
		return fmt.Errorf("NWS_USER_AGENT must not be empty")
	case c.HTTPTimeout <= 0:
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	case c.RateLimitRPS <= 0:
		return fmt.Errorf("NWS_RATE_LIMIT must be positive")
	case c.RateBurst <= 0:
		return fmt.Errorf("NWS_RATE_BURST must be positive")
	case c.MaxStations <= 0:
		return fmt.Errorf("NWS_MAX_STATIONS must be positive")
	case c.WatchInterval < time.Minute:
		return fmt.Errorf("WATCH_INTERVAL must be at least 1m")
	case c.WatchDays < 0 || c.WatchDays > 7:
		return fmt.Errorf("WATCH_DAYS must be between 0 and 7")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
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
