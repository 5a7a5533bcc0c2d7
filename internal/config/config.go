// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store backends accepted by STORE_BACKEND.
const (
	StoreSQLite = "sqlite"
	StoreBadger = "badger"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	Port          string
	FrontendURL   string
	StylistAPIURL string
	WeatherAPIURL string
	MediaDir      string

	Store    StoreConfig
	Timeouts TimeoutConfig

	// LoadingPhaseInterval is how often the ingestion progress text rotates.
	LoadingPhaseInterval time.Duration

	// DeviceLocation is nil when no coordinates are configured, which makes
	// geolocation behave like a denied permission prompt.
	DeviceLocation *Coordinates

	MetricsEnabled bool
}

// StoreConfig selects and configures the durable store backend.
type StoreConfig struct {
	Backend       string
	DBPath        string
	BadgerDir     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// TimeoutConfig bounds each outbound call.
type TimeoutConfig struct {
	Analyze time.Duration
	Chat    time.Duration
	Weather time.Duration
}

// Coordinates is a configured device position.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		FrontendURL:   getEnv("FRONTEND_URL", ""),
		StylistAPIURL: strings.TrimRight(getEnv("STYLIST_API_URL", "http://localhost:8000"), "/"),
		WeatherAPIURL: getEnv("WEATHER_API_URL", "https://api.open-meteo.com/v1/forecast"),
		MediaDir:      getEnv("MEDIA_DIR", filepath.Join(os.TempDir(), "wardrobe-media")),
		Store: StoreConfig{
			Backend:       strings.ToLower(getEnv("STORE_BACKEND", StoreSQLite)),
			DBPath:        getEnv("DB_PATH", "./data/wardrobe.db"),
			BadgerDir:     getEnv("BADGER_DIR", "./data/badger"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			RedisPrefix:   getEnv("REDIS_PREFIX", "wardrobe"),
		},
		Timeouts: TimeoutConfig{
			Analyze: getEnvDuration("ANALYZE_TIMEOUT", 5*time.Minute),
			Chat:    getEnvDuration("CHAT_TIMEOUT", 60*time.Second),
			Weather: getEnvDuration("WEATHER_TIMEOUT", 10*time.Second),
		},
		LoadingPhaseInterval: getEnvDuration("LOADING_PHASE_INTERVAL", 2500*time.Millisecond),
		MetricsEnabled:       getEnvBool("METRICS_ENABLED", true),
	}

	lat, latOK := getEnvFloat("DEVICE_LAT")
	lon, lonOK := getEnvFloat("DEVICE_LON")
	if latOK && lonOK {
		cfg.DeviceLocation = &Coordinates{Lat: lat, Lon: lon}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.StylistAPIURL == "" {
		return fmt.Errorf("STYLIST_API_URL cannot be empty")
	}
	if c.WeatherAPIURL == "" {
		return fmt.Errorf("WEATHER_API_URL cannot be empty")
	}
	if c.MediaDir == "" {
		return fmt.Errorf("MEDIA_DIR cannot be empty")
	}
	if c.LoadingPhaseInterval <= 0 {
		return fmt.Errorf("LOADING_PHASE_INTERVAL must be > 0")
	}

	switch c.Store.Backend {
	case StoreSQLite:
		if c.Store.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case StoreBadger:
		if c.Store.BadgerDir == "" {
			return fmt.Errorf("BADGER_DIR cannot be empty")
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if loc := c.DeviceLocation; loc != nil {
		if loc.Lat < -90 || loc.Lat > 90 || loc.Lon < -180 || loc.Lon > 180 {
			return fmt.Errorf("DEVICE_LAT/DEVICE_LON out of range")
		}
	}
	return nil
}

// AllowedOrigins returns the CORS origins for the local UI surface.
func (c *Config) AllowedOrigins() []string {
	if c.IsDevelopment() {
		return []string{"*"}
	}
	return []string{c.FrontendURL}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvFloat(key string) (float64, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
