package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Store.Backend != StoreSQLite {
		t.Errorf("Expected sqlite backend, got %q", cfg.Store.Backend)
	}
	if cfg.LoadingPhaseInterval != 2500*time.Millisecond {
		t.Errorf("Unexpected phase interval %v", cfg.LoadingPhaseInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STYLIST_API_URL", "http://backend:9000/")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CHAT_TIMEOUT", "15s")
	t.Setenv("DEVICE_LAT", "40.41")
	t.Setenv("DEVICE_LON", "-3.70")
	t.Setenv("METRICS_ENABLED", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.StylistAPIURL != "http://backend:9000" {
		t.Errorf("Expected trailing slash trimmed, got %q", cfg.StylistAPIURL)
	}
	if cfg.Store.Backend != StoreRedis || cfg.Store.RedisDB != 3 {
		t.Errorf("Unexpected store config %+v", cfg.Store)
	}
	if cfg.Timeouts.Chat != 15*time.Second {
		t.Errorf("Expected chat timeout 15s, got %v", cfg.Timeouts.Chat)
	}
	if cfg.DeviceLocation == nil || cfg.DeviceLocation.Lat != 40.41 || cfg.DeviceLocation.Lon != -3.70 {
		t.Errorf("Unexpected device location %+v", cfg.DeviceLocation)
	}
	if cfg.MetricsEnabled {
		t.Error("Expected metrics disabled")
	}
}

func TestLoadPartialDeviceLocationIsIgnored(t *testing.T) {
	t.Setenv("DEVICE_LAT", "12.5")
	t.Setenv("DEVICE_LON", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DeviceLocation != nil {
		t.Errorf("Expected no device location, got %+v", cfg.DeviceLocation)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:                 "8080",
			StylistAPIURL:        "http://localhost:8000",
			WeatherAPIURL:        "https://api.open-meteo.com/v1/forecast",
			MediaDir:             "/tmp/media",
			LoadingPhaseInterval: time.Second,
			Store:                StoreConfig{Backend: StoreMemory},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty port", func(c *Config) { c.Port = "" }, true},
		{"unknown backend", func(c *Config) { c.Store.Backend = "etcd" }, true},
		{"sqlite without path", func(c *Config) { c.Store = StoreConfig{Backend: StoreSQLite} }, true},
		{"zero interval", func(c *Config) { c.LoadingPhaseInterval = 0 }, true},
		{"latitude out of range", func(c *Config) { c.DeviceLocation = &Coordinates{Lat: 91} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	dev := &Config{FrontendURL: "http://localhost:5173"}
	if got := dev.AllowedOrigins(); len(got) != 1 || got[0] != "*" {
		t.Errorf("Expected wildcard in development, got %v", got)
	}

	prod := &Config{FrontendURL: "https://stylist.example.com"}
	if got := prod.AllowedOrigins(); len(got) != 1 || got[0] != "https://stylist.example.com" {
		t.Errorf("Expected frontend origin, got %v", got)
	}
}
