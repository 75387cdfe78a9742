package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type AppConfig struct {
	Port     string
	LogLevel string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	// StoreDriver selects the persisted store: "sqlite" or "memory".
	StoreDriver string
	StoreDSN    string

	// BreakerTimeout is how long the store circuit breaker stays open.
	BreakerTimeout time.Duration

	// StoreProbeInterval controls how often the store status is refreshed.
	StoreProbeInterval time.Duration

	// BucketLocation is the reference time zone for daily and monthly rollups.
	BucketLocation *time.Location

	// MQTT ingestion is disabled when BrokerURL is empty.
	MQTT MQTTConfig
}

type MQTTConfig struct {
	BrokerURL     string
	ClientID      string
	SensorTopic   string
	RealtimeTopic string
	QoS           byte
}

// Enabled reports whether an MQTT broker is configured.
func (m MQTTConfig) Enabled() bool {
	return m.BrokerURL != ""
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))

	var err error
	if cfg.HTTPReadTimeout, err = getenvDuration("HTTP_READ_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getenvDuration("HTTP_WRITE_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.StoreDriver = strings.ToLower(getenvDefault("STORE_DRIVER", DriverSQLite))
	switch cfg.StoreDriver {
	case DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want %s or %s", cfg.StoreDriver, DriverSQLite, DriverMemory)
	}
	cfg.StoreDSN = getenvDefault("STORE_DSN", "data/airquality.sqlite")

	if cfg.BreakerTimeout, err = getenvDuration("STORE_BREAKER_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.StoreProbeInterval, err = getenvDuration("STORE_PROBE_INTERVAL", "1m"); err != nil {
		return nil, err
	}

	tz := getenvDefault("BUCKET_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid BUCKET_TIMEZONE: %w", err)
	}
	cfg.BucketLocation = loc

	cfg.MQTT = MQTTConfig{
		BrokerURL:     os.Getenv("MQTT_BROKER_URL"),
		ClientID:      getenvDefault("MQTT_CLIENT_ID", "air-quality-monitor"),
		SensorTopic:   getenvDefault("MQTT_SENSOR_TOPIC", "airquality/sensor"),
		RealtimeTopic: getenvDefault("MQTT_REALTIME_TOPIC", "airquality/realtime"),
		QoS:           1,
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
