package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "STORE_DRIVER", "STORE_DSN", "BUCKET_TIMEZONE",
		"STORE_PROBE_INTERVAL", "STORE_BREAKER_TIMEOUT", "MQTT_BROKER_URL",
		"HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, DriverSQLite, cfg.StoreDriver)
	require.Equal(t, "data/airquality.sqlite", cfg.StoreDSN)
	require.Equal(t, time.UTC, cfg.BucketLocation)
	require.Equal(t, time.Minute, cfg.StoreProbeInterval)
	require.Equal(t, 30*time.Second, cfg.BreakerTimeout)
	require.Equal(t, 10*time.Second, cfg.HTTPReadTimeout)
	require.False(t, cfg.MQTT.Enabled())
	require.Equal(t, "airquality/sensor", cfg.MQTT.SensorTopic)
	require.Equal(t, "airquality/realtime", cfg.MQTT.RealtimeTopic)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("BUCKET_TIMEZONE", "Asia/Jakarta")
	t.Setenv("MQTT_BROKER_URL", "tcp://broker:1883")
	t.Setenv("STORE_PROBE_INTERVAL", "15s")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, DriverMemory, cfg.StoreDriver)
	require.Equal(t, "Asia/Jakarta", cfg.BucketLocation.String())
	require.True(t, cfg.MQTT.Enabled())
	require.Equal(t, 15*time.Second, cfg.StoreProbeInterval)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("STORE_DRIVER", "")
	t.Setenv("BUCKET_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("BUCKET_TIMEZONE", "")
	t.Setenv("STORE_PROBE_INTERVAL", "soon")
	_, err = Load()
	require.Error(t, err)
}
