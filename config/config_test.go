package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `source:
  base_url: "http://localhost:8081"
  timeout_seconds: 3
analysis:
  radius_km: 0.8
  sample_stations: 5
metrics:
  sinks:
    - type: "prometheus"
    - type: "influx"
      conf:
        url: "http://localhost:8086"
        bucket: "velomagg"
mqtt:
  broker: "tcp://localhost:1883"
  trigger_topic: "velomagg/run"
schedule:
  cron: "*/10 * * * *"
  run_on_start: false
export:
  dir: "out"
  csv: true
logging:
  level: "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8081", cfg.Source.BaseURL)
	assert.Equal(t, 3, cfg.Source.TimeoutSeconds)
	assert.Equal(t, "availableBikeNumber", cfg.Source.Attribute)
	assert.Equal(t, 0.8, cfg.Analysis.RadiusKm)
	assert.Equal(t, 5, cfg.Analysis.SampleStations)
	assert.Equal(t, 30, cfg.Analysis.PeakWindowDays)

	require.Len(t, cfg.Metrics.Sinks, 2)
	assert.True(t, cfg.Metrics.PrometheusEnabled())
	assert.Equal(t, "influx", cfg.Metrics.Sinks[1].Type)
	assert.Equal(t, "velomagg", cfg.Metrics.Sinks[1].Conf["bucket"])
	assert.Equal(t, ":9100", cfg.Metrics.PrometheusPort)

	assert.True(t, cfg.MQTT.Enabled())
	assert.Equal(t, "velomagg/run", cfg.MQTT.TriggerTopic)
	assert.Equal(t, "velomagg/alerts", cfg.MQTT.AlertTopic)

	assert.Equal(t, "*/10 * * * *", cfg.Schedule.Cron)
	require.NotNil(t, cfg.Schedule.RunOnStart)
	assert.False(t, *cfg.Schedule.RunOnStart)

	assert.True(t, cfg.Export.Enabled())
	assert.Equal(t, "out", cfg.Export.Dir)
	assert.Equal(t, "velomagg_analysis", cfg.Export.BaseName)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"analysis": {"dense_threshold": 8}, "api": {"address": ":9999"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Analysis.DenseThreshold)
	assert.Equal(t, ":9999", cfg.API.Address)
}

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSourceURL, cfg.Source.BaseURL)
	assert.Equal(t, 0.5, cfg.Analysis.RadiusKm)
	assert.Equal(t, "@every 15m", cfg.Schedule.Cron)
	assert.True(t, *cfg.Schedule.RunOnStart)
	assert.False(t, cfg.MQTT.Enabled())
	assert.False(t, cfg.Metrics.PrometheusEnabled())
	assert.False(t, cfg.Export.Enabled())
	assert.Equal(t, ":8080", cfg.API.Address)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", "analysis:\n  radius_km: 0.8\n")
	t.Setenv("K_ANALYSIS__RADIUS_KM", "1.5")
	t.Setenv("K_LOGGING__LEVEL", "warn")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1.5, cfg.Analysis.RadiusKm)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadEnvOverrideWithoutFile(t *testing.T) {
	t.Setenv("K_ANALYSIS__RADIUS_KM", "1.5")
	t.Setenv("K_SOURCE__BASE_URL", "http://127.0.0.1:9999/api")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1.5, cfg.Analysis.RadiusKm)
	assert.Equal(t, "http://127.0.0.1:9999/api", cfg.Source.BaseURL)
	assert.Equal(t, 30, cfg.Analysis.PeakWindowDays)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    string
		wantErr string
	}{
		{"extension", "config.toml", "", "unsupported config format"},
		{"cron", "config.yaml", "schedule:\n  cron: \"every minute\"\n", "schedule: invalid cron"},
		{"radius", "config.yaml", "analysis:\n  radius_km: -1\n", "analysis: radius_km must be positive"},
		{"url", "config.yaml", "source:\n  base_url: \"ftp://example.org\"\n", "source: base_url must be http or https"},
		{"level", "config.yaml", "logging:\n  level: \"trace\"\n", "logging: unknown level trace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
