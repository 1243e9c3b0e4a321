package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 5000, c.Server.Port)
	assert.Equal(t, 40, c.Alert.High)
	assert.Equal(t, 30, c.Alert.Medium)
	assert.Equal(t, "synthetic", c.History.Source)
	assert.Equal(t, 240, c.History.Hours)
	assert.Equal(t, time.Hour, c.Forecast.Interval)
	assert.Equal(t, 3*time.Second, c.Model.Timeout)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "patient.observations", c.Kafka.ObservationsTopic)
	assert.False(t, c.Kafka.Enabled)
	assert.True(t, c.Stream.Enabled)
	assert.Equal(t, 30*time.Second, c.Stream.PingInterval)
}

func TestParse_OverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
alert:
  high: 50
  medium: 35
forecast:
  interval: 15m
kafka:
  brokers: ["k1:9092", "k2:9092"]
`))
	require.NoError(t, err)
	assert.Equal(t, 50, c.Alert.High)
	assert.Equal(t, 35, c.Alert.Medium)
	assert.Equal(t, 15*time.Minute, c.Forecast.Interval)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	// untouched sections keep their defaults
	assert.Equal(t, 5000, c.Server.Port)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"medium above high": "alert: {high: 20, medium: 30}",
		"bad source":        "history: {source: csv}",
		"short history":     "history: {hours: 10}",
		"clickhouse off":    "history: {source: clickhouse}",
		"bad cache":         "cache: {backend: memcached}",
		"bad port":          "server: {port: 70000}",
		"not yaml":          "alert: [",
		"parallel consumer": "kafka: {enabled: true, consumer: {workers: 4}}",
		"no consumer":       "kafka: {consumer: {workers: 0}}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_SampleFile(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "models/patient_forecast.yaml", c.Model.Path)
	assert.Equal(t, "memory", c.Cache.Backend)
}

func TestLoadWithEnv_EmptyPathUsesDefaults(t *testing.T) {
	c, err := LoadWithEnv("")
	require.NoError(t, err)
	assert.Equal(t, "development", c.Environment)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PATIENTPULSE_PORT":          "8080",
		"PATIENTPULSE_ALERT_HIGH":    "45",
		"PATIENTPULSE_KAFKA_BROKERS": "a:1,b:2",
		"PATIENTPULSE_KAFKA_ENABLED": "true",
		"PATIENTPULSE_MODEL_URL":     "http://model:8500",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c := Default()
	require.NoError(t, c.applyEnv(lookup))
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 45, c.Alert.High)
	assert.Equal(t, []string{"a:1", "b:2"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, "http://model:8500", c.Model.URL)

	env["PATIENTPULSE_PORT"] = "eighty"
	assert.Error(t, Default().applyEnv(lookup))
}

func TestLoadWithEnv_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: staging\n"), 0o600))
	t.Setenv("PATIENTPULSE_LOG_LEVEL", "debug")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, "debug", c.Logging.Level)
}
