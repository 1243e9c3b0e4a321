package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"5000"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Alert      AlertConfig      `yaml:"alert"`
	Model      ModelConfig      `yaml:"model"`
	History    HistoryConfig    `yaml:"history"`
	Forecast   ForecastConfig   `yaml:"forecast"`
	Cache      CacheConfig      `yaml:"cache"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Stream     StreamConfig     `yaml:"stream"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

type AlertConfig struct {
	High   int `yaml:"high" default:"40"`
	Medium int `yaml:"medium" default:"30"`
}

// ModelConfig selects the regression model. URL wins over the file paths;
// FallbackPath is tried when Path cannot be loaded.
type ModelConfig struct {
	Path         string        `yaml:"path" default:"models/patient_forecast.yaml"`
	FallbackPath string        `yaml:"fallback_path" default:"models/patient_forecast_legacy.yaml"`
	URL          string        `yaml:"url"`
	Timeout      time.Duration `yaml:"timeout" default:"3s"`
	Retries      int           `yaml:"retries" default:"2"`
}

type HistoryConfig struct {
	Source      string  `yaml:"source" default:"synthetic"` // synthetic or clickhouse
	Hours       int     `yaml:"hours" default:"240"`
	Base        float64 `yaml:"base" default:"25"`
	NoiseStdDev float64 `yaml:"noise_stddev" default:"4"`
	Seed        int64   `yaml:"seed"`
}

type ForecastConfig struct {
	Interval time.Duration `yaml:"interval" default:"1h"`
	CacheTTL time.Duration `yaml:"cache_ttl" default:"1h"`
}

type CacheConfig struct {
	Backend string `yaml:"backend" default:"memory"` // memory or redis
	Redis   struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

type RateLimitConfig struct {
	Enabled      bool    `yaml:"enabled" default:"true"`
	Capacity     int     `yaml:"capacity" default:"60"`
	RefillPerSec float64 `yaml:"refill_per_sec" default:"1"`
}

// StreamConfig controls the /ws/forecasts websocket feed.
type StreamConfig struct {
	Enabled      bool          `yaml:"enabled" default:"true"`
	PingInterval time.Duration `yaml:"ping_interval" default:"30s"`
	SendBuffer   int           `yaml:"send_buffer" default:"16"`
}

type KafkaConfig struct {
	Enabled           bool     `yaml:"enabled"`
	Brokers           []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
	ObservationsTopic string   `yaml:"observations_topic" default:"patient.observations"`
	ForecastsTopic    string   `yaml:"forecasts_topic" default:"patient.forecasts"`
	LogsTopic         string   `yaml:"logs_topic" default:"patientpulse.logs"`
	RequiredAcks      int      `yaml:"required_acks" default:"1"`
	Compression       string   `yaml:"compression" default:"snappy"`
	AutoCreateTopics  bool     `yaml:"auto_create_topics"`
	Producer          struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"10ms"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
	Consumer struct {
		GroupID    string        `yaml:"group_id" default:"patientpulse"`
		Workers    int           `yaml:"workers" default:"1"`
		BufferSize int           `yaml:"buffer_size" default:"64"`
		RetryMax   int           `yaml:"retry_max" default:"3"`
		BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
		BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
		DLQTopic   string        `yaml:"dlq_topic" default:"patient.observations.dlq"`
		MinBytes   int           `yaml:"min_bytes" default:"1"`
		MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
	} `yaml:"consumer"`
}

type ClickHouseConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Host             string        `yaml:"host" default:"localhost"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"default"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	Table            string        `yaml:"table" default:"patient_observations"`
	UseHTTP          bool          `yaml:"use_http"`
	AsyncInsert      bool          `yaml:"async_insert"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
}

// Default returns a config populated only from struct-tag defaults.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML (defaults only when path is empty)
// and overrides it with PATIENTPULSE_* environment variables.
func LoadWithEnv(path string) (*Config, error) {
	var (
		c   *Config
		err error
	)
	if path == "" {
		c = Default()
	} else if c, err = Load(path); err != nil {
		return nil, err
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}
	flag := func(key string, dst *bool) error {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
		return nil
	}

	str("PATIENTPULSE_ENV", &c.Environment)
	str("PATIENTPULSE_LOG_LEVEL", &c.Logging.Level)
	str("PATIENTPULSE_MODEL_PATH", &c.Model.Path)
	str("PATIENTPULSE_MODEL_URL", &c.Model.URL)
	str("PATIENTPULSE_HISTORY_SOURCE", &c.History.Source)
	str("PATIENTPULSE_CACHE_BACKEND", &c.Cache.Backend)
	str("PATIENTPULSE_REDIS_ADDR", &c.Cache.Redis.Addr)
	str("PATIENTPULSE_CLICKHOUSE_HOST", &c.ClickHouse.Host)
	if v, ok := lookup("PATIENTPULSE_KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	for key, dst := range map[string]*int{
		"PATIENTPULSE_PORT":          &c.Server.Port,
		"PATIENTPULSE_ALERT_HIGH":    &c.Alert.High,
		"PATIENTPULSE_ALERT_MEDIUM":  &c.Alert.Medium,
		"PATIENTPULSE_HISTORY_HOURS": &c.History.Hours,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	if err := flag("PATIENTPULSE_KAFKA_ENABLED", &c.Kafka.Enabled); err != nil {
		return err
	}
	return flag("PATIENTPULSE_CLICKHOUSE_ENABLED", &c.ClickHouse.Enabled)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Alert.High < 0 || c.Alert.Medium < 0 {
		return fmt.Errorf("alert thresholds must be non-negative")
	}
	if c.Alert.Medium > c.Alert.High {
		return fmt.Errorf("alert.medium (%d) must not exceed alert.high (%d)", c.Alert.Medium, c.Alert.High)
	}
	if c.History.Source != "synthetic" && c.History.Source != "clickhouse" {
		return fmt.Errorf("history.source must be 'synthetic' or 'clickhouse', got '%s'", c.History.Source)
	}
	if c.History.Source == "clickhouse" && !c.ClickHouse.Enabled {
		return fmt.Errorf("history.source 'clickhouse' requires clickhouse.enabled")
	}
	if c.History.Hours < 24 {
		return fmt.Errorf("history.hours must be at least 24, got %d", c.History.Hours)
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	// Observations are ingested strictly in timestamp order; a second worker
	// could hand a newer message to the store first and get the older one
	// rejected as out of order.
	if c.Kafka.Consumer.Workers != 1 {
		return fmt.Errorf("kafka.consumer.workers must be 1, got %d", c.Kafka.Consumer.Workers)
	}
	if c.Forecast.Interval < 0 {
		return fmt.Errorf("forecast.interval must not be negative")
	}
	return nil
}
