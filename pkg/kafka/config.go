package kafka

import (
	"errors"
	"time"
)

// ProducerConfig holds producer configuration.
type ProducerConfig struct {
	Brokers []string

	RequiredAcks int // -1 all replicas, 0 none, 1 leader
	Compression  string
	MaxAttempts  int

	WriteTimeout time.Duration
	ReadTimeout  time.Duration

	BatchSize    int
	BatchBytes   int
	BatchTimeout time.Duration
	Async        bool

	HashByKey        bool
	AutoCreateTopics bool
}

type ProducerOption func(*ProducerConfig)

func defaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		RequiredAcks: 1,
		Compression:  "snappy",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		BatchSize:    100,
		BatchBytes:   1 << 20,
		BatchTimeout: 10 * time.Millisecond,
		HashByKey:    true,
	}
}

func (c ProducerConfig) validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka: brokers are required")
	}
	if c.RequiredAcks < -1 || c.RequiredAcks > 1 {
		return errors.New("kafka: required acks must be -1, 0 or 1")
	}
	return nil
}

func WithBrokers(brokers []string) ProducerOption {
	return func(c *ProducerConfig) {
		c.Brokers = brokers
	}
}

// WithDelivery sets acks, compression codec and writer retry attempts.
// An empty codec or non-positive attempts keep the defaults.
func WithDelivery(acks int, compression string, attempts int) ProducerOption {
	return func(c *ProducerConfig) {
		c.RequiredAcks = acks
		if compression != "" {
			c.Compression = compression
		}
		if attempts > 0 {
			c.MaxAttempts = attempts
		}
	}
}

// WithBatching sets the writer's batch limits and linger time. async makes
// writes fire-and-forget.
func WithBatching(size, bytes int, linger time.Duration, async bool) ProducerOption {
	return func(c *ProducerConfig) {
		if size > 0 {
			c.BatchSize = size
		}
		if bytes > 0 {
			c.BatchBytes = bytes
		}
		if linger > 0 {
			c.BatchTimeout = linger
		}
		c.Async = async
	}
}

func WithTimeouts(write, read time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		if write > 0 {
			c.WriteTimeout = write
		}
		if read > 0 {
			c.ReadTimeout = read
		}
	}
}

// WithHashByKey routes equal keys to the same partition. Otherwise the
// writer balances by least bytes.
func WithHashByKey(hash bool) ProducerOption {
	return func(c *ProducerConfig) {
		c.HashByKey = hash
	}
}

// WithAutoCreateTopics lets the writer create missing topics (local brokers).
func WithAutoCreateTopics(enabled bool) ProducerOption {
	return func(c *ProducerConfig) {
		c.AutoCreateTopics = enabled
	}
}
