package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducerOptions(t *testing.T) {
	cfg := defaultProducerConfig()
	for _, opt := range []ProducerOption{
		WithBrokers([]string{"k1:9092", "k2:9092"}),
		WithDelivery(-1, "", 0),
		WithBatching(0, 0, 50*time.Millisecond, true),
		WithTimeouts(0, time.Second),
	} {
		opt(&cfg)
	}
	require.NoError(t, cfg.validate())
	assert.Equal(t, -1, cfg.RequiredAcks)
	assert.Equal(t, "snappy", cfg.Compression)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 50*time.Millisecond, cfg.BatchTimeout)
	assert.True(t, cfg.Async)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Equal(t, time.Second, cfg.ReadTimeout)
}

func TestProducerConfigValidate(t *testing.T) {
	cfg := defaultProducerConfig()
	assert.Error(t, cfg.validate())

	cfg.Brokers = []string{"k:9092"}
	cfg.RequiredAcks = 2
	assert.Error(t, cfg.validate())

	_, err := NewProducer()
	assert.Error(t, err)
}
