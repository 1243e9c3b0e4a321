package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"PatientPulse/internal/domain/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObservation_TimestampForms(t *testing.T) {
	want := time.Date(2024, 7, 1, 14, 0, 0, 0, time.UTC)
	for _, msg := range []string{
		`{"ts":"2024-07-01T14:00:00Z","patients":7}`,
		`{"ts":1719842400,"patients":7}`,
		`{"ts":1719842400000,"patients":7}`,
	} {
		obs, err := decodeObservation([]byte(msg))
		require.NoError(t, err, msg)
		assert.True(t, want.Equal(obs.Timestamp), msg)
		assert.Equal(t, 7, obs.Patients)
	}

	for _, bad := range []string{`{`, `{"ts":"yesterday","patients":1}`, `{"patients":1}`, `{"ts":1719842400}`} {
		_, err := decodeObservation([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestKafkaHandler_AppendsInOrder(t *testing.T) {
	store := seededStore(t, 24)
	met := &recMetrics{}
	svc := newService(t, store, nil)
	h := NewKafkaObservationsHandler("patient.observations", svc, met, nil)
	assert.Equal(t, "patient.observations", h.Topic())

	require.NoError(t, h.Handle(context.Background(), []byte(`{"ts":"2024-07-01T14:00:00Z","patients":12}`)))
	assert.Equal(t, 25, store.Len())
	last, _ := store.Last()
	assert.Equal(t, 12, last.Patients)
}

func TestKafkaHandler_DropsOutOfOrder(t *testing.T) {
	store := seededStore(t, 24)
	h := NewKafkaObservationsHandler("t", newService(t, store, nil), nil, nil)

	// 10:00 is already behind the 13:00 tail
	err := h.Handle(context.Background(), []byte(`{"ts":"2024-07-01T10:00:00Z","patients":12}`))
	assert.NoError(t, err)
	assert.Equal(t, 24, store.Len())
}

func TestKafkaHandler_MalformedIsPermanent(t *testing.T) {
	met := &recMetrics{}
	h := NewKafkaObservationsHandler("t", newService(t, seededStore(t, 1), nil), met, nil)

	err := h.Handle(context.Background(), []byte(`not json`))
	var perm *backoff.PermanentError
	assert.True(t, errors.As(err, &perm))
	assert.Equal(t, []string{"consumer_unmarshal"}, met.errs)

	err = h.Handle(context.Background(), []byte(`{"ts":"2024-07-01T14:00:00Z","patients":-2}`))
	assert.True(t, errors.As(err, &perm))
	assert.ErrorIs(t, err, models.ErrInvalidObservation)
}
