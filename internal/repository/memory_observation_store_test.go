package repository

import (
	"errors"
	"sync"
	"testing"
	"time"

	"PatientPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func hourly(n int) []models.Observation {
	out := make([]models.Observation, n)
	for i := range out {
		out[i] = models.Observation{Timestamp: t0.Add(time.Duration(i) * time.Hour), Patients: 10 + i}
	}
	return out
}

func TestMemoryStore_AppendAndTail(t *testing.T) {
	s := NewMemoryObservationStore()
	require.NoError(t, s.Seed(hourly(30)))
	assert.Equal(t, 30, s.Len())

	tail, err := s.Tail(24)
	require.NoError(t, err)
	require.Len(t, tail, 24)
	assert.Equal(t, 16, tail[0].Patients)
	assert.Equal(t, 39, tail[23].Patients)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, t0.Add(29*time.Hour), last.Timestamp)
}

func TestMemoryStore_RejectsOutOfOrder(t *testing.T) {
	s := NewMemoryObservationStore()
	require.NoError(t, s.Seed(hourly(3)))

	for _, ts := range []time.Time{t0.Add(2 * time.Hour), t0} {
		err := s.Append(models.Observation{Timestamp: ts, Patients: 1})
		var ooo *models.OutOfOrderError
		require.True(t, errors.As(err, &ooo), "ts %s", ts)
		assert.Equal(t, t0.Add(2*time.Hour), ooo.Tail)
	}
	assert.Equal(t, 3, s.Len())
}

func TestMemoryStore_RejectsInvalid(t *testing.T) {
	s := NewMemoryObservationStore()
	assert.ErrorIs(t, s.Append(models.Observation{Timestamp: t0, Patients: -1}), models.ErrInvalidObservation)
	assert.ErrorIs(t, s.Append(models.Observation{Patients: 3}), models.ErrInvalidObservation)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_TailInsufficient(t *testing.T) {
	s := NewMemoryObservationStore()
	require.NoError(t, s.Seed(hourly(5)))
	_, err := s.Tail(24)
	var ih *models.InsufficientHistoryError
	require.True(t, errors.As(err, &ih))
	assert.Equal(t, 24, ih.Need)
	assert.Equal(t, 5, ih.Have)

	_, ok := NewMemoryObservationStore().Last()
	assert.False(t, ok)
}

func TestMemoryStore_ReadsAreCopies(t *testing.T) {
	s := NewMemoryObservationStore()
	require.NoError(t, s.Seed(hourly(24)))

	all := s.All()
	all[0].Patients = 999
	tail, _ := s.Tail(24)
	tail[23].Patients = 999

	fresh := s.All()
	assert.Equal(t, 10, fresh[0].Patients)
	assert.Equal(t, 33, fresh[23].Patients)
}

func TestMemoryStore_ConcurrentAppendAndRead(t *testing.T) {
	s := NewMemoryObservationStore()
	require.NoError(t, s.Seed(hourly(24)))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 24; i < 524; i++ {
			_ = s.Append(models.Observation{Timestamp: t0.Add(time.Duration(i) * time.Hour), Patients: i})
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				tail, err := s.Tail(24)
				if assert.NoError(t, err) {
					for j := 1; j < len(tail); j++ {
						assert.True(t, tail[j].Timestamp.After(tail[j-1].Timestamp))
					}
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 524, s.Len())
}
