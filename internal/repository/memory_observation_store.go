package repository

import (
	"sync"

	"PatientPulse/internal/domain/models"
	domrepo "PatientPulse/internal/domain/repository"
)

// MemoryObservationStore keeps the hourly series in memory. Readers get
// copies, so a slice handed out never changes under the caller.
type MemoryObservationStore struct {
	mu  sync.RWMutex
	obs []models.Observation
}

func NewMemoryObservationStore() *MemoryObservationStore {
	return &MemoryObservationStore{}
}

// Seed appends obs in order, stopping at the first rejected entry.
func (s *MemoryObservationStore) Seed(obs []models.Observation) error {
	for _, o := range obs {
		if err := s.Append(o); err != nil {
			return err
		}
	}
	return nil
}

// Append adds obs at the tail. The store is left unchanged on error.
func (s *MemoryObservationStore) Append(obs models.Observation) error {
	if obs.Patients < 0 || obs.Timestamp.IsZero() {
		return models.ErrInvalidObservation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.obs); n > 0 {
		tail := s.obs[n-1].Timestamp
		if !obs.Timestamp.After(tail) {
			return &models.OutOfOrderError{Tail: tail, Got: obs.Timestamp}
		}
	}
	s.obs = append(s.obs, obs)
	return nil
}

// Tail returns a copy of the last n observations, oldest first.
func (s *MemoryObservationStore) Tail(n int) ([]models.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 || len(s.obs) < n {
		return nil, &models.InsufficientHistoryError{Need: n, Have: len(s.obs)}
	}
	out := make([]models.Observation, n)
	copy(out, s.obs[len(s.obs)-n:])
	return out, nil
}

func (s *MemoryObservationStore) All() []models.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Observation, len(s.obs))
	copy(out, s.obs)
	return out
}

func (s *MemoryObservationStore) Last() (models.Observation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.obs) == 0 {
		return models.Observation{}, false
	}
	return s.obs[len(s.obs)-1], true
}

func (s *MemoryObservationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.obs)
}

var _ domrepo.ObservationStore = (*MemoryObservationStore)(nil)
