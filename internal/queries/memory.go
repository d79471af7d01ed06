package queries

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. Records are copied on every read and
// write, and listings return records in creation order.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Query
	order   []uuid.UUID
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]Query),
	}
}

func (s *MemoryStore) Create(_ context.Context, q Query) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if _, exists := s.records[q.ID]; exists {
		return uuid.Nil, ErrDuplicate
	}

	s.records[q.ID] = clone(q)
	s.order = append(s.order, q.ID)
	return q.ID, nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (Query, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.records[id]
	if !ok {
		return Query{}, ErrNotFound
	}
	return clone(q), nil
}

func (s *MemoryStore) CompareAndUpdate(
	_ context.Context,
	id uuid.UUID,
	expected Status,
	mutate func(*Query) error,
) (Query, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[id]
	if !ok {
		return Query{}, ErrNotFound
	}
	if current.Status != expected {
		return Query{}, &ConflictError{ID: id, Expected: expected, Actual: current.Status}
	}

	working := clone(current)
	if err := mutate(&working); err != nil {
		return Query{}, err
	}

	mutable(&current, working)
	s.records[id] = current
	return clone(current), nil
}

func (s *MemoryStore) ListByStatus(_ context.Context, status Status) ([]Query, error) {
	return s.filter(func(q Query) bool { return q.Status == status }), nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]Query, error) {
	return s.filter(func(Query) bool { return true }), nil
}

func (s *MemoryStore) ListByPatient(_ context.Context, patientID uuid.UUID) ([]Query, error) {
	return s.filter(func(q Query) bool { return q.PatientID == patientID }), nil
}

func (s *MemoryStore) filter(keep func(Query) bool) []Query {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Query, 0, len(s.order))
	for _, id := range s.order {
		if q := s.records[id]; keep(q) {
			out = append(out, clone(q))
		}
	}
	return out
}

func clone(q Query) Query {
	if q.ClinicianID != nil {
		id := *q.ClinicianID
		q.ClinicianID = &id
	}
	if q.ReviewedAt != nil {
		t := *q.ReviewedAt
		q.ReviewedAt = &t
	}
	return q
}
