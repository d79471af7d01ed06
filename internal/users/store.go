package users

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store persists user accounts. Emails are unique; Create returns
// ErrDuplicate for a second account with the same email.
type Store interface {
	Create(ctx context.Context, u User) (User, error)
	Get(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, u User) (User, error)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]User
	emails  map[string]uuid.UUID
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]User),
		emails:  make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) Create(_ context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[u.Email]; taken {
		return User{}, ErrDuplicate
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	s.records[u.ID] = u
	s.emails[u.Email] = u.ID
	return u, nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.records[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return s.records[id], nil
}

// Update replaces the profile fields of an existing user. Email, role and
// password are not changed.
func (s *MemoryStore) Update(_ context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[u.ID]
	if !ok {
		return User{}, ErrNotFound
	}

	current.FirstName = u.FirstName
	current.LastName = u.LastName
	current.Specialization = u.Specialization
	current.LicenseNumber = u.LicenseNumber
	current.UpdatedAt = u.UpdatedAt
	s.records[u.ID] = current
	return current, nil
}
