package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a process-local Store for tests and local development.
// It enforces the same email uniqueness guarantee as the Postgres
// store, atomically under its lock.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]User
	byEmail map[string]uuid.UUID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    map[uuid.UUID]User{},
		byEmail: map[string]uuid.UUID{},
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return cloneUser(s.byID[id]), nil
}

func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) Create(_ context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(u.Email)
	if _, exists := s.byEmail[key]; exists {
		return User{}, ErrDuplicateEmail
	}

	now := time.Now()
	u.ID = uuid.New()
	u.Email = strings.TrimSpace(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now

	s.byID[u.ID] = cloneUser(u)
	s.byEmail[key] = u.ID
	return u, nil
}

func cloneUser(u User) User {
	if u.PasswordHash != nil {
		hash := *u.PasswordHash
		u.PasswordHash = &hash
	}
	if u.FederatedIDs != nil {
		ids := make(map[string]string, len(u.FederatedIDs))
		for k, v := range u.FederatedIDs {
			ids[k] = v
		}
		u.FederatedIDs = ids
	}
	return u
}
