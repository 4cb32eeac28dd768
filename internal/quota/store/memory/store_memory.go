package memory

import (
	"context"
	"sync"

	"poagate/internal/quota/models"
	id "poagate/pkg/domain"
	"poagate/pkg/platform/sentinel"
)

// InMemoryStore keeps quota state in a map. Suitable for tests and
// single-process deployments; the mutex gives the same conditional-write
// semantics the durable stores provide.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[id.UserID]*models.State
}

func New() *InMemoryStore {
	return &InMemoryStore{
		states: make(map[id.UserID]*models.State),
	}
}

func (s *InMemoryStore) Get(_ context.Context, userID id.UserID) (*models.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.states[userID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return state.Clone(), nil
}

func (s *InMemoryStore) Create(_ context.Context, state *models.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.states[state.UserID]; exists {
		return sentinel.ErrConflict
	}
	s.states[state.UserID] = state.Clone()
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, next *models.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.states[next.UserID]
	if !exists {
		return sentinel.ErrNotFound
	}
	if current.Version != next.Version-1 {
		return sentinel.ErrConflict
	}
	s.states[next.UserID] = next.Clone()
	return nil
}

// Clear empties the store. Test helper.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = make(map[id.UserID]*models.State)
}
