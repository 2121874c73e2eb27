package memory

import (
	"context"
	"sync"

	"github.com/stockpeek/edge-gateway/internal/models"
)

type InMemoryAttemptManager struct {
	mu       sync.RWMutex
	attempts map[string]models.LoginAttempt
}

func NewAttemptRepository() *InMemoryAttemptManager {
	return &InMemoryAttemptManager{
		attempts: make(map[string]models.LoginAttempt),
	}
}

func (m *InMemoryAttemptManager) Get(_ context.Context, identity string) (*models.LoginAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.attempts[identity]
	if !ok {
		return nil, nil
	}

	return &rec, nil
}

func (m *InMemoryAttemptManager) Put(_ context.Context, identity string, rec models.LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts[identity] = rec

	return nil
}

func (m *InMemoryAttemptManager) Delete(_ context.Context, identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.attempts, identity)

	return nil
}
