package identity

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.Mutex
	popups  map[string]PendingPopup
	deleted []string
	saveErr error
	takeErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{popups: make(map[string]PendingPopup)}
}

func (m *memoryStore) Save(_ context.Context, p PendingPopup, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.popups[p.State] = p
	return nil
}

func (m *memoryStore) Take(_ context.Context, state string) (*PendingPopup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.takeErr != nil {
		return nil, m.takeErr
	}
	p, ok := m.popups[state]
	if !ok {
		return nil, ErrPopupNotFound
	}
	delete(m.popups, state)
	return &p, nil
}

func (m *memoryStore) Delete(_ context.Context, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.popups, state)
	m.deleted = append(m.deleted, state)
	return nil
}

func (m *memoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.popups)
}
