package cart

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/stores/session"
)

// Manager hands out one Store per session key so every request for the same
// user works against the same in-memory cart.
type Manager struct {
	persist session.Store

	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(persist session.Store) (*Manager, error) {
	if persist == nil {
		return nil, fmt.Errorf("session store is nil")
	}
	return &Manager{persist: persist, stores: map[string]*Store{}}, nil
}

func (m *Manager) For(ctx context.Context, userID string) (*Store, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[userID]; ok {
		return s, nil
	}

	s, err := NewStore(ctx, m.persist, "cart:"+userID)
	if err != nil {
		return nil, err
	}
	m.stores[userID] = s
	return s, nil
}
