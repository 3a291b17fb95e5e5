package http

import (
	"context"
	"sync"

	"github.com/storefront/checkout-service-go/internal/cart"
)

// StoreFactory builds a session's cart store, restoring any persisted
// snapshot.
type StoreFactory func(ctx context.Context, sessionID string) *cart.Store

// SessionStores caches one cart store per session id, creating stores
// lazily on first touch.
type SessionStores struct {
	mu      sync.Mutex
	stores  map[string]*cart.Store
	factory StoreFactory
}

func NewSessionStores(factory StoreFactory) *SessionStores {
	return &SessionStores{
		stores:  make(map[string]*cart.Store),
		factory: factory,
	}
}

func (s *SessionStores) Get(ctx context.Context, sessionID string) *cart.Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.stores[sessionID]; ok {
		return store
	}
	store := s.factory(ctx, sessionID)
	s.stores[sessionID] = store
	return store
}
