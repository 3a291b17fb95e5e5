package cart

import (
	"context"
	"log"
	"sync"
)

// Store owns one session's cart: an ordered list of line items keyed by
// product id, plus the cart-panel visibility flag. Every mutation writes
// the full snapshot through Storage; storage failures are logged and
// ignored, so the in-memory cart stays the source of truth for the
// session.
type Store struct {
	mu      sync.Mutex
	items   []LineItem
	open    bool
	storage Storage
	logger  *log.Logger
}

// NewStore restores the cart from storage. A missing snapshot or a load
// failure yields an empty cart.
func NewStore(ctx context.Context, storage Storage, logger *log.Logger) *Store {
	s := &Store{storage: storage, logger: logger}

	items, err := storage.Load(ctx)
	if err != nil {
		logger.Printf("load cart snapshot: %v (starting empty)", err)
		return s
	}
	s.items = items
	return s
}

// Add merges quantity into an existing line for the same product, or
// appends a new line at the end. Quantity is assumed positive.
func (s *Store) Add(ctx context.Context, p Product, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID == p.ID {
			s.items[i].Quantity += quantity
			s.persist(ctx)
			return
		}
	}
	s.items = append(s.items, LineItem{Product: p, Quantity: quantity})
	s.persist(ctx)
}

// SetQuantity replaces a line's quantity in place. A quantity of zero or
// less removes the line. Unknown product ids are a no-op.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		s.Remove(ctx, productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items[i].Quantity = quantity
			s.persist(ctx)
			return
		}
	}
}

func (s *Store) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// Clear empties the cart and deletes the persisted snapshot.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.storage.Erase(ctx); err != nil {
		s.logger.Printf("erase cart snapshot: %v", err)
	}
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Total is the sum of all line totals.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for _, it := range s.items {
		total += LineTotal(it)
	}
	return total
}

// Count is the sum of all quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, it := range s.items {
		count += it.Quantity
	}
	return count
}

// OpenPanel and ClosePanel toggle the cart panel flag. This is UI state,
// independent of the cart contents, and is not persisted.
func (s *Store) OpenPanel() {
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
}

func (s *Store) ClosePanel() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

func (s *Store) PanelOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// persist writes the full snapshot. Callers hold the mutex. Failures are
// logged and otherwise ignored.
func (s *Store) persist(ctx context.Context) {
	if err := s.storage.Save(ctx, s.items); err != nil {
		s.logger.Printf("save cart snapshot: %v", err)
	}
}
