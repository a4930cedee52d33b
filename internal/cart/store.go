package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"storefront/internal/products"
	"storefront/internal/stores/session"
	"storefront/pkg/logkey"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Store is the authoritative in-memory cart. Every mutation writes a full
// snapshot to the session persistence so a new session process picks up where
// the last one left off; a snapshot that fails to parse on rehydrate is
// discarded rather than surfaced.
type Store struct {
	persist session.Store
	key     string

	mu      sync.Mutex
	lines   []Line
	nextSub int
	subs    map[int]func()
}

func NewStore(ctx context.Context, persist session.Store, key string) (*Store, error) {
	if persist == nil {
		return nil, fmt.Errorf("session store is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("persistence key is empty")
	}

	s := &Store{persist: persist, key: key, subs: map[int]func(){}}
	s.rehydrate(ctx)
	return s, nil
}

func (s *Store) rehydrate(ctx context.Context) {
	raw, ok, err := s.persist.Get(ctx, s.key)
	if err != nil {
		slog.Error("reading persisted cart, starting empty",
			slog.String("key", s.key), slog.String(logkey.ERROR, err.Error()))
		return
	}
	if !ok {
		return
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		slog.Error("discarding corrupt cart snapshot",
			slog.String("key", s.key), slog.String(logkey.ERROR, err.Error()))
		return
	}

	// Snapshots written by older sessions may violate the invariants; keep
	// the first line per id and drop anything without a positive quantity.
	seen := map[string]bool{}
	for _, line := range lines {
		if line.ID == "" || line.Quantity < 1 || seen[line.ID] {
			continue
		}
		seen[line.ID] = true
		s.lines = append(s.lines, line)
	}
}

// AddItem appends a new line with quantity 1, or bumps the quantity when the
// product is already in the cart.
func (s *Store) AddItem(ctx context.Context, p products.Product) {
	s.mu.Lock()
	added := false
	for i := range s.lines {
		if s.lines[i].ID == p.ID {
			s.lines[i].Quantity++
			added = true
			break
		}
	}
	if !added {
		s.lines = append(s.lines, Line{Product: p, Quantity: 1})
	}
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// RemoveItem deletes the line for id. Removing an absent id is a no-op.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.ID != id {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// SetQuantity sets the quantity for id. Quantities below 1 are rejected;
// removal stays an explicit RemoveItem. Setting an absent id is a no-op.
func (s *Store) SetQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines[i].Quantity = quantity
			break
		}
	}
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = nil
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total is derived on every call, never cached.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, line := range s.lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Subscribe registers fn to run after every mutation. The returned function
// unsubscribes.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	lines := s.lines
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		slog.Error("serializing cart snapshot",
			slog.String("key", s.key), slog.String(logkey.ERROR, err.Error()))
		return
	}
	if err := s.persist.Set(ctx, s.key, string(data)); err != nil {
		slog.Error("persisting cart snapshot",
			slog.String("key", s.key), slog.String(logkey.ERROR, err.Error()))
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
