// Package cartstore caches the last server-confirmed cart snapshot. The
// snapshot is replaced wholesale by Refresh and reset after checkout; no
// other component mutates it, so the displayed total always matches a state
// the server confirmed rather than a client prediction.
package cartstore

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/shop"
)

// Fetcher fetches the authoritative cart from the server.
type Fetcher interface {
	GetCart(ctx context.Context) (shop.Cart, error)
}

// Store holds the last successfully fetched cart snapshot plus the error of
// the most recent refresh. It is safe for concurrent use.
type Store struct {
	fetcher Fetcher

	mu       sync.Mutex
	snapshot shop.Cart
	lastErr  error
}

func New(fetcher Fetcher) *Store {
	return &Store{
		fetcher:  fetcher,
		snapshot: shop.Cart{Items: []shop.CartItem{}},
	}
}

// Refresh fetches the cart and replaces the snapshot wholesale; it never
// merges. On failure the previous snapshot is retained and the error is
// recorded for LastErr. Concurrent refreshes resolve last-arrival-wins: the
// snapshot reflects whichever response completed last, not which request was
// dispatched last.
func (s *Store) Refresh(ctx context.Context) (shop.Cart, error) {
	cart, err := s.fetcher.GetCart(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return s.snapshot, err
	}
	s.snapshot = cart
	s.lastErr = nil
	return cart, nil
}

// Snapshot returns the last successfully fetched cart, or the empty cart
// before the first successful refresh. Callers must not mutate it.
func (s *Store) Snapshot() shop.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// LastErr reports the error of the most recent refresh, nil after a success.
func (s *Store) LastErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reset replaces the snapshot with the empty cart. Called after a committed
// checkout, when the server has already emptied the authoritative cart.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = shop.Cart{Items: []shop.CartItem{}}
	s.lastErr = nil
}
