package pricing

import "sync"

// Store holds the resolver currently in effect. Updates swap the whole
// resolver, so readers never observe a partially applied change.
type Store struct {
	mu      sync.RWMutex
	current *Resolver
}

func NewStore(r *Resolver) *Store {
	return &Store{current: r}
}

// Current returns the resolver in effect.
func (s *Store) Current() *Resolver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetPrice installs one override and returns the resolver now in effect.
func (s *Store) SetPrice(provider, product string, price int64) *Resolver {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.current.WithPrice(provider, product, price)
	return s.current
}
