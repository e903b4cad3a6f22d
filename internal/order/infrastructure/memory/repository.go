// Package memory is the in-memory order repository used by tests and local
// development. It mirrors the persisted layout: an insertion-ordered
// collection keyed by reference, scanned linearly.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/notzshop/order-relay/internal/order/application"
	"github.com/notzshop/order-relay/internal/order/domain"
	"github.com/notzshop/order-relay/pkg/tracing"
)

type Event struct {
	Type        string
	Payload     []byte
	Traceparent string
}

type Repository struct {
	mu     sync.Mutex
	orders []domain.Order
	events []Event
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Append(ctx context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.Reference == o.Reference {
			return fmt.Errorf("order %s already exists", o.Reference)
		}
	}
	r.orders = append(r.orders, o)
	return nil
}

func (r *Repository) Find(ctx context.Context, reference string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Reference == reference {
			return o, nil
		}
	}
	return domain.Order{}, application.ErrNotFound
}

func (r *Repository) Replace(ctx context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replaceLocked(o)
}

func (r *Repository) ReplaceWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.replaceLocked(o); err != nil {
		return err
	}
	r.events = append(r.events, Event{Type: eventType, Payload: payload, Traceparent: tracing.TraceparentFromContext(ctx)})
	return nil
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Order, len(r.orders))
	copy(out, r.orders)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Repository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = nil
	return nil
}

// Events returns the outbox records written so far. Test hook.
func (r *Repository) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Repository) replaceLocked(o domain.Order) error {
	for i, existing := range r.orders {
		if existing.Reference == o.Reference {
			r.orders[i] = o
			return nil
		}
	}
	return application.ErrNotFound
}
