package application

import (
	"context"

	"github.com/notzshop/order-relay/internal/order/domain"
)

type OrderRepository interface {
	// Append inserts a new order; the reference must not exist yet.
	Append(ctx context.Context, o domain.Order) error
	// Find returns ErrNotFound when no order carries the reference.
	Find(ctx context.Context, reference string) (domain.Order, error)
	// Replace overwrites the stored order; ErrNotFound when absent.
	Replace(ctx context.Context, o domain.Order) error
	// ReplaceWithOutbox overwrites the order and records an outbound event in
	// the same transaction.
	ReplaceWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte) error
	// ListAll returns every order, createdAt descending.
	ListAll(ctx context.Context) ([]domain.Order, error)
	// Clear wipes the whole collection. Maintenance only.
	Clear(ctx context.Context) error
}

// Forwarder hands an approved order to the external fulfillment provider.
// Transport failures may surface as an error or as an unsuccessful result;
// the lifecycle treats both the same way.
type Forwarder interface {
	Forward(ctx context.Context, req ForwardRequest) (ForwardResult, error)
}

type ForwardRequest struct {
	ProductCode string
	BuyerID     string
	ServerID    string
}

type ForwardResult struct {
	Success           bool
	ExternalReference string
	Message           string
}
