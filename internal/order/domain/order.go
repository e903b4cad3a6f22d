package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRejected   Status = "rejected"
	StatusExpired    Status = "expired"
)

// PendingTTL is how long a buyer has to pay before the order lapses.
const PendingTTL = 30 * time.Minute

var (
	ErrProductCodeRequired = errors.New("product code is required")
	ErrBuyerIDRequired     = errors.New("buyer id is required")
	ErrInvalidAmount       = errors.New("amount must be greater than 0")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

// Order is one purchase attempt relayed through the store. The reference is
// the only identity; exactly one order exists per reference.
type Order struct {
	Reference         string            `json:"reference"`
	Provider          string            `json:"provider"`
	ProductCode       string            `json:"productCode"`
	ProductName       string            `json:"productName"`
	UserData          map[string]string `json:"userData"`
	Amount            int64             `json:"amount"`
	Status            Status            `json:"status"`
	PaymentProof      string            `json:"paymentProof,omitempty"`
	AdminNotes        string            `json:"adminNotes,omitempty"`
	ProcessedBy       string            `json:"processedBy,omitempty"`
	ProcessedAt       *time.Time        `json:"processedAt,omitempty"`
	ExternalReference string            `json:"externalReference,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	ExpiresAt         time.Time         `json:"expiresAt"`
}

func NewOrder(provider, productCode, productName string, userData map[string]string, amount int64, now time.Time) (Order, error) {
	if productCode == "" {
		return Order{}, ErrProductCodeRequired
	}
	if userData["id"] == "" {
		return Order{}, ErrBuyerIDRequired
	}
	if amount <= 0 {
		return Order{}, ErrInvalidAmount
	}

	copied := make(map[string]string, len(userData))
	for k, v := range userData {
		copied[k] = v
	}

	return Order{
		Reference:   NewReference(now),
		Provider:    provider,
		ProductCode: productCode,
		ProductName: productName,
		UserData:    copied,
		Amount:      amount,
		Status:      StatusPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(PendingTTL),
	}, nil
}

// NewReference builds an order reference from the creation time plus a short
// random suffix, e.g. NOTZ1717171717171A3F9.
func NewReference(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:4]
	return fmt.Sprintf("NOTZ%d%s", now.UnixMilli(), suffix)
}

func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusRejected, StatusExpired:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusProcessing, StatusCompleted, StatusFailed, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// Lapsed reports whether a still-pending order sat unpaid past its deadline.
// Expiry is evaluated lazily wherever an order is read for action; there is
// no background sweep.
func (o *Order) Lapsed(now time.Time) bool {
	return o.Status == StatusPending && now.After(o.ExpiresAt)
}

func (o *Order) MarkExpired() {
	o.Status = StatusExpired
}

func (o *Order) MarkPaid(proof string) error {
	if o.Status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusPaid)
	}
	o.Status = StatusPaid
	o.PaymentProof = proof
	return nil
}

func (o *Order) MarkProcessing(admin string, now time.Time) error {
	if o.Status != StatusPaid {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusProcessing)
	}
	o.Status = StatusProcessing
	o.ProcessedBy = admin
	o.ProcessedAt = &now
	return nil
}

func (o *Order) MarkCompleted(externalReference string) error {
	if o.Status != StatusProcessing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusCompleted)
	}
	o.Status = StatusCompleted
	o.ExternalReference = externalReference
	o.AdminNotes = "forwarded to fulfillment provider"
	return nil
}

// MarkFailed force-lands the order in failed with the reason recorded. It is
// reachable from processing only; callers own that guarantee since forwarding
// errors must never be silently swallowed.
func (o *Order) MarkFailed(reason string) {
	o.Status = StatusFailed
	o.AdminNotes = reason
}

func (o *Order) MarkRejected(admin, reason string, now time.Time) error {
	if o.Status != StatusPaid {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusRejected)
	}
	o.Status = StatusRejected
	o.ProcessedBy = admin
	o.ProcessedAt = &now
	o.AdminNotes = reason
	return nil
}

func (o *Order) BuyerID() string  { return o.UserData["id"] }
func (o *Order) ServerID() string { return o.UserData["server"] }
