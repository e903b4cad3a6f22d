package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/notzshop/order-relay/internal/order/domain"
)

var ErrNotFound = errors.New("order not found")

const EventPaymentSubmitted = "PaymentSubmitted"

type CreateOrderInput struct {
	Provider    string
	ProductCode string
	ProductName string
	UserData    map[string]string
	Amount      int64
}

type Service struct {
	log       *slog.Logger
	repo      OrderRepository
	forwarder Forwarder
	now       func() time.Time
}

func NewService(log *slog.Logger, repo OrderRepository, forwarder Forwarder) *Service {
	return &Service{log: log, repo: repo, forwarder: forwarder, now: time.Now}
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	o, err := domain.NewOrder(in.Provider, in.ProductCode, in.ProductName, in.UserData, in.Amount, s.now().UTC())
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.Append(ctx, o); err != nil {
		return domain.Order{}, err
	}
	s.log.Info("order created", "reference", o.Reference, "provider", o.Provider, "amount", o.Amount)
	return o, nil
}

// SubmitProof moves a pending order to paid and emits the admin notification
// event through the outbox. The event is best-effort downstream; a publish
// failure never reverts the paid state.
func (s *Service) SubmitProof(ctx context.Context, reference, proof string) (domain.Order, error) {
	o, err := s.load(ctx, reference)
	if err != nil {
		return domain.Order{}, err
	}
	if err := o.MarkPaid(proof); err != nil {
		return domain.Order{}, err
	}

	event := domain.PaymentSubmitted{
		Reference:    o.Reference,
		Provider:     o.Provider,
		ProductCode:  o.ProductCode,
		ProductName:  o.ProductName,
		Amount:       o.Amount,
		BuyerID:      o.BuyerID(),
		ServerID:     o.ServerID(),
		PaymentProof: o.PaymentProof,
		SubmittedAt:  s.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.ReplaceWithOutbox(ctx, o, EventPaymentSubmitted, payload); err != nil {
		return domain.Order{}, err
	}
	s.log.Info("payment proof submitted", "reference", o.Reference)
	return o, nil
}

// Approve forwards a paid order to the fulfillment provider. The intermediate
// processing state is persisted before the outbound call so a crash mid-call
// leaves a recoverable record. The forwarder outcome lands the order in
// completed or failed; both are normal returns, not errors.
func (s *Service) Approve(ctx context.Context, reference, admin string) (domain.Order, error) {
	o, err := s.load(ctx, reference)
	if err != nil {
		return domain.Order{}, err
	}
	if err := o.MarkProcessing(admin, s.now().UTC()); err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.Replace(ctx, o); err != nil {
		return domain.Order{}, err
	}

	result, err := s.forwarder.Forward(ctx, ForwardRequest{
		ProductCode: o.ProductCode,
		BuyerID:     o.BuyerID(),
		ServerID:    o.ServerID(),
	})
	switch {
	case err != nil:
		o.MarkFailed(fmt.Sprintf("fulfillment error: %s", err))
		s.log.Error("fulfillment forward failed", "reference", o.Reference, "err", err)
	case !result.Success:
		o.MarkFailed(fmt.Sprintf("fulfillment rejected: %s", result.Message))
		s.log.Warn("fulfillment rejected order", "reference", o.Reference, "message", result.Message)
	default:
		if err := o.MarkCompleted(result.ExternalReference); err != nil {
			return domain.Order{}, err
		}
		s.log.Info("order fulfilled", "reference", o.Reference, "external_reference", result.ExternalReference)
	}

	if err := s.repo.Replace(ctx, o); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (s *Service) Reject(ctx context.Context, reference, admin, reason string) (domain.Order, error) {
	o, err := s.load(ctx, reference)
	if err != nil {
		return domain.Order{}, err
	}
	if err := o.MarkRejected(admin, reason, s.now().UTC()); err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.Replace(ctx, o); err != nil {
		return domain.Order{}, err
	}
	s.log.Info("order rejected", "reference", o.Reference, "admin", admin)
	return o, nil
}

func (s *Service) Get(ctx context.Context, reference string) (domain.Order, error) {
	return s.load(ctx, reference)
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if o.Status == status {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var stats domain.Stats
	stats.Total = len(all)
	for _, o := range all {
		switch o.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusPaid:
			stats.Paid++
		case domain.StatusCompleted:
			stats.Completed++
		case domain.StatusFailed:
			stats.Failed++
		}
		if !o.CreatedAt.Before(midnight) {
			stats.TodayOrders++
			if o.Status == domain.StatusCompleted {
				stats.TodayRevenue += o.Amount
			}
		}
	}
	return stats, nil
}

// ClearAll wipes the order collection. Maintenance operation only.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.log.Warn("order collection cleared")
	return nil
}

// load fetches an order and applies lazy expiry: a pending order read past
// its deadline is moved to expired and persisted before being returned.
func (s *Service) load(ctx context.Context, reference string) (domain.Order, error) {
	o, err := s.repo.Find(ctx, reference)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Lapsed(s.now().UTC()) {
		o.MarkExpired()
		if err := s.repo.Replace(ctx, o); err != nil {
			return domain.Order{}, err
		}
		s.log.Info("order expired", "reference", o.Reference)
	}
	return o, nil
}
