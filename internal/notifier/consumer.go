// Package notifier consumes PaymentSubmitted events and raises the admin
// alert. Delivery is best-effort by design: nothing here feeds back into
// order state.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/notzshop/order-relay/internal/order/domain"
	"github.com/notzshop/order-relay/pkg/idempotency"
	"github.com/notzshop/order-relay/pkg/tracing"
)

// Sink receives the rendered admin alert. The default sink logs it; a chat
// integration would implement the same interface.
type Sink interface {
	Notify(ctx context.Context, message string) error
}

type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Notify(ctx context.Context, message string) error {
	s.log.Info("admin notification", "message", message)
	return nil
}

type Consumer struct {
	log    *slog.Logger
	reader *kafka.Reader
	sink   Sink
	idem   *idempotency.Store
	tracer trace.Tracer
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, sink Sink, idem *idempotency.Store) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{
		log:    log,
		reader: r,
		sink:   sink,
		idem:   idem,
		tracer: otel.Tracer("notifier-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
		seen, err := c.idem.Seen(ctx, key)
		if err != nil {
			c.log.Error("idempotency check failed", "err", err)
			continue
		}
		if seen {
			c.log.Info("duplicate message skipped", "key", key)
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
		msgCtx, span := c.tracer.Start(msgCtx, "ConsumePaymentSubmitted")

		var event domain.PaymentSubmitted
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.Error("unmarshal failed", "err", err)
			span.End()
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		if err := c.sink.Notify(msgCtx, RenderAlert(event)); err != nil {
			c.log.Error("notification delivery failed", "reference", event.Reference, "err", err)
		} else {
			c.log.Info("admin notified", "reference", event.Reference)
		}
		span.End()
		_ = c.reader.CommitMessages(ctx, msg)
	}
}

// RenderAlert formats the payment alert the admin sees before checking the
// bank mutation and approving.
func RenderAlert(e domain.PaymentSubmitted) string {
	var b strings.Builder
	b.WriteString("NEW PAYMENT SUBMITTED\n")
	fmt.Fprintf(&b, "Reference: %s\n", e.Reference)
	fmt.Fprintf(&b, "Game: %s\n", e.Provider)
	fmt.Fprintf(&b, "Product: %s (%s)\n", e.ProductName, e.ProductCode)
	fmt.Fprintf(&b, "Amount: Rp %d\n", e.Amount)
	fmt.Fprintf(&b, "User ID: %s\n", e.BuyerID)
	if e.ServerID != "" {
		fmt.Fprintf(&b, "Server: %s\n", e.ServerID)
	}
	if e.PaymentProof != "" {
		fmt.Fprintf(&b, "Proof: %s\n", e.PaymentProof)
	}
	fmt.Fprintf(&b, "Submitted: %s\n", e.SubmittedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("Check the account mutation and approve once the payment has landed.")
	return b.String()
}
