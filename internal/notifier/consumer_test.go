package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/notzshop/order-relay/internal/order/domain"
)

func TestRenderAlert(t *testing.T) {
	event := domain.PaymentSubmitted{
		Reference:    "NOTZ1717171717171A3F9",
		Provider:     "mobile-legends",
		ProductCode:  "ml-5-diamond",
		ProductName:  "5 Diamonds",
		Amount:       2000,
		BuyerID:      "123456789",
		ServerID:     "2001",
		PaymentProof: "TRX-001",
		SubmittedAt:  time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}

	msg := RenderAlert(event)
	assert.Contains(t, msg, "NOTZ1717171717171A3F9")
	assert.Contains(t, msg, "mobile-legends")
	assert.Contains(t, msg, "5 Diamonds (ml-5-diamond)")
	assert.Contains(t, msg, "Rp 2000")
	assert.Contains(t, msg, "User ID: 123456789")
	assert.Contains(t, msg, "Server: 2001")
	assert.Contains(t, msg, "Proof: TRX-001")
}

func TestRenderAlertOmitsOptionalFields(t *testing.T) {
	event := domain.PaymentSubmitted{
		Reference:   "NOTZ1",
		Provider:    "genshin-impact",
		ProductCode: "gi-60-genesis",
		ProductName: "60 Genesis Crystals",
		Amount:      15000,
		BuyerID:     "800000001",
		SubmittedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}

	msg := RenderAlert(event)
	assert.NotContains(t, msg, "Server:")
	assert.NotContains(t, msg, "Proof:")
}
