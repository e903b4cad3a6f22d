package domain

import "time"

// PaymentSubmitted is emitted when a buyer attaches proof of payment. It is
// delivered best-effort to the admin notifier; delivery failure never rolls
// back the paid transition.
type PaymentSubmitted struct {
	Reference    string    `json:"reference"`
	Provider     string    `json:"provider"`
	ProductCode  string    `json:"productCode"`
	ProductName  string    `json:"productName"`
	Amount       int64     `json:"amount"`
	BuyerID      string    `json:"buyerId"`
	ServerID     string    `json:"serverId,omitempty"`
	PaymentProof string    `json:"paymentProof,omitempty"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// Stats is the admin dashboard summary over the whole order collection.
type Stats struct {
	Total        int   `json:"total"`
	Pending      int   `json:"pending"`
	Paid         int   `json:"paid"`
	Completed    int   `json:"completed"`
	Failed       int   `json:"failed"`
	TodayOrders  int   `json:"todayOrders"`
	TodayRevenue int64 `json:"todayRevenue"`
}
