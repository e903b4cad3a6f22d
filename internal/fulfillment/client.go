// Package fulfillment wraps the prepaid provider's HTTP API: catalog listing
// and transaction create/status. Approved orders are forwarded through it.
package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/notzshop/order-relay/internal/order/application"
)

type Config struct {
	BaseURL   string
	APIKey    string
	SecretKey string
	Timeout   time.Duration
}

type Client struct {
	log    *slog.Logger
	cfg    Config
	client *http.Client
}

func NewClient(log *slog.Logger, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		log:    log,
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type Provider struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Thumbnail string `json:"thumbnail"`
	Status    string `json:"status"`
}

type Product struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Price  int64  `json:"price"`
	Status string `json:"status"`
}

type Transaction struct {
	Reference  string `json:"reference"`
	Provider   string `json:"provider"`
	Product    string `json:"product"`
	Status     string `json:"status"`
	StatusAt   string `json:"status_at,omitempty"`
	SN         string `json:"sn,omitempty"`
	Note       string `json:"note,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	InvoiceURL string `json:"invoice_url,omitempty"`
	ExpiredAt  string `json:"expired_at,omitempty"`
}

// envelope is the provider's response wrapper: an application-level status
// code beside the HTTP one, plus either data or a message.
type envelope struct {
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) Providers(ctx context.Context) ([]Provider, error) {
	var providers []Provider
	if err := c.getJSON(ctx, "/provider", nil, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

// Products lists a provider's active products.
func (c *Client) Products(ctx context.Context, provider string) ([]Product, error) {
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("active", "1")

	var products []Product
	if err := c.getJSON(ctx, "/product", q, &products); err != nil {
		return nil, err
	}
	return products, nil
}

type createTransactionRequest struct {
	TargetProductCode string `json:"target_product_code"`
	ID                string `json:"id"`
	Server            string `json:"server,omitempty"`
}

// Forward submits the order to the provider. Every non-success shape, from a
// transport error to a malformed payload, comes back as Success=false with a
// readable message; the lifecycle records it on the failed order. No
// idempotency key is sent, so a retry after a timeout could double-fulfill.
func (c *Client) Forward(ctx context.Context, req application.ForwardRequest) (application.ForwardResult, error) {
	payload := createTransactionRequest{
		TargetProductCode: req.ProductCode,
		ID:                req.BuyerID,
		Server:            req.ServerID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return application.ForwardResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/transaction/create", bytes.NewReader(body))
	if err != nil {
		return application.ForwardResult{}, err
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Signature", c.cfg.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return application.ForwardResult{Message: fmt.Sprintf("network error: %s", err)}, nil
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return application.ForwardResult{Message: fmt.Sprintf("HTTP %d: malformed response", resp.StatusCode)}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || env.Status != 200 || len(env.Data) == 0 {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return application.ForwardResult{Message: msg}, nil
	}

	var tx Transaction
	if err := json.Unmarshal(env.Data, &tx); err != nil || tx.Reference == "" {
		return application.ForwardResult{Message: "provider returned no transaction reference"}, nil
	}

	c.log.Info("transaction forwarded", "external_reference", tx.Reference, "product", req.ProductCode)
	return application.ForwardResult{Success: true, ExternalReference: tx.Reference, Message: "success"}, nil
}

// TransactionStatus queries the provider for an already-forwarded order.
func (c *Client) TransactionStatus(ctx context.Context, reference string) (Transaction, error) {
	var tx Transaction
	if err := c.getJSON(ctx, "/transaction/"+reference, nil, &tx); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env envelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		if env.Message != "" {
			return fmt.Errorf("provider API error: HTTP %d: %s", resp.StatusCode, env.Message)
		}
		return fmt.Errorf("provider API error: HTTP %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("provider returned empty data: %s", env.Message)
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
}
