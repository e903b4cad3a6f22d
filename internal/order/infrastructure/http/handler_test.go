package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notzshop/order-relay/internal/auth"
	"github.com/notzshop/order-relay/internal/fulfillment"
	"github.com/notzshop/order-relay/internal/order/application"
	"github.com/notzshop/order-relay/internal/order/domain"
	"github.com/notzshop/order-relay/internal/order/infrastructure/memory"
	"github.com/notzshop/order-relay/internal/pricing"
)

type stubForwarder struct {
	result application.ForwardResult
}

func (f *stubForwarder) Forward(ctx context.Context, req application.ForwardRequest) (application.ForwardResult, error) {
	return f.result, nil
}

type stubCatalog struct {
	providers []fulfillment.Provider
	products  []fulfillment.Product
}

func (c *stubCatalog) Providers(ctx context.Context) ([]fulfillment.Provider, error) {
	return c.providers, nil
}

func (c *stubCatalog) Products(ctx context.Context, provider string) ([]fulfillment.Product, error) {
	return c.products, nil
}

type env struct {
	server *httptest.Server
	repo   *memory.Repository
}

func newEnv(t *testing.T, fwd *stubForwarder, catalog *stubCatalog) *env {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	repo := memory.NewRepository()
	svc := application.NewService(log, repo, fwd)
	gate := auth.NewGate([]auth.Credential{{Username: "admin", Password: "s3cret", Role: "admin"}}, auth.NewMemoryStore())
	prices := pricing.NewStore(pricing.NewResolver(pricing.Table{"mobile-legends": {"ml-5-diamond": 2000}}))

	h := NewHandler(log, svc, gate, catalog, prices)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return &env{server: srv, repo: repo}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createBody() map[string]any {
	return map[string]any{
		"provider":    "mobile-legends",
		"productCode": "ml-5-diamond",
		"productName": "5 Diamonds",
		"userData":    map[string]string{"id": "123456789", "server": "2001"},
		"amount":      2000,
	}
}

func (e *env) login(t *testing.T) string {
	resp := e.do(t, http.MethodPost, "/admin/login", "", map[string]string{"username": "admin", "password": "s3cret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[auth.Session](t, resp).Token
}

func TestCreateAndFetchOrder(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})

	resp := e.do(t, http.MethodPost, "/orders", "", createBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.Order](t, resp)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, created.CreatedAt.Add(30*time.Minute), created.ExpiresAt)

	resp = e.do(t, http.MethodGet, "/orders/"+created.Reference, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decode[domain.Order](t, resp)
	assert.Equal(t, created.Reference, fetched.Reference)
}

func TestCreateOrderValidationError(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})

	body := createBody()
	body["amount"] = 0
	resp := e.do(t, http.MethodPost, "/orders", "", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitProofFlow(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})

	resp := e.do(t, http.MethodPost, "/orders", "", createBody())
	created := decode[domain.Order](t, resp)

	resp = e.do(t, http.MethodPost, "/orders/"+created.Reference+"/proof", "", map[string]string{"paymentProof": "TRX-001"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	paid := decode[domain.Order](t, resp)
	assert.Equal(t, domain.StatusPaid, paid.Status)

	// second submission conflicts
	resp = e.do(t, http.MethodPost, "/orders/"+created.Reference+"/proof", "", map[string]string{"paymentProof": "TRX-002"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSubmitProofUnknownReference(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})
	resp := e.do(t, http.MethodPost, "/orders/NOTZ000/proof", "", map[string]string{"paymentProof": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})

	resp := e.do(t, http.MethodGet, "/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/admin/orders", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})
	resp := e.do(t, http.MethodPost, "/admin/login", "", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestApproveFlow(t *testing.T) {
	fwd := &stubForwarder{result: application.ForwardResult{Success: true, ExternalReference: "WD-99"}}
	e := newEnv(t, fwd, &stubCatalog{})
	token := e.login(t)

	resp := e.do(t, http.MethodPost, "/orders", "", createBody())
	created := decode[domain.Order](t, resp)
	resp = e.do(t, http.MethodPost, "/orders/"+created.Reference+"/proof", "", map[string]string{"paymentProof": "TRX-001"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/admin/orders/"+created.Reference+"/approve", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	approved := decode[domain.Order](t, resp)
	assert.Equal(t, domain.StatusCompleted, approved.Status)
	assert.Equal(t, "WD-99", approved.ExternalReference)
	assert.Equal(t, "admin", approved.ProcessedBy)
}

func TestApprovePendingOrderConflicts(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})
	token := e.login(t)

	resp := e.do(t, http.MethodPost, "/orders", "", createBody())
	created := decode[domain.Order](t, resp)

	resp = e.do(t, http.MethodPost, "/admin/orders/"+created.Reference+"/approve", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRejectFlow(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})
	token := e.login(t)

	resp := e.do(t, http.MethodPost, "/orders", "", createBody())
	created := decode[domain.Order](t, resp)
	resp = e.do(t, http.MethodPost, "/orders/"+created.Reference+"/proof", "", map[string]string{"paymentProof": "TRX-001"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/admin/orders/"+created.Reference+"/reject", token, map[string]string{"reason": "no matching mutation"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rejected := decode[domain.Order](t, resp)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, "no matching mutation", rejected.AdminNotes)
}

func TestListOrdersWithStatusFilter(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})
	token := e.login(t)

	resp := e.do(t, http.MethodPost, "/orders", "", createBody())
	created := decode[domain.Order](t, resp)
	_ = e.do(t, http.MethodPost, "/orders", "", createBody())
	resp = e.do(t, http.MethodPost, "/orders/"+created.Reference+"/proof", "", map[string]string{"paymentProof": "TRX-001"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/admin/orders?status=paid", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	paid := decode[[]domain.Order](t, resp)
	require.Len(t, paid, 1)
	assert.Equal(t, created.Reference, paid[0].Reference)

	resp = e.do(t, http.MethodGet, "/admin/orders?status=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})
	token := e.login(t)

	_ = e.do(t, http.MethodPost, "/orders", "", createBody())

	resp := e.do(t, http.MethodGet, "/admin/orders/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[domain.Stats](t, resp)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Pending)
}

func TestClearOrders(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})
	token := e.login(t)

	_ = e.do(t, http.MethodPost, "/orders", "", createBody())
	resp := e.do(t, http.MethodDelete, "/admin/orders", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/admin/orders", token, nil)
	orders := decode[[]domain.Order](t, resp)
	assert.Empty(t, orders)
}

func TestProductListingAppliesPricing(t *testing.T) {
	catalog := &stubCatalog{products: []fulfillment.Product{
		{Code: "ml-5-diamond", Name: "5 Diamonds", Price: 1900, Status: "active"},
		{Code: "ml-999-diamond", Name: "999 Diamonds", Price: 250000, Status: "active"},
	}}
	e := newEnv(t, &stubForwarder{}, catalog)

	resp := e.do(t, http.MethodGet, "/catalog/providers/mobile-legends/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	products := decode[[]pricedProduct](t, resp)
	require.Len(t, products, 2)
	assert.Equal(t, int64(2000), products[0].Price)   // override
	assert.Equal(t, int64(250001), products[1].Price) // base + 1
}

func TestProviderListing(t *testing.T) {
	catalog := &stubCatalog{providers: []fulfillment.Provider{{Code: "mobile-legends", Name: "Mobile Legends"}}}
	e := newEnv(t, &stubForwarder{}, catalog)

	resp := e.do(t, http.MethodGet, "/catalog/providers", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	providers := decode[[]fulfillment.Provider](t, resp)
	require.Len(t, providers, 1)
	assert.Equal(t, "mobile-legends", providers[0].Code)
}

func TestPricingOverridesView(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})
	token := e.login(t)

	resp := e.do(t, http.MethodGet, "/admin/pricing", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	overrides := decode[pricing.Table](t, resp)
	assert.Equal(t, int64(2000), overrides["mobile-legends"]["ml-5-diamond"])
}

func TestSetPriceReflectedInProductListing(t *testing.T) {
	catalog := &stubCatalog{products: []fulfillment.Product{
		{Code: "ml-5-diamond", Name: "5 Diamonds", Price: 1900, Status: "active"},
	}}
	e := newEnv(t, &stubForwarder{}, catalog)
	token := e.login(t)

	resp := e.do(t, http.MethodPut, "/admin/pricing/mobile-legends/ml-5-diamond", token, map[string]int64{"price": 2500})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/catalog/providers/mobile-legends/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	products := decode[[]pricedProduct](t, resp)
	require.Len(t, products, 1)
	assert.Equal(t, int64(2500), products[0].Price)
}

func TestSetPriceRejectsNonPositive(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})
	token := e.login(t)

	resp := e.do(t, http.MethodPut, "/admin/pricing/mobile-legends/ml-5-diamond", token, map[string]int64{"price": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPricingRoutesRequireSession(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})

	resp := e.do(t, http.MethodGet, "/admin/pricing", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, http.MethodPut, "/admin/pricing/mobile-legends/ml-5-diamond", "", map[string]int64{"price": 2500})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	e := newEnv(t, &stubForwarder{}, &stubCatalog{})
	token := e.login(t)

	resp := e.do(t, http.MethodPost, "/admin/logout", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/admin/orders", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
