package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/notzshop/order-relay/internal/auth"
	"github.com/notzshop/order-relay/internal/fulfillment"
	"github.com/notzshop/order-relay/internal/order/application"
	"github.com/notzshop/order-relay/internal/order/domain"
	"github.com/notzshop/order-relay/internal/pricing"
)

// Catalog is the slice of the fulfillment client the storefront needs for
// browsing.
type Catalog interface {
	Providers(ctx context.Context) ([]fulfillment.Provider, error)
	Products(ctx context.Context, provider string) ([]fulfillment.Product, error)
}

type Handler struct {
	log     *slog.Logger
	service *application.Service
	gate    *auth.Gate
	catalog Catalog
	prices  *pricing.Store
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, gate *auth.Gate, catalog Catalog, prices *pricing.Store) *Handler {
	return &Handler{
		log:     log,
		service: service,
		gate:    gate,
		catalog: catalog,
		prices:  prices,
		tracer:  otel.Tracer("relay-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/orders", h.createOrder)
	r.Get("/orders/{reference}", h.getOrder)
	r.Post("/orders/{reference}/proof", h.submitProof)

	r.Get("/catalog/providers", h.listProviders)
	r.Get("/catalog/providers/{provider}/products", h.listProducts)

	r.Post("/admin/login", h.login)
	r.Post("/admin/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/admin/orders", h.listOrders)
		r.Get("/admin/orders/stats", h.orderStats)
		r.Post("/admin/orders/{reference}/approve", h.approveOrder)
		r.Post("/admin/orders/{reference}/reject", h.rejectOrder)
		r.Delete("/admin/orders", h.clearOrders)
		r.Get("/admin/pricing", h.listPricing)
		r.Put("/admin/pricing/{provider}/{product}", h.setPrice)
	})

	return r
}

type createOrderReq struct {
	Provider    string            `json:"provider"`
	ProductCode string            `json:"productCode"`
	ProductName string            `json:"productName"`
	UserData    map[string]string `json:"userData"`
	Amount      int64             `json:"amount"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	o, err := h.service.Create(ctx, application.CreateOrderInput{
		Provider:    req.Provider,
		ProductCode: req.ProductCode,
		ProductName: req.ProductName,
		UserData:    req.UserData,
		Amount:      req.Amount,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type submitProofReq struct {
	PaymentProof string `json:"paymentProof"`
}

func (h *Handler) submitProof(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitProof")
	defer span.End()

	var req submitProofReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	o, err := h.service.SubmitProof(ctx, chi.URLParam(r, "reference"), req.PaymentProof)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) listProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.catalog.Providers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, providers)
}

type pricedProduct struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Price  int64  `json:"price"`
	Status string `json:"status"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	products, err := h.catalog.Products(r.Context(), provider)
	if err != nil {
		h.writeError(w, err)
		return
	}

	priced := make([]pricedProduct, 0, len(products))
	for _, p := range products {
		priced = append(priced, pricedProduct{
			Code:   p.Code,
			Name:   p.Name,
			Price:  h.prices.Current().Resolve(provider, p.Code, p.Price),
			Status: p.Status,
		})
	}
	writeJSON(w, http.StatusOK, priced)
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	sess, err := h.gate.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		_ = h.gate.Logout(r.Context(), token)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []domain.Order
		err    error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		if !domain.Status(status).Valid() {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}
		orders, err = h.service.ListByStatus(r.Context(), domain.Status(status))
	} else {
		orders, err = h.service.List(r.Context())
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) orderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) approveOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ApproveOrder")
	defer span.End()

	o, err := h.service.Approve(ctx, chi.URLParam(r, "reference"), adminUsername(ctx))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type rejectReq struct {
	Reason string `json:"reason"`
}

func (h *Handler) rejectOrder(w http.ResponseWriter, r *http.Request) {
	var req rejectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	o, err := h.service.Reject(r.Context(), chi.URLParam(r, "reference"), adminUsername(r.Context()), req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) clearOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearAll(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listPricing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.prices.Current().Overrides())
}

type setPriceReq struct {
	Price int64 `json:"price"`
}

func (h *Handler) setPrice(w http.ResponseWriter, r *http.Request) {
	var req setPriceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Price <= 0 {
		http.Error(w, "price must be positive", http.StatusBadRequest)
		return
	}

	provider := chi.URLParam(r, "provider")
	product := chi.URLParam(r, "product")
	h.prices.SetPrice(provider, product, req.Price)
	h.log.Info("price override set", "provider", provider, "product", product, "price", req.Price, "by", adminUsername(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

type sessionKey struct{}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "missing session token", http.StatusUnauthorized)
			return
		}
		sess, err := h.gate.Validate(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid or expired session", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func adminUsername(ctx context.Context) string {
	if sess, ok := ctx.Value(sessionKey{}).(auth.Session); ok {
		return sess.Username
	}
	return ""
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return r.Header.Get("X-Admin-Token")
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrNotFound), errors.Is(err, auth.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrProductCodeRequired),
		errors.Is(err, domain.ErrBuyerIDRequired),
		errors.Is(err, domain.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		h.log.Error("request failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
