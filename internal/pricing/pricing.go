package pricing

// Table holds pre-computed sale prices keyed by provider code, then product
// code. Overrides are absolute prices, not multipliers.
type Table map[string]map[string]int64

// Resolver answers the price displayed to buyers. It is immutable after
// construction; price changes go through WithPrice, which produces a new
// resolver.
type Resolver struct {
	overrides Table
}

func NewResolver(overrides Table) *Resolver {
	copied := make(Table, len(overrides))
	for provider, products := range overrides {
		inner := make(map[string]int64, len(products))
		for code, price := range products {
			inner[code] = price
		}
		copied[provider] = inner
	}
	return &Resolver{overrides: copied}
}

// Resolve returns the override price for (provider, product) when one exists,
// otherwise the upstream base price plus a fixed one-unit markup. A prior
// percentage-markup scheme is intentionally gone.
func (r *Resolver) Resolve(provider, product string, basePrice int64) int64 {
	if products, ok := r.overrides[provider]; ok {
		if price, ok := products[product]; ok {
			return price
		}
	}
	return basePrice + 1
}

// WithPrice returns a new resolver with one override added or replaced. The
// receiver is left untouched.
func (r *Resolver) WithPrice(provider, product string, price int64) *Resolver {
	next := NewResolver(r.overrides)
	if _, ok := next.overrides[provider]; !ok {
		next.overrides[provider] = make(map[string]int64, 1)
	}
	next.overrides[provider][product] = price
	return next
}

// Overrides returns a copy of the table, for the admin pricing view.
func (r *Resolver) Overrides() Table {
	return NewResolver(r.overrides).overrides
}
