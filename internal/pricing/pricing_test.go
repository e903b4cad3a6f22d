package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOverrideWinsRegardlessOfBasePrice(t *testing.T) {
	r := NewResolver(DefaultTable())

	for _, base := range []int64{0, 1, 1900, 2000, 999999} {
		assert.Equal(t, int64(2000), r.Resolve("mobile-legends", "ml-5-diamond", base))
	}
	assert.Equal(t, int64(950000), r.Resolve("valorant", "val-8150-vp", 123))
}

func TestResolveFallbackAddsOneUnit(t *testing.T) {
	r := NewResolver(DefaultTable())

	assert.Equal(t, int64(10001), r.Resolve("unknown-provider", "unknown-product", 10000))
	assert.Equal(t, int64(10001), r.Resolve("mobile-legends", "ml-9999-diamond", 10000))
	assert.Equal(t, int64(1), r.Resolve("x", "y", 0))
}

func TestWithPriceLeavesReceiverUntouched(t *testing.T) {
	base := NewResolver(Table{"mobile-legends": {"ml-5-diamond": 2000}})
	updated := base.WithPrice("mobile-legends", "ml-5-diamond", 2500)

	assert.Equal(t, int64(2000), base.Resolve("mobile-legends", "ml-5-diamond", 100))
	assert.Equal(t, int64(2500), updated.Resolve("mobile-legends", "ml-5-diamond", 100))
}

func TestWithPriceAddsNewProvider(t *testing.T) {
	base := NewResolver(nil)
	updated := base.WithPrice("free-fire", "ff-20-diamond", 3500)

	assert.Equal(t, int64(3500), updated.Resolve("free-fire", "ff-20-diamond", 1))
	assert.Equal(t, int64(2), base.Resolve("free-fire", "ff-20-diamond", 1))
}

func TestNewResolverCopiesTable(t *testing.T) {
	table := Table{"mobile-legends": {"ml-5-diamond": 2000}}
	r := NewResolver(table)
	table["mobile-legends"]["ml-5-diamond"] = 9999

	assert.Equal(t, int64(2000), r.Resolve("mobile-legends", "ml-5-diamond", 0))
}
