package pricing

import (
	"testing"

	"matjarna/models"

	"github.com/stretchr/testify/assert"
)

func price(v int64) *int64 { return &v }

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name string
		p    models.Product
		want int64
	}{
		{"no sale price", models.Product{Price: 1000}, 1000},
		{"sale below list", models.Product{Price: 1000, SalePrice: price(800)}, 800},
		{"sale equal to list is no discount", models.Product{Price: 1000, SalePrice: price(1000)}, 1000},
		{"sale above list is no discount", models.Product{Price: 1000, SalePrice: price(1200)}, 1000},
		{"zero sale price wins", models.Product{Price: 1000, SalePrice: price(0)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectivePrice(tt.p))
		})
	}
}

func TestDiscountPercent(t *testing.T) {
	assert.Equal(t, 20, DiscountPercent(1000, 800))
	assert.Equal(t, 0, DiscountPercent(1000, 1000))
	assert.Equal(t, 0, DiscountPercent(0, 0))
	assert.Equal(t, 0, DiscountPercent(1000, 1200))
	assert.Equal(t, 33, DiscountPercent(3000, 2000))
	assert.Equal(t, 100, DiscountPercent(500, 0))
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, int64(2400), LineTotal(800, 3))
	assert.Equal(t, int64(0), LineTotal(800, 0))
}

func TestDiscountedPrice(t *testing.T) {
	assert.Equal(t, int64(800), DiscountedPrice(1000, 20))
	assert.Equal(t, int64(1000), DiscountedPrice(1000, 0))
	assert.Equal(t, int64(0), DiscountedPrice(1000, 100))
	assert.Equal(t, int64(0), DiscountedPrice(1000, 150))
	// floor semantics: 999 * 0.9 = 899.1 -> 899
	assert.Equal(t, int64(899), DiscountedPrice(999, 10))
}
