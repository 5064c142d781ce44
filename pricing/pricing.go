// Package pricing holds the pure price arithmetic shared by the cart,
// coupon, upsell and checkout packages. All amounts are whole DZD.
package pricing

import "matjarna/models"

// EffectivePrice returns the sale price when one is set and strictly lower
// than the list price, else the list price. A sale price at or above the
// list price is treated as no discount.
func EffectivePrice(p models.Product) int64 {
	if p.SalePrice != nil && *p.SalePrice < p.Price {
		return *p.SalePrice
	}
	return p.Price
}

// DiscountPercent returns the rounded percentage saved off the list price.
// Returns 0 when there is no discount or the list price is 0.
func DiscountPercent(listPrice, effectivePrice int64) int {
	if listPrice <= 0 || effectivePrice >= listPrice {
		return 0
	}
	return int(((listPrice-effectivePrice)*100 + listPrice/2) / listPrice)
}

// LineTotal is the contribution of one cart line.
func LineTotal(effectivePrice int64, quantity int) int64 {
	return effectivePrice * int64(quantity)
}

// DiscountedPrice applies a presentation-only percentage discount,
// flooring the result as the storefront does.
func DiscountedPrice(effectivePrice int64, percent int) int64 {
	if percent <= 0 {
		return effectivePrice
	}
	if percent >= 100 {
		return 0
	}
	return effectivePrice * int64(100-percent) / 100
}
