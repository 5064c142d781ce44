// Package coupon decides coupon applicability and computes discount amounts.
package coupon

import (
	"context"
	"time"

	"matjarna/db"
	"matjarna/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Reasons a coupon is not applicable.
const (
	ReasonInactive      = "INACTIVE"
	ReasonBelowMinOrder = "BELOW_MIN_ORDER"
	ReasonExhausted     = "USAGE_EXHAUSTED"
	ReasonNotStarted    = "NOT_YET_STARTED"
	ReasonExpired       = "EXPIRED"
	ReasonNotFound      = "NOT_FOUND"
)

type Result struct {
	Applicable bool   `json:"applicable"`
	Discount   int64  `json:"discount,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Validate decides applicability of c against the given subtotal at time now.
// The end-date boundary is inclusive: a coupon whose end date equals now is
// still applicable. Discount is clamped to [0, subtotal].
//
// Callers must re-validate at checkout time even if the coupon was applied
// earlier in the session; time, usage count and subtotal may all have moved.
func Validate(c models.Coupon, subtotal int64, now time.Time) Result {
	if !c.IsActive {
		return Result{Reason: ReasonInactive}
	}
	if c.MinOrder > 0 && subtotal < c.MinOrder {
		return Result{Reason: ReasonBelowMinOrder}
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return Result{Reason: ReasonExhausted}
	}
	if c.StartDate != nil && now.Before(*c.StartDate) {
		return Result{Reason: ReasonNotStarted}
	}
	if c.EndDate != nil && now.After(*c.EndDate) {
		return Result{Reason: ReasonExpired}
	}

	var discount int64
	switch c.Type {
	case models.CouponPercent:
		discount = subtotal * c.Value / 100
	case models.CouponFixed:
		discount = c.Value
	}
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}
	return Result{Applicable: true, Discount: discount}
}

// IncrementUsage bumps the running used-count after an order actually applied
// the coupon.
func IncrementUsage(ctx context.Context, code string) error {
	_, err := db.CouponsCollection.UpdateOne(ctx,
		bson.M{"code": normalizeCode(code)},
		bson.M{"$inc": bson.M{"used_count": 1}},
	)
	return err
}
