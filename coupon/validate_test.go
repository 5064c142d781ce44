package coupon

import (
	"testing"
	"time"

	"matjarna/models"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func activePercent(value int64, minOrder int64) models.Coupon {
	return models.Coupon{Code: "SAVE", Type: models.CouponPercent, Value: value, MinOrder: minOrder, IsActive: true}
}

func TestPercentCoupon(t *testing.T) {
	// type=percent, value=20, min_order=1000 against subtotal 2400 -> 480
	res := Validate(activePercent(20, 1000), 2400, now)
	assert.True(t, res.Applicable)
	assert.Equal(t, int64(480), res.Discount)
}

func TestBelowMinOrder(t *testing.T) {
	res := Validate(activePercent(20, 1000), 900, now)
	assert.False(t, res.Applicable)
	assert.Equal(t, ReasonBelowMinOrder, res.Reason)
}

func TestInactive(t *testing.T) {
	c := activePercent(20, 0)
	c.IsActive = false
	res := Validate(c, 2400, now)
	assert.False(t, res.Applicable)
	assert.Equal(t, ReasonInactive, res.Reason)
}

func TestUsageExhausted(t *testing.T) {
	c := activePercent(20, 0)
	c.MaxUses = 5
	c.UsedCount = 5
	res := Validate(c, 2400, now)
	assert.Equal(t, ReasonExhausted, res.Reason)

	c.UsedCount = 4
	assert.True(t, Validate(c, 2400, now).Applicable)
}

func TestDateWindow(t *testing.T) {
	start := now.Add(time.Hour)
	c := activePercent(20, 0)
	c.StartDate = &start
	res := Validate(c, 2400, now)
	assert.Equal(t, ReasonNotStarted, res.Reason)

	// end date boundary is inclusive: end == now still applies
	end := now
	c = activePercent(20, 0)
	c.EndDate = &end
	assert.True(t, Validate(c, 2400, now).Applicable)

	// one tick past the end date does not
	past := now.Add(-time.Nanosecond)
	c.EndDate = &past
	res = Validate(c, 2400, now)
	assert.False(t, res.Applicable)
	assert.Equal(t, ReasonExpired, res.Reason)
}

func TestDiscountClamping(t *testing.T) {
	// percentage above 100 never exceeds subtotal
	res := Validate(activePercent(150, 0), 2000, now)
	assert.True(t, res.Applicable)
	assert.Equal(t, int64(2000), res.Discount)

	// fixed value above subtotal clamps to subtotal
	fixed := models.Coupon{Code: "F", Type: models.CouponFixed, Value: 5000, IsActive: true}
	res = Validate(fixed, 2000, now)
	assert.Equal(t, int64(2000), res.Discount)

	// never negative
	res = Validate(activePercent(20, 0), 0, now)
	assert.Equal(t, int64(0), res.Discount)
}

func TestPercentDiscountFloors(t *testing.T) {
	// 15% of 999 = 149.85 -> 149
	res := Validate(activePercent(15, 0), 999, now)
	assert.Equal(t, int64(149), res.Discount)
}
