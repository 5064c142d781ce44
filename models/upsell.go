package models

import "time"

// Display locations an upsell rule can target.
const (
	LocationProductPage  = "product_page"
	LocationCart         = "cart"
	LocationCheckout     = "checkout"
	LocationOrderSuccess = "order_success"
)

func ValidDisplayLocation(loc string) bool {
	switch loc {
	case LocationProductPage, LocationCart, LocationCheckout, LocationOrderSuccess:
		return true
	}
	return false
}

// UpsellRule is admin-owned and read-only to the storefront evaluator.
// Type is presentational only; it does not change the computation.
type UpsellRule struct {
	RuleID           string    `bson:"ruleid" json:"id"`
	Name             string    `bson:"name" json:"name"`
	Type             string    `bson:"type" json:"type"`                 // upsell | downsell | cross_sell
	TriggerType      string    `bson:"trigger_type" json:"trigger_type"` // product | category | cart_total
	TriggerID        string    `bson:"trigger_id,omitempty" json:"trigger_id,omitempty"`
	TriggerMinAmount int64     `bson:"trigger_min_amount,omitempty" json:"trigger_min_amount,omitempty"`
	TargetProductIDs []string  `bson:"target_product_ids" json:"target_product_ids"`
	DisplayLocation  string    `bson:"display_location" json:"display_location"`
	DiscountPercent  int       `bson:"discount_percent,omitempty" json:"discount_percent,omitempty"`
	Message          string    `bson:"message,omitempty" json:"message,omitempty"`
	IsActive         bool      `bson:"is_active" json:"is_active"`
	Priority         int       `bson:"priority" json:"priority"` // lower evaluates first
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}

type Review struct {
	ReviewID     string    `bson:"reviewid" json:"id"`
	ProductID    string    `bson:"productid" json:"product_id"`
	CustomerName string    `bson:"customer_name" json:"customer_name"`
	Rating       int       `bson:"rating" json:"rating"`
	Text         string    `bson:"text" json:"text"`
	Status       string    `bson:"status" json:"status"` // pending | approved | rejected | hidden
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

type AdminUser struct {
	UserID       string    `bson:"userid" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	Role         string    `bson:"role" json:"role"` // admin | super_admin
	PasswordHash string    `bson:"password_hash" json:"-"`
	RefreshHash   string    `bson:"refresh_hash,omitempty" json:"-"`
	RefreshExpiry time.Time `bson:"refresh_expiry,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
