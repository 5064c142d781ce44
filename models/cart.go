package models

import "time"

// CartItem is one line of a session cart. Two additions of the same product
// with identical selected options merge by summing quantity.
type CartItem struct {
	ItemID          string            `bson:"itemid" json:"id"`
	ProductID       string            `bson:"productid" json:"product_id"`
	VariantID       string            `bson:"variant_id,omitempty" json:"variant_id,omitempty"`
	Quantity        int               `bson:"quantity" json:"quantity"`
	SelectedOptions map[string]string `bson:"selected_options,omitempty" json:"selected_options,omitempty"`
	Product         Product           `bson:"product" json:"product"`
	AddedAt         time.Time         `bson:"added_at" json:"added_at"`
}

// AbandonedCart is a session-scoped snapshot of in-progress checkout contact
// info plus cart contents, upserted while the user types and deleted once the
// checkout succeeds.
type AbandonedCart struct {
	SessionID     string     `bson:"sessionid" json:"session_id"`
	CustomerName  string     `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	CustomerPhone string     `bson:"customer_phone,omitempty" json:"customer_phone,omitempty"`
	WilayaCode    string     `bson:"wilaya_code,omitempty" json:"wilaya_code,omitempty"`
	Address       string     `bson:"address,omitempty" json:"address,omitempty"`
	Items         []CartItem `bson:"items" json:"items"`
	Subtotal      int64      `bson:"subtotal" json:"subtotal"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updated_at"`
}
