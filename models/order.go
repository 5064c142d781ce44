package models

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderReturned   OrderStatus = "returned"
)

// ValidOrderStatus reports whether s is one of the fixed status enumeration.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped,
		OrderDelivered, OrderCancelled, OrderReturned:
		return true
	}
	return false
}

// StatusHistoryEntry is append-only; status changes never overwrite history.
type StatusHistoryEntry struct {
	Status    OrderStatus `bson:"status" json:"status"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
	Note      string      `bson:"note,omitempty" json:"note,omitempty"`
}

type Order struct {
	OrderID       string               `bson:"orderid" json:"id"`
	OrderNumber   string               `bson:"order_number" json:"order_number"`
	CustomerName  string               `bson:"customer_name" json:"customer_name"`
	CustomerPhone string               `bson:"customer_phone" json:"customer_phone"`
	WilayaCode    string               `bson:"wilaya_code" json:"wilaya_code"`
	WilayaName    string               `bson:"wilaya_name" json:"wilaya_name"`
	Address       string               `bson:"address" json:"address"`
	DeliveryType  string               `bson:"delivery_type" json:"delivery_type"` // office | home
	Note          string               `bson:"note,omitempty" json:"note,omitempty"`
	Subtotal      int64                `bson:"subtotal" json:"subtotal"`
	Shipping      int64                `bson:"shipping" json:"shipping"`
	Discount      int64                `bson:"discount" json:"discount"`
	Total         int64                `bson:"total" json:"total"`
	CouponCode    string               `bson:"coupon_code,omitempty" json:"coupon_code,omitempty"`
	Status        OrderStatus          `bson:"status" json:"status"`
	StatusHistory []StatusHistoryEntry `bson:"status_history" json:"status_history"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`
}

// OrderItem snapshots product name/image/price at purchase time; later product
// mutations must not change historical order data.
type OrderItem struct {
	OrderItemID     string            `bson:"orderitemid" json:"id"`
	OrderID         string            `bson:"orderid" json:"order_id"`
	ProductID       string            `bson:"productid" json:"product_id"`
	ProductName     string            `bson:"product_name" json:"product_name"`
	ProductImage    string            `bson:"product_image,omitempty" json:"product_image,omitempty"`
	VariantID       string            `bson:"variant_id,omitempty" json:"variant_id,omitempty"`
	SelectedOptions map[string]string `bson:"selected_options,omitempty" json:"selected_options,omitempty"`
	Quantity        int               `bson:"quantity" json:"quantity"`
	Price           int64             `bson:"price" json:"price"`
	Total           int64             `bson:"total" json:"total"`
	CreatedAt       time.Time         `bson:"created_at" json:"created_at"`
}
