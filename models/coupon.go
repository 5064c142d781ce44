package models

import "time"

type CouponType string

const (
	CouponPercent CouponType = "percent"
	CouponFixed   CouponType = "fixed"
)

// Coupon codes are unique and compared case-insensitively; they are
// upper-cased before storage and lookup.
type Coupon struct {
	CouponID  string     `bson:"couponid" json:"id"`
	Code      string     `bson:"code" json:"code"`
	Type      CouponType `bson:"type" json:"type"`
	Value     int64      `bson:"value" json:"value"`
	MinOrder  int64      `bson:"min_order,omitempty" json:"min_order,omitempty"`
	MaxUses   int        `bson:"max_uses,omitempty" json:"max_uses,omitempty"`
	UsedCount int        `bson:"used_count" json:"used_count"`
	StartDate *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate   *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`
	IsActive  bool       `bson:"is_active" json:"is_active"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

type ShippingRate struct {
	RateID      string `bson:"rateid" json:"id"`
	WilayaCode  string `bson:"wilaya_code" json:"wilaya_code"`
	WilayaName  string `bson:"wilaya_name" json:"wilaya_name"`
	OfficePrice int64  `bson:"office_price" json:"office_price"`
	HomePrice   int64  `bson:"home_price" json:"home_price"`
	IsActive    bool   `bson:"is_active" json:"is_active"`
}
