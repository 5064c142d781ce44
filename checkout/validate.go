package checkout

import (
	"regexp"

	"matjarna/shipping"
)

// Form is the structural checkout payload, validated before any network call.
type Form struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	WilayaCode    string `json:"wilaya_code"`
	Address       string `json:"address"`
	DeliveryType  string `json:"delivery_type"`
	Note          string `json:"note"`
	CouponCode    string `json:"coupon_code"`
}

// Algerian mobile numbers: 0 then 5/6/7 then 8 digits.
var phonePattern = regexp.MustCompile(`^0(5|6|7)[0-9]{8}$`)

// ValidateForm returns field-level error messages; an empty map means the
// form is structurally valid.
func ValidateForm(f Form) map[string]string {
	errs := make(map[string]string)

	if n := len([]rune(f.CustomerName)); n < 3 {
		errs["customer_name"] = "Name must be at least 3 characters"
	} else if n > 100 {
		errs["customer_name"] = "Name is too long"
	}

	if !phonePattern.MatchString(f.CustomerPhone) {
		errs["customer_phone"] = "Invalid phone number (e.g. 0551234567)"
	}

	if f.WilayaCode == "" {
		errs["wilaya_code"] = "Please select a wilaya"
	}

	if n := len([]rune(f.Address)); n < 10 {
		errs["address"] = "Address must be at least 10 characters"
	} else if n > 500 {
		errs["address"] = "Address is too long"
	}

	if !shipping.ValidMethod(f.DeliveryType) {
		errs["delivery_type"] = "Please choose a delivery method"
	}

	if len([]rune(f.Note)) > 500 {
		errs["note"] = "Note is too long"
	}

	return errs
}

// OrderTotal computes subtotal − discount + shippingCost, floored at zero.
func OrderTotal(subtotal, discount, shippingCost int64) int64 {
	total := subtotal - discount + shippingCost
	if total < 0 {
		total = 0
	}
	return total
}
