package checkout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validForm() Form {
	return Form{
		CustomerName:  "Amine Benali",
		CustomerPhone: "0551234567",
		WilayaCode:    "16",
		Address:       "Cite 200 logements, Bab Ezzouar, Alger",
		DeliveryType:  "home",
	}
}

func TestValidateFormAccepts(t *testing.T) {
	assert.Empty(t, ValidateForm(validForm()))
}

func TestValidateFormName(t *testing.T) {
	f := validForm()
	f.CustomerName = "Ab"
	errs := ValidateForm(f)
	assert.Contains(t, errs, "customer_name")

	f.CustomerName = strings.Repeat("a", 101)
	errs = ValidateForm(f)
	assert.Contains(t, errs, "customer_name")

	f.CustomerName = ""
	errs = ValidateForm(f)
	assert.Contains(t, errs, "customer_name")
}

func TestValidateFormPhone(t *testing.T) {
	cases := []struct {
		phone string
		ok    bool
	}{
		{"0551234567", true},
		{"0661234567", true},
		{"0771234567", true},
		{"0451234567", false}, // bad prefix
		{"055123456", false},  // too short
		{"05512345678", false},
		{"+213551234567", false},
		{"", false},
	}
	for _, tc := range cases {
		f := validForm()
		f.CustomerPhone = tc.phone
		errs := ValidateForm(f)
		if tc.ok {
			assert.NotContains(t, errs, "customer_phone", "phone %q", tc.phone)
		} else {
			assert.Contains(t, errs, "customer_phone", "phone %q", tc.phone)
		}
	}
}

func TestValidateFormAddress(t *testing.T) {
	f := validForm()
	f.Address = "short"
	assert.Contains(t, ValidateForm(f), "address")

	f.Address = strings.Repeat("a", 501)
	assert.Contains(t, ValidateForm(f), "address")
}

func TestValidateFormWilayaAndDelivery(t *testing.T) {
	f := validForm()
	f.WilayaCode = ""
	assert.Contains(t, ValidateForm(f), "wilaya_code")

	f = validForm()
	f.DeliveryType = "drone"
	assert.Contains(t, ValidateForm(f), "delivery_type")

	f.DeliveryType = "office"
	assert.NotContains(t, ValidateForm(f), "delivery_type")
}

func TestValidateFormNote(t *testing.T) {
	f := validForm()
	f.Note = strings.Repeat("n", 500)
	assert.NotContains(t, ValidateForm(f), "note")

	f.Note = strings.Repeat("n", 501)
	assert.Contains(t, ValidateForm(f), "note")
}

func TestOrderTotal(t *testing.T) {
	assert.Equal(t, int64(2800), OrderTotal(2400, 0, 400))
	assert.Equal(t, int64(2440), OrderTotal(2400, 360, 400))
	// discount can never drive the total below the shipping-free floor
	assert.Equal(t, int64(0), OrderTotal(100, 500, 0))
}
