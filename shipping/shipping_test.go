package shipping

import (
	"testing"

	"matjarna/models"

	"github.com/stretchr/testify/assert"
)

var rates = []models.ShippingRate{
	{WilayaCode: "16", WilayaName: "Alger", OfficePrice: 400, HomePrice: 600, IsActive: true},
	{WilayaCode: "31", WilayaName: "Oran", OfficePrice: 500, HomePrice: 800, IsActive: true},
	{WilayaCode: "42", WilayaName: "Tipaza", OfficePrice: 450, HomePrice: 700, IsActive: false},
}

func TestResolve(t *testing.T) {
	price, ok := Resolve(rates, "16", MethodHome)
	assert.True(t, ok)
	assert.Equal(t, int64(600), price)

	price, ok = Resolve(rates, "16", MethodOffice)
	assert.True(t, ok)
	assert.Equal(t, int64(400), price)
}

func TestResolveUnknownRegionUnresolved(t *testing.T) {
	_, ok := Resolve(rates, "99", MethodHome)
	assert.False(t, ok)
}

func TestResolveInactiveRateUnresolved(t *testing.T) {
	_, ok := Resolve(rates, "42", MethodOffice)
	assert.False(t, ok)
}

func TestValidMethod(t *testing.T) {
	assert.True(t, ValidMethod("office"))
	assert.True(t, ValidMethod("home"))
	assert.False(t, ValidMethod("drone"))
	assert.False(t, ValidMethod(""))
}
