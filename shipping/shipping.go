// Package shipping maps (wilaya code, delivery method) to a delivery price.
package shipping

import (
	"context"
	"time"

	"matjarna/db"
	"matjarna/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MethodOffice = "office"
	MethodHome   = "home"
)

func ValidMethod(m string) bool {
	return m == MethodOffice || m == MethodHome
}

// Resolve returns the price for the matching active rate and method. The
// second return is false when no active rate matches; callers must treat that
// as "cannot compute total yet" and block order submission rather than
// silently charging zero.
func Resolve(rates []models.ShippingRate, wilayaCode, method string) (int64, bool) {
	for _, rate := range rates {
		if !rate.IsActive || rate.WilayaCode != wilayaCode {
			continue
		}
		if method == MethodHome {
			return rate.HomePrice, true
		}
		return rate.OfficePrice, true
	}
	return 0, false
}

// ActiveRates fetches the active rate table ordered by wilaya code.
func ActiveRates(ctx context.Context) ([]models.ShippingRate, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"wilaya_code": 1})
	cursor, err := db.ShippingRatesCollection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rates []models.ShippingRate
	if err := cursor.All(ctx, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}
