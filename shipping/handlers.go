package shipping

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"matjarna/db"
	"matjarna/models"
	"matjarna/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetRates lists active shipping rates for the storefront checkout form.
func GetRates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rates, err := ActiveRates(r.Context())
	if err != nil {
		log.Println("shipping rates fetch error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch shipping rates")
		return
	}
	if rates == nil {
		rates = []models.ShippingRate{}
	}
	utils.RespondWithJSON(w, http.StatusOK, rates)
}

// --- Admin CRUD ---

func decodeRate(r *http.Request) (models.ShippingRate, string) {
	var rate models.ShippingRate
	if err := json.NewDecoder(r.Body).Decode(&rate); err != nil {
		return rate, "Invalid JSON payload"
	}
	if rate.WilayaCode == "" || len(rate.WilayaCode) > 2 {
		return rate, "Wilaya code must be 1-2 characters"
	}
	if len(rate.WilayaName) < 2 {
		return rate, "Wilaya name is required"
	}
	if rate.OfficePrice < 0 || rate.HomePrice < 0 {
		return rate, "Prices cannot be negative"
	}
	return rate, ""
}

func CreateRate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rate, problem := decodeRate(r)
	if problem != "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", problem)
		return
	}

	// one row per wilaya
	count, err := db.ShippingRatesCollection.CountDocuments(ctx, bson.M{"wilaya_code": rate.WilayaCode})
	if err == nil && count > 0 {
		utils.RespondWithErrorCode(w, http.StatusConflict, "DUPLICATE_WILAYA", "A rate for this wilaya already exists")
		return
	}

	rate.RateID = utils.GenerateID(14)
	if _, err := db.ShippingRatesCollection.InsertOne(ctx, rate); err != nil {
		log.Println("shipping rate insert error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to create shipping rate")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, rate)
}

// GetAllRates lists every rate, inactive ones included, for the admin table.
func GetAllRates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"wilaya_code": 1})
	cursor, err := db.ShippingRatesCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Println("shipping rate list error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to fetch shipping rates")
		return
	}
	defer cursor.Close(ctx)

	rates := []models.ShippingRate{}
	if err := cursor.All(ctx, &rates); err != nil {
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Error reading shipping rates")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, rates)
}

func UpdateRate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rate, problem := decodeRate(r)
	if problem != "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", problem)
		return
	}

	update := bson.M{"$set": bson.M{
		"wilaya_code":  rate.WilayaCode,
		"wilaya_name":  rate.WilayaName,
		"office_price": rate.OfficePrice,
		"home_price":   rate.HomePrice,
		"is_active":    rate.IsActive,
	}}
	res, err := db.ShippingRatesCollection.UpdateOne(ctx, bson.M{"rateid": ps.ByName("rateId")}, update)
	if err != nil {
		log.Println("shipping rate update error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to update shipping rate")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Shipping rate not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func DeleteRate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.ShippingRatesCollection.DeleteOne(ctx, bson.M{"rateid": ps.ByName("rateId")})
	if err != nil {
		log.Println("shipping rate delete error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to delete shipping rate")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Shipping rate not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
