package coupon

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"matjarna/db"
	"matjarna/models"
	"matjarna/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FindByCode looks a coupon up by its normalized code.
func FindByCode(ctx context.Context, code string) (models.Coupon, error) {
	var c models.Coupon
	err := db.CouponsCollection.FindOne(ctx, bson.M{"code": normalizeCode(code)}).Decode(&c)
	return c, err
}

// ValidateHandler re-checks a code against a live subtotal; the storefront
// calls this when the shopper applies a coupon, and checkout calls Validate
// again at submit time.
func ValidateHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req struct {
		Code     string `json:"code"`
		Subtotal int64  `json:"subtotal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON payload")
		return
	}
	if normalizeCode(req.Code) == "" {
		utils.RespondWithJSON(w, http.StatusOK, Result{Reason: ReasonNotFound})
		return
	}

	c, err := FindByCode(ctx, req.Code)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithJSON(w, http.StatusOK, Result{Reason: ReasonNotFound})
		return
	}
	if err != nil {
		log.Println("coupon lookup error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Coupon lookup failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, Validate(c, req.Subtotal, time.Now()))
}

// --- Admin CRUD ---

var codePattern = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

func decodeCoupon(r *http.Request) (models.Coupon, string) {
	var c models.Coupon
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		return c, "Invalid JSON payload"
	}
	c.Code = normalizeCode(c.Code)
	if !codePattern.MatchString(c.Code) {
		return c, "Code must be 3-20 uppercase letters and digits"
	}
	if c.Type != models.CouponPercent && c.Type != models.CouponFixed {
		return c, "Type must be percent or fixed"
	}
	if c.Value <= 0 {
		return c, "Value must be positive"
	}
	if c.MinOrder < 0 || c.MaxUses < 0 {
		return c, "Limits cannot be negative"
	}
	return c, ""
}

func CreateCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	c, problem := decodeCoupon(r)
	if problem != "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", problem)
		return
	}

	// codes are unique, case-insensitively
	if _, err := FindByCode(ctx, c.Code); err == nil {
		utils.RespondWithErrorCode(w, http.StatusConflict, "DUPLICATE_CODE", "A coupon with this code already exists")
		return
	}

	c.CouponID = utils.GenerateID(14)
	c.UsedCount = 0
	c.CreatedAt = time.Now()
	if _, err := db.CouponsCollection.InsertOne(ctx, c); err != nil {
		log.Println("coupon insert error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to create coupon")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, c)
}

func GetCoupons(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.CouponsCollection.Find(ctx, bson.M{})
	if err != nil {
		log.Println("coupon list error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to fetch coupons")
		return
	}
	defer cursor.Close(ctx)

	coupons := []models.Coupon{}
	if err := cursor.All(ctx, &coupons); err != nil {
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Error reading coupons")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, coupons)
}

func UpdateCoupon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	c, problem := decodeCoupon(r)
	if problem != "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", problem)
		return
	}

	update := bson.M{"$set": bson.M{
		"code":       c.Code,
		"type":       c.Type,
		"value":      c.Value,
		"min_order":  c.MinOrder,
		"max_uses":   c.MaxUses,
		"start_date": c.StartDate,
		"end_date":   c.EndDate,
		"is_active":  c.IsActive,
	}}
	res, err := db.CouponsCollection.UpdateOne(ctx, bson.M{"couponid": ps.ByName("couponId")}, update)
	if err != nil {
		log.Println("coupon update error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to update coupon")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Coupon not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func DeleteCoupon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.CouponsCollection.DeleteOne(ctx, bson.M{"couponid": ps.ByName("couponId")})
	if err != nil {
		log.Println("coupon delete error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to delete coupon")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Coupon not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
