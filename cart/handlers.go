package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"matjarna/db"
	"matjarna/models"
	"matjarna/pricing"
	"matjarna/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// sessionStore loads the cart store for the request's session, or writes the
// error response and returns false.
func sessionStore(w http.ResponseWriter, r *http.Request) (*Store, string, bool) {
	sessionID := utils.SessionID(r)
	if sessionID == "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Missing X-Session-ID header")
		return nil, "", false
	}
	store, err := NewStore(r.Context(), sessionID, NewRedisPersister())
	if err != nil {
		log.Println("cart load error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not load cart")
		return nil, "", false
	}
	return store, sessionID, true
}

func cartView(s *Store) utils.M {
	return utils.M{
		"items":       s.Items(),
		"coupon_code": s.CouponCode(),
		"subtotal":    s.Subtotal(),
		"item_count":  s.ItemCount(),
	}
}

// GetCart returns the session's cart with derived totals.
func GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	store, _, ok := sessionStore(w, r)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cartView(store))
}

// ruleDiscounts reports whether a rule's discount covers the product. A rule
// only ever discounts the products it targets, so citing an unrelated rule id
// buys nothing.
func ruleDiscounts(rule models.UpsellRule, productID string) bool {
	if !rule.IsActive || rule.DiscountPercent <= 0 {
		return false
	}
	for _, id := range rule.TargetProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// AddToCart inserts or merges a line. When the addition comes from an upsell
// widget the rule's discount overrides the snapshot's sale price for this
// line only; the stored product is never mutated.
func AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		ProductID       string            `json:"product_id"`
		Quantity        int               `json:"quantity"`
		SelectedOptions map[string]string `json:"selected_options"`
		VariantID       string            `json:"variant_id"`
		UpsellRuleID    string            `json:"upsell_rule_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON payload")
		return
	}
	if payload.ProductID == "" || payload.Quantity < 1 {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Missing or invalid fields")
		return
	}

	store, _, ok := sessionStore(w, r)
	if !ok {
		return
	}

	var product models.Product
	err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": payload.ProductID, "is_published": true}).Decode(&product)
	if err != nil {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}
	if product.Stock < 1 {
		// business-rule rejection, not an exception
		utils.RespondWithErrorCode(w, http.StatusConflict, "OUT_OF_STOCK", "Product is out of stock")
		return
	}

	if payload.UpsellRuleID != "" {
		var rule models.UpsellRule
		err := db.UpsellRulesCollection.FindOne(ctx, bson.M{"ruleid": payload.UpsellRuleID, "is_active": true}).Decode(&rule)
		if err == nil && ruleDiscounts(rule, payload.ProductID) {
			offered := pricing.DiscountedPrice(pricing.EffectivePrice(product), rule.DiscountPercent)
			product.SalePrice = &offered
		}
	}

	if err := store.AddItem(ctx, product, payload.Quantity, payload.SelectedOptions, payload.VariantID); err != nil {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, cartView(store))
}

// UpdateCartItem replaces a line quantity; zero or below removes the line.
func UpdateCartItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var payload struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON payload")
		return
	}

	store, _, ok := sessionStore(w, r)
	if !ok {
		return
	}
	if err := store.UpdateQuantity(r.Context(), ps.ByName("itemId"), payload.Quantity); err != nil {
		log.Println("cart update error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not update cart")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cartView(store))
}

func RemoveCartItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	store, _, ok := sessionStore(w, r)
	if !ok {
		return
	}
	if err := store.RemoveItem(r.Context(), ps.ByName("itemId")); err != nil {
		log.Println("cart remove error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not update cart")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cartView(store))
}

// ApplyCoupon stores the code on the cart; applicability is decided at
// checkout against the live subtotal.
func ApplyCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Code == "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Coupon code is required")
		return
	}

	store, _, ok := sessionStore(w, r)
	if !ok {
		return
	}
	if err := store.ApplyCoupon(r.Context(), payload.Code); err != nil {
		log.Println("cart coupon error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not update cart")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cartView(store))
}

func RemoveCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	store, _, ok := sessionStore(w, r)
	if !ok {
		return
	}
	if err := store.RemoveCoupon(r.Context()); err != nil {
		log.Println("cart coupon error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not update cart")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cartView(store))
}

func ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	store, _, ok := sessionStore(w, r)
	if !ok {
		return
	}
	if err := store.Clear(r.Context()); err != nil {
		log.Println("cart clear error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not clear cart")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cartView(store))
}
