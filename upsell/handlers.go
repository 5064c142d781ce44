package upsell

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"matjarna/db"
	"matjarna/models"
	"matjarna/rdx"
	"matjarna/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EvaluateHandler runs the engine for one display location and the caller's
// context. Query params: location (required), product_id, category_id,
// cart_total. Responds 200 with either {"offer": ...} or {"offer": null}.
func EvaluateHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	location := r.URL.Query().Get("location")
	if !models.ValidDisplayLocation(location) {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid display location")
		return
	}

	cartTotal, _ := strconv.ParseInt(r.URL.Query().Get("cart_total"), 10, 64)
	evalCtx := Context{
		ProductID:  r.URL.Query().Get("product_id"),
		CategoryID: r.URL.Query().Get("category_id"),
		CartTotal:  cartTotal,
	}

	rulesOpts := options.Find().SetSort(bson.M{"priority": 1})
	cursor, err := db.UpsellRulesCollection.Find(ctx, bson.M{"is_active": true, "display_location": location}, rulesOpts)
	if err != nil {
		log.Println("upsell rules fetch error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch upsell rules")
		return
	}
	defer cursor.Close(ctx)

	var rules []models.UpsellRule
	if err := cursor.All(ctx, &rules); err != nil {
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Error reading upsell rules")
		return
	}
	if len(rules) == 0 {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"offer": nil})
		return
	}

	// session-scoped dismissals and the current cart shape the evaluation
	dismissed := map[string]bool{}
	inCart := map[string]bool{}
	if sessionID := utils.SessionID(r); sessionID != "" {
		if d, err := rdx.DismissedUpsellRules(ctx, sessionID); err == nil {
			dismissed = d
		}
		if items, _, err := rdx.LoadCart(ctx, sessionID); err == nil {
			for _, it := range items {
				inCart[it.ProductID] = true
			}
		}
	}

	catalog, err := targetCatalog(ctx, rules)
	if err != nil {
		log.Println("upsell products fetch error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch upsell products")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"offer": Evaluate(rules, evalCtx, inCart, catalog, dismissed)})
}

// targetCatalog loads every published product any rule targets, keyed by id.
func targetCatalog(ctx context.Context, rules []models.UpsellRule) (map[string]models.Product, error) {
	ids := make([]string, 0)
	seen := make(map[string]bool)
	for _, rule := range rules {
		for _, id := range rule.TargetProductIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return map[string]models.Product{}, nil
	}

	cursor, err := db.ProductsCollection.Find(ctx, bson.M{"productid": bson.M{"$in": ids}, "is_published": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	catalog := make(map[string]models.Product, len(products))
	for _, p := range products {
		catalog[p.ProductID] = p
	}
	return catalog, nil
}

// DismissRule records a session-scoped dismissal; the rule is re-offered on a
// fresh session.
func DismissRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := utils.SessionID(r)
	if sessionID == "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Missing X-Session-ID header")
		return
	}
	if err := rdx.DismissUpsellRule(r.Context(), sessionID, ps.ByName("ruleId")); err != nil {
		log.Println("upsell dismiss error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not record dismissal")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// --- Admin CRUD ---

func decodeRule(r *http.Request) (models.UpsellRule, string) {
	var rule models.UpsellRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		return rule, "Invalid JSON payload"
	}
	if rule.Name == "" {
		return rule, "Name is required"
	}
	switch rule.Type {
	case "upsell", "downsell", "cross_sell":
	default:
		return rule, "Type must be upsell, downsell or cross_sell"
	}
	switch rule.TriggerType {
	case TriggerProduct, TriggerCategory:
		if rule.TriggerID == "" {
			return rule, "Trigger id is required for product and category triggers"
		}
	case TriggerCartTotal:
	default:
		return rule, "Trigger type must be product, category or cart_total"
	}
	if !models.ValidDisplayLocation(rule.DisplayLocation) {
		return rule, "Invalid display location"
	}
	if rule.DiscountPercent < 0 || rule.DiscountPercent > 100 {
		return rule, "Discount percent must be between 0 and 100"
	}
	if len(rule.TargetProductIDs) == 0 {
		return rule, "At least one target product is required"
	}
	return rule, ""
}

func CreateRule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rule, problem := decodeRule(r)
	if problem != "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", problem)
		return
	}

	rule.RuleID = utils.GenerateID(14)
	rule.CreatedAt = time.Now()
	if _, err := db.UpsellRulesCollection.InsertOne(ctx, rule); err != nil {
		log.Println("upsell rule insert error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to create rule")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, rule)
}

func GetRules(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"priority": 1})
	cursor, err := db.UpsellRulesCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Println("upsell rule list error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to fetch rules")
		return
	}
	defer cursor.Close(ctx)

	rules := []models.UpsellRule{}
	if err := cursor.All(ctx, &rules); err != nil {
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Error reading rules")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, rules)
}

func UpdateRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rule, problem := decodeRule(r)
	if problem != "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", problem)
		return
	}

	update := bson.M{"$set": bson.M{
		"name":               rule.Name,
		"type":               rule.Type,
		"trigger_type":       rule.TriggerType,
		"trigger_id":         rule.TriggerID,
		"trigger_min_amount": rule.TriggerMinAmount,
		"target_product_ids": rule.TargetProductIDs,
		"display_location":   rule.DisplayLocation,
		"discount_percent":   rule.DiscountPercent,
		"message":            rule.Message,
		"is_active":          rule.IsActive,
		"priority":           rule.Priority,
	}}
	res, err := db.UpsellRulesCollection.UpdateOne(ctx, bson.M{"ruleid": ps.ByName("ruleId")}, update)
	if err != nil {
		log.Println("upsell rule update error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to update rule")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Rule not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func DeleteRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.UpsellRulesCollection.DeleteOne(ctx, bson.M{"ruleid": ps.ByName("ruleId")})
	if err != nil {
		log.Println("upsell rule delete error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to delete rule")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Rule not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
