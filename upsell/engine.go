// Package upsell evaluates admin-defined offer rules against the current
// storefront context and selects the single rule to present.
package upsell

import (
	"sort"

	"matjarna/models"
	"matjarna/pricing"
)

// Trigger types.
const (
	TriggerProduct   = "product"
	TriggerCategory  = "category"
	TriggerCartTotal = "cart_total"
)

// Context is the storefront state at evaluation time.
type Context struct {
	ProductID  string
	CategoryID string
	CartTotal  int64
}

// OfferProduct is one presented target with its presentation-only price.
// OfferPrice never mutates the stored product; it only shapes the widget and
// the add-to-cart action triggered from it.
type OfferProduct struct {
	Product       models.Product `json:"product"`
	OriginalPrice int64          `json:"original_price"`
	OfferPrice    int64          `json:"offer_price"`
}

type Offer struct {
	Rule     models.UpsellRule `json:"rule"`
	Products []OfferProduct    `json:"products"`
}

// triggerMatches reports whether a rule's trigger fires for ctx.
func triggerMatches(rule models.UpsellRule, ctx Context) bool {
	switch rule.TriggerType {
	case TriggerProduct:
		return rule.TriggerID != "" && rule.TriggerID == ctx.ProductID
	case TriggerCategory:
		return rule.TriggerID != "" && rule.TriggerID == ctx.CategoryID
	case TriggerCartTotal:
		return rule.TriggerMinAmount == 0 || ctx.CartTotal >= rule.TriggerMinAmount
	}
	return false
}

// resolveTargets maps a rule's target ids to presentable products, excluding
// anything already in the cart and anything out of stock.
func resolveTargets(rule models.UpsellRule, inCart map[string]bool, catalog map[string]models.Product) []OfferProduct {
	var out []OfferProduct
	for _, id := range rule.TargetProductIDs {
		p, ok := catalog[id]
		if !ok || inCart[id] || p.Stock <= 0 || !p.IsPublished {
			continue
		}
		original := pricing.EffectivePrice(p)
		out = append(out, OfferProduct{
			Product:       p,
			OriginalPrice: original,
			OfferPrice:    pricing.DiscountedPrice(original, rule.DiscountPercent),
		})
	}
	return out
}

// Evaluate selects at most one rule to show. Rules are tried in ascending
// priority (stable on ties); the first rule whose trigger matches, that is
// not dismissed in this session, and that resolves at least one target wins.
// A nil result means nothing to show, which is not an error.
func Evaluate(rules []models.UpsellRule, ctx Context, inCart map[string]bool, catalog map[string]models.Product, dismissed map[string]bool) *Offer {
	ordered := make([]models.UpsellRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	for _, rule := range ordered {
		if !rule.IsActive || dismissed[rule.RuleID] || !triggerMatches(rule, ctx) {
			continue
		}
		if targets := resolveTargets(rule, inCart, catalog); len(targets) > 0 {
			return &Offer{Rule: rule, Products: targets}
		}
	}
	return nil
}
