package upsell

import (
	"testing"

	"matjarna/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogOf(products ...models.Product) map[string]models.Product {
	m := make(map[string]models.Product, len(products))
	for _, p := range products {
		m[p.ProductID] = p
	}
	return m
}

func inStock(id string, price int64) models.Product {
	return models.Product{ProductID: id, Name: id, Price: price, Stock: 5, IsPublished: true}
}

func rule(id string, priority int, targets ...string) models.UpsellRule {
	return models.UpsellRule{
		RuleID:           id,
		Name:             id,
		TriggerType:      TriggerCartTotal,
		TargetProductIDs: targets,
		DisplayLocation:  models.LocationCheckout,
		IsActive:         true,
		Priority:         priority,
	}
}

func TestLowestPriorityRuleWins(t *testing.T) {
	catalog := catalogOf(inStock("a", 1000), inStock("b", 2000))
	rules := []models.UpsellRule{rule("r2", 2, "b"), rule("r1", 1, "a")}

	offer := Evaluate(rules, Context{CartTotal: 500}, nil, catalog, nil)
	require.NotNil(t, offer)
	assert.Equal(t, "r1", offer.Rule.RuleID)
	require.Len(t, offer.Products, 1)
	assert.Equal(t, "a", offer.Products[0].Product.ProductID)
}

func TestFallsThroughToNextRuleWhenTargetsExcluded(t *testing.T) {
	catalog := catalogOf(inStock("b", 2000))
	rules := []models.UpsellRule{rule("r1", 1, "a"), rule("r2", 2, "b")}

	// r1's only target is not in the catalog, so r2 is shown
	offer := Evaluate(rules, Context{CartTotal: 500}, nil, catalog, nil)
	require.NotNil(t, offer)
	assert.Equal(t, "r2", offer.Rule.RuleID)
}

func TestExcludesInCartAndOutOfStockTargets(t *testing.T) {
	outOfStock := inStock("c", 800)
	outOfStock.Stock = 0
	catalog := catalogOf(inStock("a", 1000), inStock("b", 2000), outOfStock)

	offer := Evaluate([]models.UpsellRule{rule("r1", 1, "a", "b", "c")},
		Context{CartTotal: 500}, map[string]bool{"a": true}, catalog, nil)
	require.NotNil(t, offer)
	require.Len(t, offer.Products, 1)
	assert.Equal(t, "b", offer.Products[0].Product.ProductID)
}

func TestAllTargetsExcludedYieldsNothing(t *testing.T) {
	catalog := catalogOf(inStock("a", 1000))
	offer := Evaluate([]models.UpsellRule{rule("r1", 1, "a")},
		Context{CartTotal: 500}, map[string]bool{"a": true}, catalog, nil)
	assert.Nil(t, offer)
}

func TestTriggerMatching(t *testing.T) {
	catalog := catalogOf(inStock("x", 500))

	productRule := rule("rp", 1, "x")
	productRule.TriggerType = TriggerProduct
	productRule.TriggerID = "p9"

	categoryRule := rule("rc", 1, "x")
	categoryRule.TriggerType = TriggerCategory
	categoryRule.TriggerID = "cat3"

	totalRule := rule("rt", 1, "x")
	totalRule.TriggerMinAmount = 2000

	assert.NotNil(t, Evaluate([]models.UpsellRule{productRule}, Context{ProductID: "p9"}, nil, catalog, nil))
	assert.Nil(t, Evaluate([]models.UpsellRule{productRule}, Context{ProductID: "other"}, nil, catalog, nil))

	assert.NotNil(t, Evaluate([]models.UpsellRule{categoryRule}, Context{CategoryID: "cat3"}, nil, catalog, nil))
	assert.Nil(t, Evaluate([]models.UpsellRule{categoryRule}, Context{CategoryID: "cat4"}, nil, catalog, nil))

	assert.Nil(t, Evaluate([]models.UpsellRule{totalRule}, Context{CartTotal: 1999}, nil, catalog, nil))
	assert.NotNil(t, Evaluate([]models.UpsellRule{totalRule}, Context{CartTotal: 2000}, nil, catalog, nil))

	// cart_total with no minimum always matches
	totalRule.TriggerMinAmount = 0
	assert.NotNil(t, Evaluate([]models.UpsellRule{totalRule}, Context{CartTotal: 0}, nil, catalog, nil))
}

func TestDismissedRulesSkipped(t *testing.T) {
	catalog := catalogOf(inStock("a", 1000), inStock("b", 2000))
	rules := []models.UpsellRule{rule("r1", 1, "a"), rule("r2", 2, "b")}

	offer := Evaluate(rules, Context{CartTotal: 500}, nil, catalog, map[string]bool{"r1": true})
	require.NotNil(t, offer)
	assert.Equal(t, "r2", offer.Rule.RuleID)

	offer = Evaluate(rules, Context{CartTotal: 500}, nil, catalog, map[string]bool{"r1": true, "r2": true})
	assert.Nil(t, offer)
}

func TestOfferPriceAppliesRuleDiscount(t *testing.T) {
	sale := int64(900)
	p := inStock("a", 1000)
	p.SalePrice = &sale
	catalog := catalogOf(p)

	discounted := rule("r1", 1, "a")
	discounted.DiscountPercent = 15

	offer := Evaluate([]models.UpsellRule{discounted}, Context{CartTotal: 500}, nil, catalog, nil)
	require.NotNil(t, offer)
	// floor(900 * 0.85) = 765, computed off the effective (sale) price
	assert.Equal(t, int64(900), offer.Products[0].OriginalPrice)
	assert.Equal(t, int64(765), offer.Products[0].OfferPrice)
}

func TestStableTieBreakOnEqualPriority(t *testing.T) {
	catalog := catalogOf(inStock("a", 1000), inStock("b", 2000))
	rules := []models.UpsellRule{rule("first", 5, "a"), rule("second", 5, "b")}

	offer := Evaluate(rules, Context{CartTotal: 500}, nil, catalog, nil)
	require.NotNil(t, offer)
	assert.Equal(t, "first", offer.Rule.RuleID)
}
