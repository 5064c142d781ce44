package cart

import (
	"testing"

	"matjarna/models"

	"github.com/stretchr/testify/assert"
)

func discountRule(targets ...string) models.UpsellRule {
	return models.UpsellRule{
		RuleID:           "r1",
		IsActive:         true,
		DiscountPercent:  20,
		TargetProductIDs: targets,
	}
}

func TestRuleDiscountsTargetedProductOnly(t *testing.T) {
	rule := discountRule("p1", "p2")

	assert.True(t, ruleDiscounts(rule, "p1"))
	assert.True(t, ruleDiscounts(rule, "p2"))
	assert.False(t, ruleDiscounts(rule, "p3"), "a rule must not discount products it does not target")
}

func TestRuleDiscountsInactiveRule(t *testing.T) {
	rule := discountRule("p1")
	rule.IsActive = false

	assert.False(t, ruleDiscounts(rule, "p1"))
}

func TestRuleDiscountsZeroPercent(t *testing.T) {
	rule := discountRule("p1")
	rule.DiscountPercent = 0

	assert.False(t, ruleDiscounts(rule, "p1"))
}

func TestRuleDiscountsNoTargets(t *testing.T) {
	assert.False(t, ruleDiscounts(discountRule(), "p1"))
}
