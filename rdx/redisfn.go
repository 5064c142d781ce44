package rdx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"matjarna/models"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
}

// Session-scoped keys expire after a quiet month; carts and dismissals are
// re-offered on a fresh session.
const sessionTTL = 30 * 24 * time.Hour

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

func dismissKey(sessionID string) string {
	return "upsell:dismissed:" + sessionID
}

// cartState is the persisted shape of a session cart.
type cartState struct {
	Items      []models.CartItem `json:"items"`
	CouponCode string            `json:"coupon_code,omitempty"`
}

// SaveCart persists the full cart state for a session (last write wins).
func SaveCart(ctx context.Context, sessionID string, items []models.CartItem, couponCode string) error {
	data, err := json.Marshal(cartState{Items: items, CouponCode: couponCode})
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	return Conn.Set(ctx, cartKey(sessionID), data, sessionTTL).Err()
}

// LoadCart returns the persisted cart state for a session, or empty state if
// none exists.
func LoadCart(ctx context.Context, sessionID string) ([]models.CartItem, string, error) {
	raw, err := Conn.Get(ctx, cartKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	var state cartState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, "", fmt.Errorf("unmarshal cart: %w", err)
	}
	return state.Items, state.CouponCode, nil
}

// DeleteCart removes a session's persisted cart.
func DeleteCart(ctx context.Context, sessionID string) error {
	return Conn.Del(ctx, cartKey(sessionID)).Err()
}

// DismissUpsellRule records a session-scoped dismissal of an upsell rule.
func DismissUpsellRule(ctx context.Context, sessionID, ruleID string) error {
	pipe := Conn.TxPipeline()
	pipe.SAdd(ctx, dismissKey(sessionID), ruleID)
	pipe.Expire(ctx, dismissKey(sessionID), sessionTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// DismissedUpsellRules returns the set of rule ids dismissed in this session.
func DismissedUpsellRules(ctx context.Context, sessionID string) (map[string]bool, error) {
	ids, err := Conn.SMembers(ctx, dismissKey(sessionID)).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	dismissed := make(map[string]bool, len(ids))
	for _, id := range ids {
		dismissed[id] = true
	}
	return dismissed, nil
}
