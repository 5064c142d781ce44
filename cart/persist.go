package cart

import (
	"context"

	"matjarna/models"
	"matjarna/rdx"
)

// redisPersister stores session carts in Redis. Concurrent edits from two
// tabs of the same session are last-write-wins at this layer.
type redisPersister struct{}

func NewRedisPersister() Persister {
	return redisPersister{}
}

func (redisPersister) Save(ctx context.Context, sessionID string, items []models.CartItem, couponCode string) error {
	return rdx.SaveCart(ctx, sessionID, items, couponCode)
}

func (redisPersister) Load(ctx context.Context, sessionID string) ([]models.CartItem, string, error) {
	return rdx.LoadCart(ctx, sessionID)
}

func (redisPersister) Delete(ctx context.Context, sessionID string) error {
	return rdx.DeleteCart(ctx, sessionID)
}

// MemPersister is an in-memory Persister for tests and for running without
// Redis.
type MemPersister struct {
	carts map[string]memCart
}

type memCart struct {
	items  []models.CartItem
	coupon string
}

func NewMemPersister() *MemPersister {
	return &MemPersister{carts: make(map[string]memCart)}
}

func (m *MemPersister) Save(_ context.Context, sessionID string, items []models.CartItem, couponCode string) error {
	stored := make([]models.CartItem, len(items))
	copy(stored, items)
	m.carts[sessionID] = memCart{items: stored, coupon: couponCode}
	return nil
}

func (m *MemPersister) Load(_ context.Context, sessionID string) ([]models.CartItem, string, error) {
	c, ok := m.carts[sessionID]
	if !ok {
		return nil, "", nil
	}
	items := make([]models.CartItem, len(c.items))
	copy(items, c.items)
	return items, c.coupon, nil
}

func (m *MemPersister) Delete(_ context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}
