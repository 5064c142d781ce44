package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"matjarna/models"
	"matjarna/pricing"

	"github.com/google/uuid"
)

var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// Persister is the durable-storage adapter behind a Store. The production
// adapter writes to Redis keyed by session id; tests use an in-memory one.
type Persister interface {
	Save(ctx context.Context, sessionID string, items []models.CartItem, couponCode string) error
	Load(ctx context.Context, sessionID string) (items []models.CartItem, couponCode string, err error)
	Delete(ctx context.Context, sessionID string) error
}

// Store owns the line items and applied coupon code of one session cart.
// It is explicitly constructed (load-on-construct, save-on-mutate) rather
// than a package global, so isolated instances can be tested.
type Store struct {
	mu         sync.Mutex
	sessionID  string
	items      []models.CartItem
	couponCode string
	persister  Persister
}

// NewStore loads the persisted cart for sessionID through p.
func NewStore(ctx context.Context, sessionID string, p Persister) (*Store, error) {
	items, coupon, err := p.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Store{sessionID: sessionID, items: items, couponCode: coupon, persister: p}, nil
}

// optionsKey stable-serializes a selected-options map. encoding/json sorts
// map keys, so identical maps always produce identical keys.
func optionsKey(opts map[string]string) string {
	if len(opts) == 0 {
		return "{}"
	}
	data, _ := json.Marshal(opts)
	return string(data)
}

// AddItem merges into an existing line when the product id and selected
// options match exactly, else appends a new line with a fresh identity.
func (s *Store) AddItem(ctx context.Context, product models.Product, quantity int, selectedOptions map[string]string, variantID string) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := optionsKey(selectedOptions)
	for i := range s.items {
		if s.items[i].ProductID == product.ProductID && optionsKey(s.items[i].SelectedOptions) == key {
			s.items[i].Quantity += quantity
			return s.persist(ctx)
		}
	}

	s.items = append(s.items, models.CartItem{
		ItemID:          uuid.New().String(),
		ProductID:       product.ProductID,
		VariantID:       variantID,
		Quantity:        quantity,
		SelectedOptions: selectedOptions,
		Product:         product,
		AddedAt:         time.Now(),
	})
	return s.persist(ctx)
}

// RemoveItem drops the line if present; removing an absent line is not an
// error.
func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, it := range s.items {
		if it.ItemID != itemID {
			kept = append(kept, it)
		}
	}
	s.items = kept
	return s.persist(ctx)
}

// UpdateQuantity replaces the line's quantity, or removes the line when the
// new quantity is zero or negative.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ItemID == itemID {
			s.items[i].Quantity = quantity
			break
		}
	}
	return s.persist(ctx)
}

// ApplyCoupon stores the code only; validation happens at checkout time.
func (s *Store) ApplyCoupon(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.couponCode = code
	return s.persist(ctx)
}

func (s *Store) RemoveCoupon(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.couponCode = ""
	return s.persist(ctx)
}

// Clear empties items and coupon code. Called only after a successful order
// submission.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.couponCode = ""
	return s.persister.Delete(ctx, s.sessionID)
}

// Subtotal sums effective unit price times quantity over all lines.
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum int64
	for _, it := range s.items {
		sum += pricing.LineTotal(pricing.EffectivePrice(it.Product), it.Quantity)
	}
	return sum
}

// ItemCount sums quantities across lines (cart-icon badge).
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, it := range s.items {
		count += it.Quantity
	}
	return count
}

// Items returns a copy of the current lines.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// ProductIDs returns the set of product ids currently in the cart.
func (s *Store) ProductIDs() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[string]bool, len(s.items))
	for _, it := range s.items {
		ids[it.ProductID] = true
	}
	return ids
}

func (s *Store) CouponCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.couponCode
}

// persist writes current state through the adapter. Caller holds the lock.
func (s *Store) persist(ctx context.Context) error {
	return s.persister.Save(ctx, s.sessionID, s.items, s.couponCode)
}
