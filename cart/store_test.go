package cart

import (
	"context"
	"testing"

	"matjarna/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salePrice(v int64) *int64 { return &v }

func testProduct(id string, listPrice int64, sale *int64) models.Product {
	return models.Product{ProductID: id, Name: "Product " + id, Price: listPrice, SalePrice: sale, Stock: 10, IsPublished: true}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), "sess-1", NewMemPersister())
	require.NoError(t, err)
	return s
}

func TestAddItemMergesIdenticalLines(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := testProduct("p1", 1000, nil)

	require.NoError(t, s.AddItem(ctx, p, 2, map[string]string{"Color": "Red"}, ""))
	require.NoError(t, s.AddItem(ctx, p, 3, map[string]string{"Color": "Red"}, ""))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddItemDifferentOptionsNewLine(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := testProduct("p1", 1000, nil)

	require.NoError(t, s.AddItem(ctx, p, 1, map[string]string{"Color": "Red"}, ""))
	require.NoError(t, s.AddItem(ctx, p, 1, map[string]string{"Color": "Blue"}, ""))

	assert.Len(t, s.Items(), 2)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	err := s.AddItem(ctx, testProduct("p1", 1000, nil), 0, nil, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSubtotalUsesEffectivePrice(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// 1000 list, 800 sale, qty 3 -> 2400
	require.NoError(t, s.AddItem(ctx, testProduct("p1", 1000, salePrice(800)), 3, nil, ""))
	assert.Equal(t, int64(2400), s.Subtotal())

	require.NoError(t, s.AddItem(ctx, testProduct("p2", 500, nil), 2, nil, ""))
	assert.Equal(t, int64(3400), s.Subtotal())
	assert.Equal(t, 5, s.ItemCount())
}

func TestRemoveItemDecreasesSubtotalByLineContribution(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.AddItem(ctx, testProduct("p1", 1000, nil), 1, nil, ""))
	require.NoError(t, s.AddItem(ctx, testProduct("p2", 300, nil), 2, nil, ""))

	before := s.Subtotal()
	itemID := s.Items()[1].ItemID
	require.NoError(t, s.RemoveItem(ctx, itemID))
	assert.Equal(t, before-600, s.Subtotal())

	// removing an absent line is idempotent
	require.NoError(t, s.RemoveItem(ctx, itemID))
	assert.Len(t, s.Items(), 1)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.AddItem(ctx, testProduct("p1", 1000, nil), 2, nil, ""))
	itemID := s.Items()[0].ItemID

	require.NoError(t, s.UpdateQuantity(ctx, itemID, 7))
	assert.Equal(t, 7, s.Items()[0].Quantity)

	require.NoError(t, s.UpdateQuantity(ctx, itemID, 0))
	assert.Empty(t, s.Items())
}

func TestCouponCodeStoredNotValidated(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.ApplyCoupon(ctx, "SAVE20"))
	assert.Equal(t, "SAVE20", s.CouponCode())
	require.NoError(t, s.RemoveCoupon(ctx))
	assert.Empty(t, s.CouponCode())
}

func TestClearEmptiesItemsAndCoupon(t *testing.T) {
	ctx := context.Background()
	p := NewMemPersister()
	s, err := NewStore(ctx, "sess-9", p)
	require.NoError(t, err)
	require.NoError(t, s.AddItem(ctx, testProduct("p1", 1000, nil), 1, nil, ""))
	require.NoError(t, s.ApplyCoupon(ctx, "SAVE20"))

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.Items())
	assert.Empty(t, s.CouponCode())

	// persisted copy is gone too
	reloaded, err := NewStore(ctx, "sess-9", p)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Items())
}

func TestStatePersistsAcrossStoreInstances(t *testing.T) {
	ctx := context.Background()
	p := NewMemPersister()
	s, err := NewStore(ctx, "sess-2", p)
	require.NoError(t, err)
	require.NoError(t, s.AddItem(ctx, testProduct("p1", 1000, salePrice(800)), 3, map[string]string{"Size": "L"}, ""))

	reloaded, err := NewStore(ctx, "sess-2", p)
	require.NoError(t, err)
	assert.Equal(t, int64(2400), reloaded.Subtotal())
	assert.Equal(t, "L", reloaded.Items()[0].SelectedOptions["Size"])
}
