package analytics

import (
	"testing"
	"time"

	"matjarna/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderAt(day time.Time, total int64, status models.OrderStatus, wilaya string) models.Order {
	return models.Order{
		OrderID:    "o-" + day.Format("20060102") + "-" + wilaya,
		Total:      total,
		Status:     status,
		WilayaCode: wilaya,
		CreatedAt:  day,
	}
}

func TestRevenueByDay(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{
		orderAt(from.AddDate(0, 0, 2).Add(5*time.Hour), 500, models.OrderPending, "31"),
		orderAt(from.Add(2*time.Hour), 1000, models.OrderDelivered, "16"),
		orderAt(from.AddDate(0, 0, 2).Add(9*time.Hour), 700, models.OrderConfirmed, "31"),
	}

	buckets := RevenueByDay(orders, time.UTC)
	// the empty Aug 2 produces no bucket; days come out ascending
	require.Len(t, buckets, 2)

	assert.Equal(t, "2026-08-01", buckets[0].Day)
	assert.Equal(t, int64(1000), buckets[0].Revenue)
	assert.Equal(t, 1, buckets[0].Orders)

	assert.Equal(t, "2026-08-03", buckets[1].Day)
	assert.Equal(t, int64(1200), buckets[1].Revenue)
	assert.Equal(t, 2, buckets[1].Orders)
}

func TestRevenueSkipsCancelled(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{
		orderAt(from, 1000, models.OrderDelivered, "16"),
		orderAt(from, 9999, models.OrderCancelled, "16"),
	}

	assert.Equal(t, int64(1000), TotalRevenue(orders))
	buckets := RevenueByDay(orders, time.UTC)
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(1000), buckets[0].Revenue)

	// cancelled still visible in the status breakdown
	counts := StatusCounts(orders)
	assert.Equal(t, 1, counts[models.OrderCancelled])
	assert.Equal(t, 1, counts[models.OrderDelivered])
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, int64(50), PercentChange(150, 100))
	assert.Equal(t, int64(-25), PercentChange(75, 100))
	assert.Equal(t, int64(0), PercentChange(100, 100))
	// first window ever: no previous data reads as flat, not infinite
	assert.Equal(t, int64(0), PercentChange(500, 0))
}

func TestTopProducts(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "p1", ProductName: "Kabyle Dress", Quantity: 2, Total: 8000},
		{ProductID: "p2", ProductName: "Sahara Scarf", Quantity: 5, Total: 5000},
		{ProductID: "p1", ProductName: "Kabyle Dress", Quantity: 1, Total: 4000},
		{ProductID: "p3", ProductName: "Argan Oil", Quantity: 1, Total: 3000},
	}

	top := TopProducts(items, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "p1", top[0].ProductID)
	assert.Equal(t, int64(12000), top[0].Revenue)
	assert.Equal(t, 3, top[0].Quantity)
	assert.Equal(t, "p2", top[1].ProductID)
}

func TestTopProductsTieBreak(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "pb", ProductName: "Beta", Quantity: 1, Total: 1000},
		{ProductID: "pa", ProductName: "Alpha", Quantity: 1, Total: 1000},
	}
	top := TopProducts(items, 0)
	require.Len(t, top, 2)
	assert.Equal(t, "Alpha", top[0].ProductName)
}

func TestOrdersByWilaya(t *testing.T) {
	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{
		orderAt(day, 1000, models.OrderDelivered, "16"),
		orderAt(day.Add(time.Hour), 2000, models.OrderPending, "16"),
		orderAt(day, 3000, models.OrderDelivered, "31"),
		orderAt(day, 4000, models.OrderCancelled, "31"),
	}
	orders[0].WilayaName = "Alger"
	orders[1].WilayaName = "Alger"

	ranked := OrdersByWilaya(orders)
	require.Len(t, ranked, 2)
	assert.Equal(t, "16", ranked[0].WilayaCode)
	assert.Equal(t, 2, ranked[0].Orders)
	assert.Equal(t, int64(3000), ranked[0].Revenue)
	assert.Equal(t, "31", ranked[1].WilayaCode)
	assert.Equal(t, 1, ranked[1].Orders)
}

func TestAverageOrderValue(t *testing.T) {
	day := time.Now()
	orders := []models.Order{
		orderAt(day, 1000, models.OrderDelivered, "16"),
		orderAt(day, 1001, models.OrderPending, "16"),
		orderAt(day, 5000, models.OrderCancelled, "16"),
	}
	assert.Equal(t, int64(1000), AverageOrderValue(orders)) // floored
	assert.Equal(t, int64(0), AverageOrderValue(nil))
}
