// Package analytics folds order history into the dashboard summaries: daily
// revenue series, window-over-window change, top products and breakdowns by
// status and wilaya. All aggregation is done in-process over the raw rows so
// the same fold functions back both the HTTP handler and the tests.
package analytics

import (
	"sort"
	"time"

	"matjarna/models"
)

// DayBucket is one point of the revenue chart.
type DayBucket struct {
	Day     string `json:"day"` // YYYY-MM-DD
	Revenue int64  `json:"revenue"`
	Orders  int    `json:"orders"`
}

// ProductRevenue ranks a product by revenue within the window.
type ProductRevenue struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Revenue     int64  `json:"revenue"`
}

// countsRevenue reports whether an order contributes to revenue figures.
// Cancelled orders still show up in the status breakdown but never in money.
func countsRevenue(o models.Order) bool {
	return o.Status != models.OrderCancelled
}

// RevenueByDay buckets orders per calendar day in loc, ascending. Only days
// with at least one counted order appear.
func RevenueByDay(orders []models.Order, loc *time.Location) []DayBucket {
	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[string]*DayBucket)
	for _, o := range orders {
		if !countsRevenue(o) {
			continue
		}
		day := o.CreatedAt.In(loc).Format("2006-01-02")
		b, ok := byDay[day]
		if !ok {
			b = &DayBucket{Day: day}
			byDay[day] = b
		}
		b.Revenue += o.Total
		b.Orders++
	}

	buckets := make([]DayBucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Day < buckets[j].Day })
	return buckets
}

// TotalRevenue sums order totals, skipping cancelled orders.
func TotalRevenue(orders []models.Order) int64 {
	var sum int64
	for _, o := range orders {
		if countsRevenue(o) {
			sum += o.Total
		}
	}
	return sum
}

// PercentChange is the relative change from previous to current, rounded
// toward zero. A zero previous window reports 0 rather than a blowup, so a
// store's first week does not render as infinite growth.
func PercentChange(current, previous int64) int64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) * 100 / previous
}

// TopProducts ranks products by revenue within the given order items,
// descending, trimmed to limit. Ties break by product name for a stable
// listing.
func TopProducts(items []models.OrderItem, limit int) []ProductRevenue {
	byProduct := make(map[string]*ProductRevenue)
	for _, it := range items {
		pr, ok := byProduct[it.ProductID]
		if !ok {
			pr = &ProductRevenue{ProductID: it.ProductID, ProductName: it.ProductName}
			byProduct[it.ProductID] = pr
		}
		pr.Quantity += it.Quantity
		pr.Revenue += it.Total
	}

	ranked := make([]ProductRevenue, 0, len(byProduct))
	for _, pr := range byProduct {
		ranked = append(ranked, *pr)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].ProductName < ranked[j].ProductName
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// StatusCounts tallies orders per status, cancelled included.
func StatusCounts(orders []models.Order) map[models.OrderStatus]int {
	counts := make(map[models.OrderStatus]int)
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}

// WilayaCount is one row of the orders-by-wilaya breakdown.
type WilayaCount struct {
	WilayaCode string `json:"wilaya_code"`
	WilayaName string `json:"wilaya_name"`
	Orders     int    `json:"orders"`
	Revenue    int64  `json:"revenue"`
}

// OrdersByWilaya tallies non-cancelled orders per wilaya, descending by order
// count.
func OrdersByWilaya(orders []models.Order) []WilayaCount {
	byCode := make(map[string]*WilayaCount)
	for _, o := range orders {
		if !countsRevenue(o) {
			continue
		}
		wc, ok := byCode[o.WilayaCode]
		if !ok {
			wc = &WilayaCount{WilayaCode: o.WilayaCode, WilayaName: o.WilayaName}
			byCode[o.WilayaCode] = wc
		}
		wc.Orders++
		wc.Revenue += o.Total
	}

	ranked := make([]WilayaCount, 0, len(byCode))
	for _, wc := range byCode {
		ranked = append(ranked, *wc)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Orders != ranked[j].Orders {
			return ranked[i].Orders > ranked[j].Orders
		}
		return ranked[i].WilayaCode < ranked[j].WilayaCode
	})
	return ranked
}

// AverageOrderValue is total revenue over non-cancelled order count, floored.
func AverageOrderValue(orders []models.Order) int64 {
	var count int64
	var sum int64
	for _, o := range orders {
		if countsRevenue(o) {
			count++
			sum += o.Total
		}
	}
	if count == 0 {
		return 0
	}
	return sum / count
}
