package analytics

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"matjarna/db"
	"matjarna/models"
	"matjarna/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	defaultWindowDays = 30
	maxWindowDays     = 365
	topProductsLimit  = 10
)

func ordersSince(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	filter := bson.M{"created_at": bson.M{"$gte": from, "$lt": to}}
	cursor, err := db.OrdersCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func itemsForOrders(ctx context.Context, orders []models.Order) ([]models.OrderItem, error) {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if countsRevenue(o) {
			ids = append(ids, o.OrderID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := db.OrderItemsCollection.Find(ctx, bson.M{"orderid": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.OrderItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Dashboard serves GET /api/admin/analytics. The window is the trailing
// ?days=N (default 30) and the comparison window is the N days before that.
func Dashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	days := defaultWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxWindowDays {
			utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "days must be between 1 and 365")
			return
		}
		days = n
	}

	now := time.Now()
	from := now.AddDate(0, 0, -days)
	prevFrom := from.AddDate(0, 0, -days)

	current, err := ordersSince(ctx, from, now)
	if err != nil {
		log.Println("analytics orders fetch error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch orders")
		return
	}
	previous, err := ordersSince(ctx, prevFrom, from)
	if err != nil {
		log.Println("analytics previous window fetch error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch orders")
		return
	}
	items, err := itemsForOrders(ctx, current)
	if err != nil {
		log.Println("analytics items fetch error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch order items")
		return
	}

	revenue := TotalRevenue(current)
	prevRevenue := TotalRevenue(previous)
	orderCount := 0
	for _, o := range current {
		if countsRevenue(o) {
			orderCount++
		}
	}
	prevCount := 0
	for _, o := range previous {
		if countsRevenue(o) {
			prevCount++
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"window_days":            days,
		"revenue":                revenue,
		"revenue_change_pct":     PercentChange(revenue, prevRevenue),
		"order_count":            orderCount,
		"order_count_change_pct": PercentChange(int64(orderCount), int64(prevCount)),
		"average_order_value":    AverageOrderValue(current),
		"revenue_by_day":         RevenueByDay(current, time.Local),
		"top_products":           TopProducts(items, topProductsLimit),
		"status_counts":          StatusCounts(current),
		"orders_by_wilaya":       OrdersByWilaya(current),
	})
}
