// Package orders is the admin order-management surface: listing, detail,
// status-history updates, invoices, tracking QR codes and the live feed.
package orders

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"matjarna/db"
	"matjarna/models"
	"matjarna/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindByID loads an order header.
func FindByID(ctx context.Context, orderID string) (models.Order, error) {
	var o models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"orderid": orderID}).Decode(&o)
	return o, err
}

// ItemsForOrder loads the item snapshots of one order.
func ItemsForOrder(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	cursor, err := db.OrderItemsCollection.Find(ctx, bson.M{"orderid": orderID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.OrderItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetOrders lists orders for the admin table, newest first, with optional
// ?status= and ?search= (order number or phone) filters.
func GetOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.ValidOrderStatus(models.OrderStatus(status)) {
			utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid status filter")
			return
		}
		filter["status"] = status
	}
	if search := r.URL.Query().Get("search"); search != "" {
		filter["$or"] = []bson.M{
			{"order_number": bson.M{"$regex": search, "$options": "i"}},
			{"customer_phone": bson.M{"$regex": search}},
		}
	}

	limit := int64(50)
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	page := int64(0)
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64); err == nil && v > 0 {
		page = v - 1
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit).SetSkip(page * limit)
	cursor, err := db.OrdersCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Println("orders list error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to fetch orders")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Error reading orders")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrder returns header plus item snapshots.
func GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := FindByID(ctx, ps.ByName("orderId"))
	if err == mongo.ErrNoDocuments {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		log.Println("order fetch error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to fetch order")
		return
	}

	items, err := ItemsForOrder(ctx, order.OrderID)
	if err != nil {
		log.Println("order items fetch error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to fetch order items")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"order": order, "items": items})
}

// TrackOrder is the public confirmation lookup keyed by order number.
func TrackOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var order models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"order_number": ps.ByName("orderNumber")}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to fetch order")
		return
	}

	items, err := ItemsForOrder(ctx, order.OrderID)
	if err != nil {
		items = []models.OrderItem{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"order": order, "items": items})
}

// UpdateStatus appends a history entry; it never rewrites existing history.
func UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		Status models.OrderStatus `json:"status"`
		Note   string             `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON payload")
		return
	}
	if !models.ValidOrderStatus(payload.Status) {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid order status")
		return
	}
	if len([]rune(payload.Note)) > 500 {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Note is too long")
		return
	}

	now := time.Now()
	entry := models.StatusHistoryEntry{Status: payload.Status, Timestamp: now, Note: payload.Note}
	update := bson.M{
		"$set":  bson.M{"status": payload.Status, "updated_at": now},
		"$push": bson.M{"status_history": entry},
	}
	res, err := db.OrdersCollection.UpdateOne(ctx, bson.M{"orderid": ps.ByName("orderId")}, update)
	if err != nil {
		log.Println("order status update error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to update order")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// SweepOrphanedItems removes item rows whose header never landed, the
// compensating side of the item-first checkout write. Orders younger than
// grace are left alone since their header write may still be in flight.
func SweepOrphanedItems(ctx context.Context, grace time.Duration) (int64, error) {
	cursor, err := db.OrderItemsCollection.Distinct(ctx, "orderid", bson.M{})
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-grace)
	var removed int64
	for _, raw := range cursor {
		orderID, ok := raw.(string)
		if !ok {
			continue
		}
		count, err := db.OrdersCollection.CountDocuments(ctx, bson.M{"orderid": orderID})
		if err != nil || count > 0 {
			continue
		}
		res, err := db.OrderItemsCollection.DeleteMany(ctx, bson.M{
			"orderid":    orderID,
			"created_at": bson.M{"$lt": cutoff},
		})
		if err != nil {
			log.Println("orphan sweep delete error:", err)
			continue
		}
		removed += res.DeletedCount
	}
	return removed, nil
}
