// Package checkout sequences a checkout attempt: structural validation,
// shipping resolution, coupon re-validation, order persistence and cart
// cleanup. Any persistence failure leaves the cart intact so the shopper can
// retry without re-entering items.
package checkout

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"matjarna/cart"
	"matjarna/coupon"
	"matjarna/db"
	"matjarna/models"
	"matjarna/orders"
	"matjarna/pricing"
	"matjarna/shipping"
	"matjarna/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"
)

// Handler carries the checkout collaborators: the debounced draft saver and
// the admin order feed.
type Handler struct {
	saver *Saver
	feed  *orders.Hub
}

func NewHandler(saver *Saver, feed *orders.Hub) *Handler {
	return &Handler{saver: saver, feed: feed}
}

// SaveDraft schedules an abandoned-cart snapshot. Called on debounced field
// edits once name and phone are both filled; always best-effort.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sessionID := utils.SessionID(r)
	if sessionID == "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Missing X-Session-ID header")
		return
	}

	var form Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON payload")
		return
	}
	if form.CustomerName == "" || form.CustomerPhone == "" {
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
		return
	}

	store, err := cart.NewStore(r.Context(), sessionID, cart.NewRedisPersister())
	if err != nil {
		log.Println("draft cart load error:", err)
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
		return
	}

	h.saver.Schedule(models.AbandonedCart{
		SessionID:     sessionID,
		CustomerName:  form.CustomerName,
		CustomerPhone: form.CustomerPhone,
		WilayaCode:    form.WilayaCode,
		Address:       form.Address,
		Items:         store.Items(),
		Subtotal:      store.Subtotal(),
	})
	utils.RespondWithJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

// SubmitOrder is the single submit of one checkout attempt. A second submit
// while one is pending is prevented client-side by disabling the control;
// the server itself does each submit exactly once.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	sessionID := utils.SessionID(r)
	if sessionID == "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Missing X-Session-ID header")
		return
	}

	var form Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON payload")
		return
	}

	// VALIDATING: structural rules, reported per field, nothing sent upstream
	if errs := ValidateForm(form); len(errs) > 0 {
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, utils.M{"errors": errs})
		return
	}

	store, err := cart.NewStore(ctx, sessionID, cart.NewRedisPersister())
	if err != nil {
		log.Println("checkout cart load error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not load cart")
		return
	}
	items := store.Items()
	if len(items) == 0 {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "EMPTY_CART", "Cart is empty")
		return
	}
	subtotal := store.Subtotal()

	// SUBMITTING (a): shipping must resolve or the submission is blocked
	rates, err := shipping.ActiveRates(ctx)
	if err != nil {
		log.Println("checkout rates fetch error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch shipping rates")
		return
	}
	shippingCost, ok := shipping.Resolve(rates, form.WilayaCode, form.DeliveryType)
	if !ok {
		utils.RespondWithErrorCode(w, http.StatusUnprocessableEntity, "SHIPPING_UNRESOLVED", "No delivery available for the selected wilaya")
		return
	}
	wilayaName := ""
	for _, rate := range rates {
		if rate.WilayaCode == form.WilayaCode {
			wilayaName = rate.WilayaName
			break
		}
	}

	// SUBMITTING (b): re-validate the coupon against the live subtotal.
	// An inapplicable coupon no longer blocks checkout, but the shopper is
	// told the discount was removed.
	var discount int64
	var appliedCode string
	notices := []string{}
	code := form.CouponCode
	if code == "" {
		code = store.CouponCode()
	}
	if code != "" {
		c, err := coupon.FindByCode(ctx, code)
		switch {
		case err == mongo.ErrNoDocuments:
			notices = append(notices, "COUPON_REMOVED")
		case err != nil:
			log.Println("checkout coupon lookup error:", err)
			notices = append(notices, "COUPON_REMOVED")
		default:
			if res := coupon.Validate(c, subtotal, time.Now()); res.Applicable {
				discount = res.Discount
				appliedCode = c.Code
			} else {
				notices = append(notices, "COUPON_REMOVED")
			}
		}
	}

	// SUBMITTING (c)
	total := OrderTotal(subtotal, discount, shippingCost)

	now := time.Now()
	order := models.Order{
		OrderID:       uuid.New().String(),
		OrderNumber:   utils.GenerateOrderNumber(now),
		CustomerName:  form.CustomerName,
		CustomerPhone: form.CustomerPhone,
		WilayaCode:    form.WilayaCode,
		WilayaName:    wilayaName,
		Address:       form.Address,
		DeliveryType:  form.DeliveryType,
		Note:          form.Note,
		Subtotal:      subtotal,
		Shipping:      shippingCost,
		Discount:      discount,
		Total:         total,
		CouponCode:    appliedCode,
		Status:        models.OrderPending,
		StatusHistory: []models.StatusHistoryEntry{{Status: models.OrderPending, Timestamp: now}},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// SUBMITTING (d)+(e): items first, keyed by the pre-generated order id,
	// then the header. A failed header write leaves item-only rows that the
	// orphan sweep reclaims; a failed item write costs nothing.
	docs := make([]interface{}, 0, len(items))
	for _, it := range items {
		price := pricing.EffectivePrice(it.Product)
		image := ""
		for _, img := range it.Product.Images {
			if img.IsPrimary {
				image = img.ImageURL
				break
			}
		}
		if image == "" && len(it.Product.Images) > 0 {
			image = it.Product.Images[0].ImageURL
		}
		docs = append(docs, models.OrderItem{
			OrderItemID:     uuid.New().String(),
			OrderID:         order.OrderID,
			ProductID:       it.ProductID,
			ProductName:     it.Product.Name,
			ProductImage:    image,
			VariantID:       it.VariantID,
			SelectedOptions: it.SelectedOptions,
			Quantity:        it.Quantity,
			Price:           price,
			Total:           pricing.LineTotal(price, it.Quantity),
			CreatedAt:       now,
		})
	}
	if _, err := db.OrderItemsCollection.InsertMany(ctx, docs); err != nil {
		log.Println("order items insert error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "ORDER_FAILED", "Order could not be saved, please retry")
		return
	}
	if _, err := db.OrdersCollection.InsertOne(ctx, order); err != nil {
		log.Println("order insert error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "ORDER_FAILED", "Order could not be saved, please retry")
		return
	}

	// SUBMITTING (f): the counter moves only when an order actually used it
	if appliedCode != "" {
		if err := coupon.IncrementUsage(ctx, appliedCode); err != nil {
			log.Println("coupon usage increment error:", err)
		}
	}

	// SUBMITTING (g)+(h): cleanup is best-effort; the order already exists
	h.saver.Cancel(sessionID)
	if err := DeleteDraft(ctx, sessionID); err != nil {
		log.Println("abandoned cart delete error:", err)
	}
	if err := store.Clear(ctx); err != nil {
		log.Println("cart clear error:", err)
	}

	h.feed.BroadcastOrder(order)

	// SUCCEEDED
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"order_number": order.OrderNumber,
		"total":        order.Total,
		"notices":      notices,
	})
}
