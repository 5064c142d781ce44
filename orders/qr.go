package orders

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"matjarna/db"
	"matjarna/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

func trackingBaseURL() string {
	base := strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/")
	if base == "" {
		base = "http://localhost:8080"
	}
	return base
}

// TrackingQR returns a PNG QR code pointing at the public tracking page for
// an order, shown on the confirmation view.
func TrackingQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderNumber := ps.ByName("orderNumber")
	count, err := db.OrdersCollection.CountDocuments(ctx, bson.M{"order_number": orderNumber})
	if err != nil || count == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	url := fmt.Sprintf("%s/orders/track/%s", trackingBaseURL(), orderNumber)
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
