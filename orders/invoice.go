package orders

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"matjarna/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"go.mongodb.org/mongo-driver/mongo"
)

// PrintInvoice renders a COD invoice PDF for one order.
func PrintInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := FindByID(ctx, ps.ByName("orderId"))
	if err == mongo.ErrNoDocuments {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		log.Println("invoice order fetch error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to fetch order")
		return
	}

	items, err := ItemsForOrder(ctx, order.OrderID)
	if err != nil {
		log.Println("invoice items fetch error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to fetch order items")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Invoice")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Order: %s", order.OrderNumber))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", order.CreatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Customer: %s (%s)", order.CustomerName, order.CustomerPhone))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Deliver to: %s, %s (%s)", order.Address, order.WilayaName, order.DeliveryType))
	pdf.Ln(12)

	// item table
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Product", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Unit", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, item := range items {
		pdf.CellFormat(90, 8, item.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%d DZD", item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%d DZD", item.Total), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.Cell(0, 8, fmt.Sprintf("Subtotal: %d DZD", order.Subtotal))
	pdf.Ln(7)
	if order.Discount > 0 {
		pdf.Cell(0, 8, fmt.Sprintf("Discount (%s): -%d DZD", order.CouponCode, order.Discount))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Shipping: %d DZD", order.Shipping))
	pdf.Ln(7)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total (cash on delivery): %d DZD", order.Total))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		log.Println("invoice render error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to generate invoice")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", order.OrderNumber))
	w.Write(buf.Bytes())
}
