// Package reviews handles customer product reviews. Submissions land in
// pending state and only show on the storefront once an admin approves them.
package reviews

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"matjarna/db"
	"matjarna/models"
	"matjarna/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusHidden   = "hidden"
)

func validStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusHidden:
		return true
	}
	return false
}

// SubmitReview takes a storefront review for a published product.
func SubmitReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	productID := ps.ByName("id")

	var payload struct {
		CustomerName string `json:"customer_name"`
		Rating       int    `json:"rating"`
		Text         string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON payload")
		return
	}
	payload.CustomerName = strings.TrimSpace(payload.CustomerName)
	payload.Text = strings.TrimSpace(payload.Text)

	if payload.Rating < 1 || payload.Rating > 5 {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Rating must be 1 to 5")
		return
	}
	if n := len([]rune(payload.Text)); n < 10 || n > 1000 {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Review text must be 10 to 1000 characters")
		return
	}
	if n := len([]rune(payload.CustomerName)); n < 2 || n > 100 {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Name must be 2 to 100 characters")
		return
	}

	count, err := db.ProductsCollection.CountDocuments(ctx, bson.M{"productid": productID, "is_published": true})
	if err != nil {
		log.Println("review product check error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save review")
		return
	}
	if count == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}

	review := models.Review{
		ReviewID:     utils.GenerateID(14),
		ProductID:    productID,
		CustomerName: payload.CustomerName,
		Rating:       payload.Rating,
		Text:         payload.Text,
		Status:       StatusPending,
		CreatedAt:    time.Now(),
	}
	if _, err := db.ReviewsCollection.InsertOne(ctx, review); err != nil {
		log.Println("review insert error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save review")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{"status": StatusPending})
}

// GetProductReviews lists approved reviews for a product, newest first, with
// the average rating over the approved set.
func GetProductReviews(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	productID := ps.ByName("id")

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := db.ReviewsCollection.Find(ctx, bson.M{"productid": productID, "status": StatusApproved}, opts)
	if err != nil {
		log.Println("review find error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch reviews")
		return
	}
	defer cursor.Close(ctx)

	var list []models.Review
	if err := cursor.All(ctx, &list); err != nil {
		log.Println("review decode error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch reviews")
		return
	}

	var sum int
	for _, rv := range list {
		sum += rv.Rating
	}
	average := 0.0
	if len(list) > 0 {
		average = float64(sum) / float64(len(list))
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"reviews":        list,
		"count":          len(list),
		"average_rating": average,
	})
}

// GetAllReviews is the admin moderation queue, filterable by status.
func GetAllReviews(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		if !validStatus(status) {
			utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Unknown review status")
			return
		}
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(200)
	cursor, err := db.ReviewsCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Println("review find error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch reviews")
		return
	}
	defer cursor.Close(ctx)

	var list []models.Review
	if err := cursor.All(ctx, &list); err != nil {
		log.Println("review decode error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch reviews")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"reviews": list})
}

// ModerateReview flips a review's status.
func ModerateReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	reviewID := ps.ByName("id")

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || !validStatus(payload.Status) {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Unknown review status")
		return
	}

	res, err := db.ReviewsCollection.UpdateOne(ctx,
		bson.M{"reviewid": reviewID},
		bson.M{"$set": bson.M{"status": payload.Status}})
	if err != nil {
		log.Println("review update error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not update review")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Review not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": payload.Status})
}

// DeleteReview removes a review outright, for spam cleanup.
func DeleteReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.ReviewsCollection.DeleteOne(ctx, bson.M{"reviewid": ps.ByName("id")})
	if err != nil {
		log.Println("review delete error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not delete review")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Review not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
