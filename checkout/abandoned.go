package checkout

import (
	"context"
	"log"
	"net/http"
	"time"

	"matjarna/db"
	"matjarna/models"
	"matjarna/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetAbandonedCarts lists draft snapshots for the admin recovery view,
// most recently updated first.
func GetAbandonedCarts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}).SetLimit(200)
	cursor, err := db.AbandonedCartsCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Println("abandoned cart list error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch abandoned carts")
		return
	}
	defer cursor.Close(ctx)

	carts := []models.AbandonedCart{}
	if err := cursor.All(ctx, &carts); err != nil {
		log.Println("abandoned cart decode error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch abandoned carts")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"carts": carts})
}

// DeleteAbandonedCart removes one snapshot, keyed by its session id.
func DeleteAbandonedCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.AbandonedCartsCollection.DeleteOne(ctx, bson.M{"sessionid": ps.ByName("sessionId")})
	if err != nil {
		log.Println("abandoned cart delete error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not delete abandoned cart")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Abandoned cart not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
