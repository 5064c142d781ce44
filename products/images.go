package products

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"matjarna/db"
	"matjarna/media"
	"matjarna/models"
	"matjarna/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// AddImage attaches an already-uploaded image URL to a product. The first
// image of a product becomes primary automatically.
func AddImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	productID := ps.ByName("id")

	var payload struct {
		ImageURL string `json:"image_url"`
		HostID   string `json:"host_id"`
		Position int    `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ImageURL == "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "image_url is required")
		return
	}

	count, err := db.ProductsCollection.CountDocuments(ctx, bson.M{"productid": productID})
	if err != nil {
		log.Println("product check error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save image")
		return
	}
	if count == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}

	existing, err := db.ProductImagesCollection.CountDocuments(ctx, bson.M{"productid": productID})
	if err != nil {
		log.Println("image count error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save image")
		return
	}

	img := models.ProductImage{
		ImageID:   utils.GenerateID(14),
		ProductID: productID,
		ImageURL:  payload.ImageURL,
		HostID:    payload.HostID,
		Position:  payload.Position,
		IsPrimary: existing == 0,
		CreatedAt: time.Now(),
	}
	if _, err := db.ProductImagesCollection.InsertOne(ctx, img); err != nil {
		log.Println("image insert error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save image")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, img)
}

// setPrimary makes imageID the only primary image of its product. Clears the
// flag on siblings first so the single-primary rule holds even if the second
// write fails.
func setPrimary(ctx context.Context, productID, imageID string) error {
	_, err := db.ProductImagesCollection.UpdateMany(ctx,
		bson.M{"productid": productID, "imageid": bson.M{"$ne": imageID}},
		bson.M{"$set": bson.M{"is_primary": false}})
	if err != nil {
		return err
	}
	_, err = db.ProductImagesCollection.UpdateOne(ctx,
		bson.M{"productid": productID, "imageid": imageID},
		bson.M{"$set": bson.M{"is_primary": true}})
	return err
}

func SetPrimaryImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	productID := ps.ByName("id")
	imageID := ps.ByName("imageId")

	count, err := db.ProductImagesCollection.CountDocuments(ctx, bson.M{"productid": productID, "imageid": imageID})
	if err != nil {
		log.Println("image check error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not update image")
		return
	}
	if count == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Image not found")
		return
	}

	if err := setPrimary(ctx, productID, imageID); err != nil {
		log.Println("set primary error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not update image")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteImage removes an image record. If it was primary, the lowest-position
// remaining image is promoted so the product keeps a cover.
func DeleteImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	productID := ps.ByName("id")
	imageID := ps.ByName("imageId")

	var img models.ProductImage
	err := db.ProductImagesCollection.FindOneAndDelete(ctx, bson.M{"productid": productID, "imageid": imageID}).Decode(&img)
	if err != nil {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Image not found")
		return
	}

	if err := media.DestroyHosted(ctx, img.HostID); err != nil {
		log.Println("hosted image delete error:", err)
	}

	if img.IsPrimary {
		cursor, err := db.ProductImagesCollection.Find(ctx, bson.M{"productid": productID})
		if err == nil {
			var remaining []models.ProductImage
			if err := cursor.All(ctx, &remaining); err == nil && len(remaining) > 0 {
				next := remaining[0]
				for _, candidate := range remaining[1:] {
					if candidate.Position < next.Position {
						next = candidate
					}
				}
				if err := setPrimary(ctx, productID, next.ImageID); err != nil {
					log.Println("primary promote error:", err)
				}
			}
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
