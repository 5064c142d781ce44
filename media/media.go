// Package media handles product image uploads. Files go to Cloudinary when
// CLOUDINARY_URL is configured, otherwise to local disk with a generated
// thumbnail, so development works without an account. Each upload also
// creates the product image record.
package media

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"matjarna/db"
	"matjarna/models"
	"matjarna/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

var uploadDir = "./static/uploads"

const maxUploadBytes = 10 << 20

// UploadImage handles POST /api/images/upload. Multipart fields: file
// (image, max 10MB), productId, optional isPrimary. Responds with the stored
// image record.
func UploadImage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid form data")
		return
	}

	productID := r.FormValue("productId")
	if productID == "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "productId is required")
		return
	}
	count, err := db.ProductsCollection.CountDocuments(ctx, bson.M{"productid": productID})
	if err != nil {
		log.Println("upload product check error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not verify product")
		return
	}
	if count == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Image exceeds the 10MB limit")
		return
	}
	if !utils.ValidImageFileType(header) {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Unsupported image type")
		return
	}

	// Decode up front so a mislabeled or corrupt file fails here, not on the
	// storefront.
	img, err := imaging.Decode(file)
	if err != nil {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "File is not a valid image")
		return
	}

	var imageURL, hostID string
	if cloudURL := os.Getenv("CLOUDINARY_URL"); cloudURL != "" {
		cld, err := cloudinary.NewFromURL(cloudURL)
		if err != nil {
			log.Println("cloudinary init:", err)
			utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Image host unavailable")
			return
		}
		if _, err := file.Seek(0, 0); err != nil {
			utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Upload failed")
			return
		}
		result, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: "products"})
		if err != nil {
			log.Println("cloudinary upload error:", err)
			utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Upload failed")
			return
		}
		imageURL = result.SecureURL
		hostID = result.PublicID
	} else {
		// Local fallback: original plus a 300px wide thumbnail
		id := utils.GenerateID(16)
		fileName := id + ".jpg"
		thumbDir := filepath.Join(uploadDir, "thumb")
		if err := os.MkdirAll(thumbDir, 0o755); err != nil {
			log.Println("upload dir error:", err)
			utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save image")
			return
		}
		if err := imaging.Save(img, filepath.Join(uploadDir, fileName)); err != nil {
			log.Println("image save error:", err)
			utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save image")
			return
		}
		thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
		if err := imaging.Save(thumb, filepath.Join(thumbDir, fileName)); err != nil {
			log.Println("thumbnail save error:", err)
		}
		imageURL = "/uploads/" + fileName
	}

	existing, err := db.ProductImagesCollection.CountDocuments(ctx, bson.M{"productid": productID})
	if err != nil {
		log.Println("image count error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save image record")
		return
	}

	record := models.ProductImage{
		ImageID:   utils.GenerateID(14),
		ProductID: productID,
		ImageURL:  imageURL,
		HostID:    hostID,
		Position:  int(existing),
		IsPrimary: existing == 0,
		CreatedAt: time.Now(),
	}
	if _, err := db.ProductImagesCollection.InsertOne(ctx, record); err != nil {
		log.Println("image record insert error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save image record")
		return
	}

	// An explicit isPrimary=true demotes the current primary first, keeping
	// the one-primary-per-product rule intact.
	if r.FormValue("isPrimary") == "true" && !record.IsPrimary {
		if _, err := db.ProductImagesCollection.UpdateMany(ctx,
			bson.M{"productid": productID, "imageid": bson.M{"$ne": record.ImageID}},
			bson.M{"$set": bson.M{"is_primary": false}}); err != nil {
			log.Println("primary demote error:", err)
		} else if _, err := db.ProductImagesCollection.UpdateOne(ctx,
			bson.M{"imageid": record.ImageID},
			bson.M{"$set": bson.M{"is_primary": true}}); err != nil {
			log.Println("primary set error:", err)
		} else {
			record.IsPrimary = true
		}
	}

	utils.RespondWithJSON(w, http.StatusCreated, record)
}

// DestroyHosted removes an image from Cloudinary. No-op for locally stored
// images, which have no host id.
func DestroyHosted(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	cloudURL := os.Getenv("CLOUDINARY_URL")
	if cloudURL == "" {
		return nil
	}
	cld, err := cloudinary.NewFromURL(cloudURL)
	if err != nil {
		return fmt.Errorf("cloudinary init: %w", err)
	}
	_, err = cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}
