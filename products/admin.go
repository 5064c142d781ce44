package products

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"matjarna/db"
	"matjarna/media"
	"matjarna/models"
	"matjarna/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// decodeProduct parses and validates an admin product payload. Returns the
// product and an empty string, or a zero product and the validation message.
func decodeProduct(r *http.Request) (models.Product, string) {
	var p models.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return models.Product{}, "Invalid JSON payload"
	}
	if len(p.Name) < 2 || len(p.Name) > 200 {
		return models.Product{}, "Name must be 2 to 200 characters"
	}
	if p.Price <= 0 {
		return models.Product{}, "Price must be positive"
	}
	if p.SalePrice != nil && (*p.SalePrice <= 0 || *p.SalePrice >= p.Price) {
		return models.Product{}, "Sale price must be positive and below the list price"
	}
	if p.Stock < 0 {
		return models.Product{}, "Stock cannot be negative"
	}
	for _, opt := range p.Options {
		if opt.Name == "" || len(opt.Values) == 0 {
			return models.Product{}, "Each option needs a name and at least one value"
		}
	}
	if p.Slug == "" {
		p.Slug = utils.Slugify(p.Name)
	}
	if !utils.ValidSlug(p.Slug) {
		return models.Product{}, "Invalid slug"
	}
	return p, ""
}

// slugTaken reports whether another product already uses slug.
func slugTaken(ctx context.Context, slug, excludeProductID string) (bool, error) {
	filter := bson.M{"slug": slug}
	if excludeProductID != "" {
		filter["productid"] = bson.M{"$ne": excludeProductID}
	}
	count, err := db.ProductsCollection.CountDocuments(ctx, filter)
	return count > 0, err
}

func CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p, msg := decodeProduct(r)
	if msg != "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", msg)
		return
	}

	taken, err := slugTaken(ctx, p.Slug, "")
	if err != nil {
		log.Println("slug check error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save product")
		return
	}
	if taken {
		utils.RespondWithErrorCode(w, http.StatusConflict, "DUPLICATE_CODE", "Slug already in use")
		return
	}

	p.ProductID = utils.GenerateID(14)
	p.Images = nil
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	if _, err := db.ProductsCollection.InsertOne(ctx, p); err != nil {
		log.Println("product insert error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save product")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

// GetAllProducts is the admin listing: drafts included, filterable by
// publication state and stock level.
func GetAllProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	q := r.URL.Query()
	switch q.Get("state") {
	case "published":
		filter["is_published"] = true
	case "draft":
		filter["is_published"] = false
	}
	if q.Get("low_stock") == "true" {
		filter["stock"] = bson.M{"$lte": 5}
	}
	if search := q.Get("q"); search != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{Pattern: search, Options: "i"}}
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	total, err := db.ProductsCollection.CountDocuments(ctx, filter)
	if err != nil {
		log.Println("product count error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch products")
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := db.ProductsCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Println("product find error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch products")
		return
	}
	defer cursor.Close(ctx)

	var list []models.Product
	if err := cursor.All(ctx, &list); err != nil {
		log.Println("product decode error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch products")
		return
	}
	if err := attachImages(ctx, list); err != nil {
		log.Println("product images error:", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"products": list,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

func GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var p models.Product
	err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": ps.ByName("id")}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}
	if err != nil {
		log.Println("product fetch error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch product")
		return
	}

	list := []models.Product{p}
	if err := attachImages(ctx, list); err != nil {
		log.Println("product images error:", err)
	}
	utils.RespondWithJSON(w, http.StatusOK, list[0])
}

func UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	productID := ps.ByName("id")

	p, msg := decodeProduct(r)
	if msg != "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", msg)
		return
	}

	taken, err := slugTaken(ctx, p.Slug, productID)
	if err != nil {
		log.Println("slug check error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save product")
		return
	}
	if taken {
		utils.RespondWithErrorCode(w, http.StatusConflict, "DUPLICATE_CODE", "Slug already in use")
		return
	}

	update := bson.M{"$set": bson.M{
		"name":         p.Name,
		"slug":         p.Slug,
		"description":  p.Description,
		"price":        p.Price,
		"sale_price":   p.SalePrice,
		"sku":          p.SKU,
		"stock":        p.Stock,
		"is_published": p.IsPublished,
		"category_id":  p.CategoryID,
		"options":      p.Options,
		"updated_at":   time.Now(),
	}}
	res, err := db.ProductsCollection.UpdateOne(ctx, bson.M{"productid": productID}, update)
	if err != nil {
		log.Println("product update error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save product")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteProduct removes the product and cascades to its image records.
func DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	productID := ps.ByName("id")

	res, err := db.ProductsCollection.DeleteOne(ctx, bson.M{"productid": productID})
	if err != nil {
		log.Println("product delete error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not delete product")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}
	cursor, err := db.ProductImagesCollection.Find(ctx, bson.M{"productid": productID})
	if err == nil {
		var imgs []models.ProductImage
		if err := cursor.All(ctx, &imgs); err == nil {
			for _, img := range imgs {
				if err := media.DestroyHosted(ctx, img.HostID); err != nil {
					log.Println("hosted image delete error:", err)
				}
			}
		}
	}
	if _, err := db.ProductImagesCollection.DeleteMany(ctx, bson.M{"productid": productID}); err != nil {
		log.Println("product image cascade error:", err)
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
