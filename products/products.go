// Package products serves the storefront catalog and the admin product CRUD.
// Product images live in their own collection and are joined onto product
// payloads per request.
package products

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"matjarna/db"
	"matjarna/models"
	"matjarna/pricing"
	"matjarna/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultPageSize = 24
	maxPageSize     = 100
)

// attachImages loads image rows for the given products, sorted by position,
// and sets them on each product in place.
func attachImages(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ProductID)
	}

	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := db.ProductImagesCollection.Find(ctx, bson.M{"productid": bson.M{"$in": ids}}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var images []models.ProductImage
	if err := cursor.All(ctx, &images); err != nil {
		return err
	}

	byProduct := make(map[string][]models.ProductImage)
	for _, img := range images {
		byProduct[img.ProductID] = append(byProduct[img.ProductID], img)
	}
	for i := range products {
		products[i].Images = byProduct[products[i].ProductID]
	}
	return nil
}

// FetchPublished loads one published product with its images. Used by the
// cart when snapshotting a product into a line item.
func FetchPublished(ctx context.Context, productID string) (models.Product, error) {
	var p models.Product
	err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": productID, "is_published": true}).Decode(&p)
	if err != nil {
		return models.Product{}, err
	}
	ps := []models.Product{p}
	if err := attachImages(ctx, ps); err != nil {
		return models.Product{}, err
	}
	return ps[0], nil
}

// productView decorates a product with its computed storefront prices.
func productView(p models.Product) utils.M {
	effective := pricing.EffectivePrice(p)
	return utils.M{
		"product":          p,
		"effective_price":  effective,
		"discount_percent": pricing.DiscountPercent(p.Price, effective),
	}
}

// GetProducts serves the public catalog listing. Only published products are
// visible; supports category, text search, sorting and pagination.
func GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"is_published": true}
	q := r.URL.Query()

	if category := q.Get("category"); category != "" {
		var cat models.Category
		err := db.CategoriesCollection.FindOne(ctx, bson.M{"slug": category, "is_active": true}).Decode(&cat)
		if err == mongo.ErrNoDocuments {
			utils.RespondWithJSON(w, http.StatusOK, utils.M{"products": []utils.M{}, "total": 0, "page": 1})
			return
		}
		if err != nil {
			log.Println("category lookup error:", err)
			utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch products")
			return
		}
		filter["category_id"] = cat.CategoryID
	}
	if search := q.Get("q"); search != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{Pattern: search, Options: "i"}}
	}
	if q.Get("in_stock") == "true" {
		filter["stock"] = bson.M{"$gt": 0}
	}

	sortField := bson.D{{Key: "created_at", Value: -1}}
	switch q.Get("sort") {
	case "price_asc":
		sortField = bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		sortField = bson.D{{Key: "price", Value: -1}}
	case "name":
		sortField = bson.D{{Key: "name", Value: 1}}
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
		SetSort(sortField).
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

	views := make([]utils.M, 0, len(list))
	for _, p := range list {
		views = append(views, productView(p))
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"products": views,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// GetProductBySlug serves the public product detail page.
func GetProductBySlug(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var p models.Product
	err := db.ProductsCollection.FindOne(ctx, bson.M{"slug": ps.ByName("slug"), "is_published": true}).Decode(&p)
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
	utils.RespondWithJSON(w, http.StatusOK, productView(list[0]))
}
