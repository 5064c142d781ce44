package products

import (
	"context"
	"encoding/json"
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

func decodeCategory(r *http.Request) (models.Category, string) {
	var c models.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		return models.Category{}, "Invalid JSON payload"
	}
	if len(c.Name) < 2 || len(c.Name) > 100 {
		return models.Category{}, "Name must be 2 to 100 characters"
	}
	if c.Slug == "" {
		c.Slug = utils.Slugify(c.Name)
	}
	if !utils.ValidSlug(c.Slug) {
		return models.Category{}, "Invalid slug"
	}
	return c, ""
}

// GetCategories is public; only active categories, ordered by position.
func GetCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := db.CategoriesCollection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		log.Println("category find error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch categories")
		return
	}
	defer cursor.Close(ctx)

	var list []models.Category
	if err := cursor.All(ctx, &list); err != nil {
		log.Println("category decode error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch categories")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"categories": list})
}

// GetAllCategories is the admin listing, inactive included.
func GetAllCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := db.CategoriesCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Println("category find error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch categories")
		return
	}
	defer cursor.Close(ctx)

	var list []models.Category
	if err := cursor.All(ctx, &list); err != nil {
		log.Println("category decode error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not fetch categories")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"categories": list})
}

func categorySlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	filter := bson.M{"slug": slug}
	if excludeID != "" {
		filter["categoryid"] = bson.M{"$ne": excludeID}
	}
	count, err := db.CategoriesCollection.CountDocuments(ctx, filter)
	return count > 0, err
}

func CreateCategory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	c, msg := decodeCategory(r)
	if msg != "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", msg)
		return
	}

	taken, err := categorySlugTaken(ctx, c.Slug, "")
	if err != nil {
		log.Println("category slug check error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save category")
		return
	}
	if taken {
		utils.RespondWithErrorCode(w, http.StatusConflict, "DUPLICATE_CODE", "Slug already in use")
		return
	}

	c.CategoryID = utils.GenerateID(14)
	if _, err := db.CategoriesCollection.InsertOne(ctx, c); err != nil {
		log.Println("category insert error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save category")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, c)
}

func UpdateCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	categoryID := ps.ByName("id")

	c, msg := decodeCategory(r)
	if msg != "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", msg)
		return
	}

	taken, err := categorySlugTaken(ctx, c.Slug, categoryID)
	if err != nil {
		log.Println("category slug check error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save category")
		return
	}
	if taken {
		utils.RespondWithErrorCode(w, http.StatusConflict, "DUPLICATE_CODE", "Slug already in use")
		return
	}

	update := bson.M{"$set": bson.M{
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
		"parent_id":   c.ParentID,
		"image_url":   c.ImageURL,
		"position":    c.Position,
		"is_active":   c.IsActive,
	}}
	res, err := db.CategoriesCollection.UpdateOne(ctx, bson.M{"categoryid": categoryID}, update)
	if err != nil {
		log.Println("category update error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not save category")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteCategory detaches products from the category rather than deleting
// them; the products stay listed under "uncategorized".
func DeleteCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	categoryID := ps.ByName("id")

	res, err := db.CategoriesCollection.DeleteOne(ctx, bson.M{"categoryid": categoryID})
	if err != nil {
		log.Println("category delete error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not delete category")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithErrorCode(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}
	if _, err := db.ProductsCollection.UpdateMany(ctx,
		bson.M{"category_id": categoryID},
		bson.M{"$set": bson.M{"category_id": ""}}); err != nil {
		log.Println("category detach error:", err)
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
