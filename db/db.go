package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ProductsCollection       *mongo.Collection
	ProductImagesCollection  *mongo.Collection
	CategoriesCollection     *mongo.Collection
	OrdersCollection         *mongo.Collection
	OrderItemsCollection     *mongo.Collection
	CouponsCollection        *mongo.Collection
	ShippingRatesCollection  *mongo.Collection
	UpsellRulesCollection    *mongo.Collection
	AbandonedCartsCollection *mongo.Collection
	ReviewsCollection        *mongo.Collection
	AdminsCollection         *mongo.Collection
	Client                   *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	dbName := os.Getenv("MONGODB_DB")
	if dbName == "" {
		dbName = "matjarna"
	}

	store := Client.Database(dbName)
	ProductsCollection = store.Collection("products")
	ProductImagesCollection = store.Collection("product_images")
	CategoriesCollection = store.Collection("categories")
	OrdersCollection = store.Collection("orders")
	OrderItemsCollection = store.Collection("order_items")
	CouponsCollection = store.Collection("coupons")
	ShippingRatesCollection = store.Collection("shipping_rates")
	UpsellRulesCollection = store.Collection("upsell_rules")
	AbandonedCartsCollection = store.Collection("abandoned_carts")
	ReviewsCollection = store.Collection("reviews")
	AdminsCollection = store.Collection("admins")
}
