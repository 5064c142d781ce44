package models

import "time"

// Product is a catalog row. Prices are whole DZD.
type Product struct {
	ProductID   string          `bson:"productid" json:"id"`
	Name        string          `bson:"name" json:"name"`
	Slug        string          `bson:"slug" json:"slug"`
	Description string          `bson:"description" json:"description"`
	Price       int64           `bson:"price" json:"price"`
	SalePrice   *int64          `bson:"sale_price,omitempty" json:"sale_price,omitempty"`
	SKU         string          `bson:"sku,omitempty" json:"sku,omitempty"`
	Stock       int             `bson:"stock" json:"stock"`
	IsPublished bool            `bson:"is_published" json:"is_published"`
	CategoryID  string          `bson:"category_id,omitempty" json:"category_id,omitempty"`
	Options     []ProductOption `bson:"options,omitempty" json:"options,omitempty"`
	Images      []ProductImage  `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at" json:"updated_at"`
}

// ProductOption is a named choice set, e.g. "Color": ["Red","Blue"].
type ProductOption struct {
	Name     string   `bson:"name" json:"name"`
	Values   []string `bson:"values" json:"values"`
	Position int      `bson:"position" json:"position"`
}

// ProductImage lives in its own collection; at most one image per product
// carries is_primary.
type ProductImage struct {
	ImageID   string    `bson:"imageid" json:"id"`
	ProductID string    `bson:"productid" json:"product_id"`
	ImageURL  string    `bson:"image_url" json:"image_url"`
	HostID    string    `bson:"host_id,omitempty" json:"host_id,omitempty"`
	Position  int       `bson:"position" json:"position"`
	IsPrimary bool      `bson:"is_primary" json:"is_primary"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Category struct {
	CategoryID  string `bson:"categoryid" json:"id"`
	Name        string `bson:"name" json:"name"`
	Slug        string `bson:"slug" json:"slug"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	ParentID    string `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	ImageURL    string `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Position    int    `bson:"position" json:"position"`
	IsActive    bool   `bson:"is_active" json:"is_active"`
}
