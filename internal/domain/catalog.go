package domain

import "time"

// Category groups products and is linked to the shops that stock it.
type Category struct {
	CategoryID    string    `json:"id" dynamodbav:"category_id"`
	Name          string    `json:"name" dynamodbav:"name"`
	CatalogNumber int       `json:"catalog_number" dynamodbav:"catalog_number"`
	ShopIDs       []string  `json:"shops,omitempty" dynamodbav:"shop_ids"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Product is a catalog item.
type Product struct {
	ProductID  string    `json:"id" dynamodbav:"product_id"`
	Name       string    `json:"name" dynamodbav:"name"`
	CategoryID string    `json:"category_id" dynamodbav:"category_id"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}

// ProductParameter is one named characteristic of a stocked product.
type ProductParameter struct {
	Name  string `json:"parameter" dynamodbav:"name"`
	Value string `json:"value" dynamodbav:"value"`
}

// ProductInfo is a shop's offer of a product: stock, prices and parameters.
type ProductInfo struct {
	ProductInfoID string             `json:"id" dynamodbav:"product_info_id"`
	ProductID     string             `json:"product_id" dynamodbav:"product_id"`
	ShopID        string             `json:"shop_id" dynamodbav:"shop_id"`
	Model         string             `json:"model" dynamodbav:"model"`
	CatalogNumber int                `json:"catalog_number" dynamodbav:"catalog_number"`
	Quantity      int                `json:"quantity" dynamodbav:"quantity"`
	Price         int                `json:"price" dynamodbav:"price"`
	PriceRRC      int                `json:"price_rrc" dynamodbav:"price_rrc"`
	Parameters    []ProductParameter `json:"product_parameters,omitempty" dynamodbav:"parameters"`
	CreatedAt     time.Time          `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time          `json:"updated" dynamodbav:"updated_at"`
}
