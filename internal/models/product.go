package models

import "github.com/shopspring/decimal"

// DefaultTierQuantity is the quantity recorded for a price tier submitted without one.
const DefaultTierQuantity = 100

func init() {
	// Prices travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a hydrated catalog product: its category set, price tiers and
// image paths are populated from storage.
type Product struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	CategoryIDs []int64     `json:"category_ids"`
	Prices      []PriceTier `json:"prices"`
	Images      []string    `json:"images"`
}

// PriceTier is one price/quantity pairing of a product.
type PriceTier struct {
	Price    decimal.Decimal `db:"price" json:"price"`
	Quantity int             `db:"quantity" json:"quantity"`
}

// PriceTierRequest is a tier as submitted by a client. Quantity is optional.
type PriceTierRequest struct {
	Price    *decimal.Decimal `json:"price"`
	Quantity *int             `json:"quantity"`
}

// CreateProductRequest represents the request to create a new product.
type CreateProductRequest struct {
	Name        string             `json:"name"`
	CategoryIDs []int64            `json:"category_ids"`
	Prices      []PriceTierRequest `json:"prices"`
}
