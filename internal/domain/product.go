package domain

import (
	"time"
)

// Product represents a product in the catalog
type Product struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	SKU         string    `json:"sku" db:"sku"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// ProductSnapshot is the slice of a product that is joined onto cart items at read time
type ProductSnapshot struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	SKU   string  `json:"sku"`
}
