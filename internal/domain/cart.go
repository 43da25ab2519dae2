package domain

import "time"

// Cart is the per-session container of line items
type Cart struct {
	ID        string    `json:"id" db:"id"`
	SessionID string    `json:"sessionId" db:"session_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartItem is a (product, quantity) pairing within a cart.
// At most one item exists per (cart, product).
type CartItem struct {
	ID        string    `json:"id" db:"id"`
	CartID    string    `json:"cartId" db:"cart_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartItemWithProduct decorates an item with the current product data.
// There is no price-at-add-time field: prices always come from the catalog.
type CartItemWithProduct struct {
	CartItem
	Product ProductSnapshot `json:"product"`
}

// CartWithItems is the read model returned for a session's cart
type CartWithItems struct {
	ID        string                `json:"id"`
	SessionID string                `json:"sessionId"`
	Items     []CartItemWithProduct `json:"items"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// CartSummary is the derived count and total over a cart's items
type CartSummary struct {
	ItemCount   int     `json:"itemCount"`
	TotalAmount float64 `json:"totalAmount"`
}
