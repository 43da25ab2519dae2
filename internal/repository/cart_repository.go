package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")

	// ErrQuantityOutOfRange means a stored or merged quantity exceeds the column range
	ErrQuantityOutOfRange = errors.New("quantity out of range")
)

// CartRepository defines the interface for cart and cart item data access
type CartRepository interface {
	// GetOrCreateBySession returns the cart bound to sessionID, creating it when absent.
	GetOrCreateBySession(ctx context.Context, sessionID string, now time.Time) (*domain.Cart, error)
	FindBySession(ctx context.Context, sessionID string) (*domain.Cart, error)
	Touch(ctx context.Context, cartID string, at time.Time) error

	// UpsertItem inserts the item or, when the cart already holds the product,
	// adds item.Quantity to the stored quantity. It returns the stored row.
	UpsertItem(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error)
	FindItemByID(ctx context.Context, id string) (*domain.CartItem, error)
	UpdateItemQuantity(ctx context.Context, id string, quantity int, at time.Time) (*domain.CartItem, error)
	DeleteItem(ctx context.Context, id string) error
	DeleteItemsByCart(ctx context.Context, cartID string) (int64, error)
	ListItemsWithProduct(ctx context.Context, cartID string) ([]domain.CartItemWithProduct, error)
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

const cartItemColumns = `id, cart_id, product_id, quantity, created_at, updated_at`

// GetOrCreateBySession relies on the unique index over carts.session_id: a
// concurrent first request for the same token loses the insert and reads the
// winner's row instead of creating a duplicate.
func (r *cartRepository) GetOrCreateBySession(ctx context.Context, sessionID string, now time.Time) (*domain.Cart, error) {
	insert := `
		INSERT INTO carts (id, session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (session_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), sessionID, now); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	cart, err := r.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart after create: %w", err)
	}

	return cart, nil
}

// FindBySession retrieves the cart bound to a session token
func (r *cartRepository) FindBySession(ctx context.Context, sessionID string) (*domain.Cart, error) {
	query := `
		SELECT id, session_id, created_at, updated_at
		FROM carts
		WHERE session_id = $1
	`

	cart := &domain.Cart{}
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&cart.ID,
		&cart.SessionID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart by session: %w", err)
	}

	return cart, nil
}

// Touch refreshes a cart's updated_at timestamp
func (r *cartRepository) Touch(ctx context.Context, cartID string, at time.Time) error {
	query := `UPDATE carts SET updated_at = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, cartID, at)
	if err != nil {
		return fmt.Errorf("failed to update cart timestamp: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (r *cartRepository) UpsertItem(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
		              updated_at = EXCLUDED.updated_at
		RETURNING ` + cartItemColumns

	stored, err := scanCartItem(r.db.QueryRowContext(
		ctx,
		query,
		item.ID,
		item.CartID,
		item.ProductID,
		item.Quantity,
		item.CreatedAt,
		item.UpdatedAt,
	))
	if err != nil {
		// The product was deleted between lookup and insert.
		if isForeignKeyViolation(err, "fk_cart_items_product") {
			return nil, ErrProductNotFound
		}
		if isOutOfRange(err) {
			return nil, ErrQuantityOutOfRange
		}
		return nil, fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return stored, nil
}

// FindItemByID retrieves a cart item by its own identifier
func (r *cartRepository) FindItemByID(ctx context.Context, id string) (*domain.CartItem, error) {
	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE id = $1`

	item, err := scanCartItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item by ID: %w", err)
	}

	return item, nil
}

// UpdateItemQuantity overwrites an item's quantity
func (r *cartRepository) UpdateItemQuantity(ctx context.Context, id string, quantity int, at time.Time) (*domain.CartItem, error) {
	query := `
		UPDATE cart_items
		SET quantity = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + cartItemColumns

	item, err := scanCartItem(r.db.QueryRowContext(ctx, query, id, quantity, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		if isOutOfRange(err) {
			return nil, ErrQuantityOutOfRange
		}
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return item, nil
}

// DeleteItem removes a single cart item
func (r *cartRepository) DeleteItem(ctx context.Context, id string) error {
	query := `DELETE FROM cart_items WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// DeleteItemsByCart empties a cart and reports how many items were removed
func (r *cartRepository) DeleteItemsByCart(ctx context.Context, cartID string) (int64, error) {
	query := `DELETE FROM cart_items WHERE cart_id = $1`

	result, err := r.db.ExecContext(ctx, query, cartID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart items: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// ListItemsWithProduct joins a cart's items to the current product rows, newest item first
func (r *cartRepository) ListItemsWithProduct(ctx context.Context, cartID string) ([]domain.CartItemWithProduct, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
		       p.id, p.name, p.price, p.sku
		FROM cart_items ci
		INNER JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItemWithProduct{}
	for rows.Next() {
		var item domain.CartItemWithProduct
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.Product.ID,
			&item.Product.Name,
			&item.Product.Price,
			&item.Product.SKU,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

func scanCartItem(row *sql.Row) (*domain.CartItem, error) {
	item := &domain.CartItem{}
	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}
