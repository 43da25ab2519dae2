package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartService defines the interface for session-scoped cart operations
type CartService interface {
	GetOrCreateCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, productID string, quantity int, sessionID string) (item *domain.CartItem, resolvedSession string, err error)
	GetCart(ctx context.Context, sessionID string) (*domain.CartWithItems, error)
	GetSummary(ctx context.Context, sessionID string) domain.CartSummary
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context, sessionID string) error
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	sessions *SessionResolver
	logger   *zap.Logger
	now      func() time.Time
}

// NewCartService creates a new instance of CartService
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, sessions *SessionResolver, logger *zap.Logger) CartService {
	return &cartService{
		carts:    carts,
		products: products,
		sessions: sessions,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *cartService) GetOrCreateCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	cart, err := s.carts.GetOrCreateBySession(ctx, sessionID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	return cart, nil
}

// AddItem puts quantity units of a product into the session's cart, merging
// with an existing line for the same product. The returned session is the
// one the caller must present on later requests.
func (s *cartService) AddItem(ctx context.Context, productID string, quantity int, sessionID string) (*domain.CartItem, string, error) {
	v := &ValidationError{}
	if strings.TrimSpace(productID) == "" {
		v.add("productId", "Product ID is required")
	}
	validateQuantity(v, quantity)
	if err := v.orNil(); err != nil {
		return nil, "", err
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, "", ErrProductNotFound
		}
		return nil, "", fmt.Errorf("failed to look up product: %w", err)
	}

	sessionID, minted := s.sessions.Resolve(sessionID)

	cart, err := s.GetOrCreateCart(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	item, err := s.carts.UpsertItem(ctx, &domain.CartItem{
		ID:        uuid.NewString(),
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, "", ErrProductNotFound
		}
		if errors.Is(err, repository.ErrQuantityOutOfRange) {
			return nil, "", quantityTooLarge()
		}
		return nil, "", fmt.Errorf("failed to add item to cart: %w", err)
	}

	if err := s.carts.Touch(ctx, cart.ID, now); err != nil {
		return nil, "", fmt.Errorf("failed to touch cart: %w", err)
	}

	s.logger.Debug("Cart item stored",
		zap.String("cart_id", cart.ID),
		zap.String("item_id", item.ID),
		zap.Int("quantity", item.Quantity),
		zap.Bool("new_session", minted),
	)

	return item, sessionID, nil
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*domain.CartWithItems, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	cart, err := s.carts.FindBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	items, err := s.carts.ListItemsWithProduct(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	return &domain.CartWithItems{
		ID:        cart.ID,
		SessionID: cart.SessionID,
		Items:     items,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}, nil
}

// GetSummary never fails: a missing session, an unknown session or a storage
// error all produce the zero summary.
func (s *cartService) GetSummary(ctx context.Context, sessionID string) domain.CartSummary {
	if sessionID == "" {
		return domain.CartSummary{}
	}

	cart, err := s.carts.FindBySession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			s.logger.Error("Failed to load cart for summary", zap.Error(err))
		}
		return domain.CartSummary{}
	}

	items, err := s.carts.ListItemsWithProduct(ctx, cart.ID)
	if err != nil {
		s.logger.Error("Failed to load cart items for summary",
			zap.String("cart_id", cart.ID),
			zap.Error(err),
		)
		return domain.CartSummary{}
	}

	return Summarize(items)
}

// Summarize counts units and totals current prices over the given items
func Summarize(items []domain.CartItemWithProduct) domain.CartSummary {
	count := 0
	total := decimal.Zero

	for _, item := range items {
		count += item.Quantity
		line := decimal.NewFromFloat(item.Product.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}

	return domain.CartSummary{
		ItemCount:   count,
		TotalAmount: total.InexactFloat64(),
	}
}

// UpdateItemQuantity trusts the item id alone; it is not checked against a session.
func (s *cartService) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (*domain.CartItem, error) {
	v := &ValidationError{}
	validateQuantity(v, quantity)
	if err := v.orNil(); err != nil {
		return nil, err
	}

	item, err := s.carts.UpdateItemQuantity(ctx, itemID, quantity, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return nil, ErrCartItemNotFound
		}
		if errors.Is(err, repository.ErrQuantityOutOfRange) {
			return nil, quantityTooLarge()
		}
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return item, nil
}

// RemoveItem deletes a line item. The owning cart's updated_at is left as is.
func (s *cartService) RemoveItem(ctx context.Context, itemID string) error {
	if err := s.carts.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return nil
}

// ClearCart removes every item but keeps the cart row for the session.
func (s *cartService) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrMissingSession
	}

	cart, err := s.carts.FindBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return ErrCartNotFound
		}
		return fmt.Errorf("failed to find cart: %w", err)
	}

	removed, err := s.carts.DeleteItemsByCart(ctx, cart.ID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.Debug("Cart cleared",
		zap.String("cart_id", cart.ID),
		zap.Int64("removed_items", removed),
	)

	return nil
}
