package transport

import (
	"context"

	"storefront/internal/domain"

	"github.com/stretchr/testify/mock"
)

type mockCartService struct {
	mock.Mock
}

func (m *mockCartService) GetOrCreateCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartService) AddItem(ctx context.Context, productID string, quantity int, sessionID string) (*domain.CartItem, string, error) {
	args := m.Called(ctx, productID, quantity, sessionID)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*domain.CartItem), args.String(1), args.Error(2)
}

func (m *mockCartService) GetCart(ctx context.Context, sessionID string) (*domain.CartWithItems, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartWithItems), args.Error(1)
}

func (m *mockCartService) GetSummary(ctx context.Context, sessionID string) domain.CartSummary {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.CartSummary)
}

func (m *mockCartService) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (*domain.CartItem, error) {
	args := m.Called(ctx, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartItem), args.Error(1)
}

func (m *mockCartService) RemoveItem(ctx context.Context, itemID string) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *mockCartService) ClearCart(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) Create(ctx context.Context, name, description string, price float64, sku string) (*domain.Product, error) {
	args := m.Called(ctx, name, description, price, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductService) List(ctx context.Context) ([]*domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}
