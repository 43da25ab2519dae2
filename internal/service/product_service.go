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
)

// MaxPrice is the largest price a DECIMAL(12,2) column holds
var MaxPrice = decimal.RequireFromString("9999999999.99")

// ProductService defines the interface for the catalog operations the storefront exposes
type ProductService interface {
	Create(ctx context.Context, name, description string, price float64, sku string) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}

type productService struct {
	products repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(products repository.ProductRepository) ProductService {
	return &productService{products: products}
}

func (s *productService) Create(ctx context.Context, name, description string, price float64, sku string) (*domain.Product, error) {
	v := &ValidationError{}
	if strings.TrimSpace(name) == "" {
		v.add("name", "Name is required")
	}
	if strings.TrimSpace(description) == "" {
		v.add("description", "Description is required")
	}
	// Prices are kept in cents, so validate what will be stored
	cents := decimal.NewFromFloat(price).Round(2)
	switch {
	case !cents.IsPositive():
		v.add("price", "Price must be positive")
	case cents.GreaterThan(MaxPrice):
		v.add("price", "Price must be at most "+MaxPrice.String())
	}
	if strings.TrimSpace(sku) == "" {
		v.add("sku", "SKU is required")
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	_, err := s.products.FindBySKU(ctx, sku)
	if err == nil {
		return nil, ErrSKUAlreadyExists
	}
	if !errors.Is(err, repository.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to check sku: %w", err)
	}

	product := &domain.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Price:       cents.InexactFloat64(),
		SKU:         sku,
		CreatedAt:   time.Now().UTC(),
	}

	// The unique constraint still guards against a concurrent create with the same SKU
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}
