package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing
type mockProductRepository struct {
	products map[string]*domain.Product
	findErr  error
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[string]*domain.Product),
	}
}

func (m *mockProductRepository) add(price float64) *domain.Product {
	p := &domain.Product{
		ID:          uuid.NewString(),
		Name:        "Product",
		Description: "Description",
		Price:       price,
		SKU:         "SKU-" + uuid.NewString(),
		CreatedAt:   time.Now(),
	}
	m.products[p.ID] = p
	return p
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	for _, p := range m.products {
		if p.SKU == product.SKU {
			return repository.ErrSKUAlreadyExists
		}
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type mockCartRepository struct {
	mu        sync.Mutex
	products  *mockProductRepository
	carts     map[string]*domain.Cart // by session
	items     map[string]*domain.CartItem
	seq       map[string]int
	next      int
	touches   int
	listErr   error
	findErr   error
	upsertErr error
}

func newMockCartRepository(products *mockProductRepository) *mockCartRepository {
	return &mockCartRepository{
		products: products,
		carts:    make(map[string]*domain.Cart),
		items:    make(map[string]*domain.CartItem),
		seq:      make(map[string]int),
	}
}

func (m *mockCartRepository) GetOrCreateBySession(ctx context.Context, sessionID string, now time.Time) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.carts[sessionID]; ok {
		cp := *c
		return &cp, nil
	}
	c := &domain.Cart{ID: uuid.NewString(), SessionID: sessionID, CreatedAt: now, UpdatedAt: now}
	m.carts[sessionID] = c
	cp := *c
	return &cp, nil
}

func (m *mockCartRepository) FindBySession(ctx context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.carts[sessionID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCartRepository) Touch(ctx context.Context, cartID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.carts {
		if c.ID == cartID {
			c.UpdatedAt = at
			m.touches++
			return nil
		}
	}
	return repository.ErrCartNotFound
}

func (m *mockCartRepository) UpsertItem(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.upsertErr != nil {
		return nil, m.upsertErr
	}

	for _, existing := range m.items {
		if existing.CartID == item.CartID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			existing.UpdatedAt = item.UpdatedAt
			cp := *existing
			return &cp, nil
		}
	}
	stored := *item
	m.items[stored.ID] = &stored
	m.next++
	m.seq[stored.ID] = m.next
	cp := stored
	return &cp, nil
}

func (m *mockCartRepository) FindItemByID(ctx context.Context, id string) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, repository.ErrCartItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *mockCartRepository) UpdateItemQuantity(ctx context.Context, id string, quantity int, at time.Time) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, repository.ErrCartItemNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = at
	cp := *item
	return &cp, nil
}

func (m *mockCartRepository) DeleteItem(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return repository.ErrCartItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockCartRepository) DeleteItemsByCart(ctx context.Context, cartID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, item := range m.items {
		if item.CartID == cartID {
			delete(m.items, id)
			removed++
		}
	}
	return removed, nil
}

func (m *mockCartRepository) ListItemsWithProduct(ctx context.Context, cartID string) ([]domain.CartItemWithProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	out := []domain.CartItemWithProduct{}
	for _, item := range m.items {
		if item.CartID != cartID {
			continue
		}
		p, ok := m.products.products[item.ProductID]
		if !ok {
			continue
		}
		out = append(out, domain.CartItemWithProduct{
			CartItem: *item,
			Product:  domain.ProductSnapshot{ID: p.ID, Name: p.Name, Price: p.Price, SKU: p.SKU},
		})
	}
	sort.Slice(out, func(i, j int) bool { return m.seq[out[i].ID] > m.seq[out[j].ID] })
	return out, nil
}

func (m *mockCartRepository) cartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.carts)
}
