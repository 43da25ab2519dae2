package repository

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	connStr, err := dbContainer.ConnectionString(context.Background(), "sslmode=disable")
	if err != nil {
		return dbContainer.Terminate, err
	}

	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := database.RunMigrations(testDB, "../../migrations", zap.NewNop()); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	flag.Parse()

	var teardown func(context.Context) error
	if !testing.Short() {
		var err error
		teardown, err = setupTestDB()
		if err != nil {
			log.Printf("postgres container unavailable, skipping integration tests: %v", err)
			testDB = nil
		}
	}

	code := m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Printf("could not teardown postgres container: %v", err)
		}
	}

	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("integration database not available")
	}
}

func seedProduct(t *testing.T, price float64) *domain.Product {
	t.Helper()

	product := &domain.Product{
		ID:          uuid.NewString(),
		Name:        "Test Product",
		Description: "Test Description",
		Price:       price,
		SKU:         "TEST-" + uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := NewProductRepository(testDB).Create(context.Background(), product); err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	return product
}

func newItem(cartID, productID string, quantity int) *domain.CartItem {
	now := time.Now().UTC()
	return &domain.CartItem{
		ID:        uuid.NewString(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestIntegration_ProductSKUIsUnique(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewProductRepository(testDB)

	existing := seedProduct(t, 10)
	duplicate := &domain.Product{
		ID:          uuid.NewString(),
		Name:        "Other",
		Description: "Other",
		Price:       5,
		SKU:         existing.SKU,
		CreatedAt:   time.Now().UTC(),
	}

	if err := repo.Create(ctx, duplicate); !errors.Is(err, ErrSKUAlreadyExists) {
		t.Fatalf("Expected ErrSKUAlreadyExists, got %v", err)
	}

	found, err := repo.FindBySKU(ctx, existing.SKU)
	if err != nil {
		t.Fatalf("FindBySKU failed: %v", err)
	}
	if found.ID != existing.ID {
		t.Errorf("Expected product %s, got %s", existing.ID, found.ID)
	}
}

func TestIntegration_GetOrCreateBySessionIsIdempotent(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewCartRepository(testDB)
	session := uuid.NewString()

	first, err := repo.GetOrCreateBySession(ctx, session, time.Now().UTC())
	if err != nil {
		t.Fatalf("GetOrCreateBySession failed: %v", err)
	}

	second, err := repo.GetOrCreateBySession(ctx, session, time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("GetOrCreateBySession failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Expected the same cart, got %s and %s", first.ID, second.ID)
	}
	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Errorf("Existing cart must be returned unchanged")
	}
}

func TestIntegration_ConcurrentGetOrCreateYieldsSingleCart(t *testing.T) {
	requireDB(t)
	repo := NewCartRepository(testDB)
	session := uuid.NewString()

	const N = 25
	ids := make(map[string]struct{})
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			cart, err := repo.GetOrCreateBySession(ctx, session, time.Now().UTC())
			if err != nil {
				return err
			}
			mu.Lock()
			ids[cart.ID] = struct{}{}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent GetOrCreateBySession failed: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected exactly 1 cart id, got %d: %+v", len(ids), ids)
	}

	var rows int
	if err := testDB.QueryRow(`SELECT COUNT(*) FROM carts WHERE session_id = $1`, session).Scan(&rows); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected 1 cart row, got %d", rows)
	}
}

func TestProperty_UpsertItemMergesQuantities(t *testing.T) {
	requireDB(t)
	repo := NewCartRepository(testDB)
	product := seedProduct(t, 9.99)

	properties := gopter.NewProperties(nil)

	properties.Property("adding the same product twice yields one row with the summed quantity", prop.ForAll(
		func(q1 int, q2 int) bool {
			ctx := context.Background()

			cart, err := repo.GetOrCreateBySession(ctx, uuid.NewString(), time.Now().UTC())
			if err != nil {
				t.Logf("FAIL: Failed to create cart: %v", err)
				return false
			}

			if _, err := repo.UpsertItem(ctx, newItem(cart.ID, product.ID, q1)); err != nil {
				t.Logf("FAIL: First upsert failed: %v", err)
				return false
			}
			merged, err := repo.UpsertItem(ctx, newItem(cart.ID, product.ID, q2))
			if err != nil {
				t.Logf("FAIL: Second upsert failed: %v", err)
				return false
			}

			if merged.Quantity != q1+q2 {
				t.Logf("FAIL: Expected quantity %d, got %d", q1+q2, merged.Quantity)
				return false
			}

			items, err := repo.ListItemsWithProduct(ctx, cart.ID)
			if err != nil {
				t.Logf("FAIL: List failed: %v", err)
				return false
			}
			if len(items) != 1 {
				t.Logf("FAIL: Expected exactly one row, got %d", len(items))
				return false
			}

			return items[0].ID == merged.ID
		},
		gen.IntRange(1, 500),
		gen.IntRange(1, 500),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestIntegration_MergedQuantityBeyondInt32(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewCartRepository(testDB)
	product := seedProduct(t, 1)

	cart, err := repo.GetOrCreateBySession(ctx, uuid.NewString(), time.Now().UTC())
	if err != nil {
		t.Fatalf("GetOrCreateBySession failed: %v", err)
	}

	const half = 1 << 31
	if _, err := repo.UpsertItem(ctx, newItem(cart.ID, product.ID, half)); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	merged, err := repo.UpsertItem(ctx, newItem(cart.ID, product.ID, half))
	if err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	if merged.Quantity != 2*half {
		t.Errorf("Expected quantity %d, got %d", 2*half, merged.Quantity)
	}

	const maxBigint = 1<<63 - 1
	if _, err := repo.UpsertItem(ctx, newItem(cart.ID, product.ID, maxBigint)); !errors.Is(err, ErrQuantityOutOfRange) {
		t.Errorf("Expected ErrQuantityOutOfRange past bigint, got %v", err)
	}
}

func TestIntegration_ListItemsReflectsLivePrice(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewCartRepository(testDB)
	product := seedProduct(t, 10)

	cart, err := repo.GetOrCreateBySession(ctx, uuid.NewString(), time.Now().UTC())
	if err != nil {
		t.Fatalf("GetOrCreateBySession failed: %v", err)
	}
	if _, err := repo.UpsertItem(ctx, newItem(cart.ID, product.ID, 2)); err != nil {
		t.Fatalf("UpsertItem failed: %v", err)
	}

	if _, err := testDB.Exec(`UPDATE products SET price = 15 WHERE id = $1`, product.ID); err != nil {
		t.Fatalf("price update failed: %v", err)
	}

	items, err := repo.ListItemsWithProduct(ctx, cart.ID)
	if err != nil {
		t.Fatalf("ListItemsWithProduct failed: %v", err)
	}
	if len(items) != 1 || items[0].Product.Price < 14.99 || items[0].Product.Price > 15.01 {
		t.Errorf("Expected live price 15, got %+v", items)
	}
}

func TestIntegration_ItemsCascadeOnProductDelete(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	carts := NewCartRepository(testDB)
	products := NewProductRepository(testDB)
	product := seedProduct(t, 3)

	cart, err := carts.GetOrCreateBySession(ctx, uuid.NewString(), time.Now().UTC())
	if err != nil {
		t.Fatalf("GetOrCreateBySession failed: %v", err)
	}
	item, err := carts.UpsertItem(ctx, newItem(cart.ID, product.ID, 1))
	if err != nil {
		t.Fatalf("UpsertItem failed: %v", err)
	}

	if err := products.Delete(ctx, product.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := carts.FindItemByID(ctx, item.ID); !errors.Is(err, ErrCartItemNotFound) {
		t.Errorf("Expected item to be cascaded away, got %v", err)
	}
}

func TestIntegration_ClearKeepsCart(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewCartRepository(testDB)
	session := uuid.NewString()

	cart, err := repo.GetOrCreateBySession(ctx, session, time.Now().UTC())
	if err != nil {
		t.Fatalf("GetOrCreateBySession failed: %v", err)
	}
	for _, price := range []float64{1, 2, 3} {
		p := seedProduct(t, price)
		if _, err := repo.UpsertItem(ctx, newItem(cart.ID, p.ID, 1)); err != nil {
			t.Fatalf("UpsertItem failed: %v", err)
		}
	}

	removed, err := repo.DeleteItemsByCart(ctx, cart.ID)
	if err != nil {
		t.Fatalf("DeleteItemsByCart failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected 3 removed items, got %d", removed)
	}

	again, err := repo.FindBySession(ctx, session)
	if err != nil {
		t.Fatalf("Cart should survive clear: %v", err)
	}
	if again.ID != cart.ID {
		t.Errorf("Expected cart %s, got %s", cart.ID, again.ID)
	}
}
