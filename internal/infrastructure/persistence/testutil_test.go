package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/storefront/backend/internal/application/inventory"
	apptrade "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory database with the full schema. The
// pool is capped at one connection so every test sees the same database and
// transactions run one at a time.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

type seeded struct {
	category *catalog.Category
	product  *catalog.Product
	item     *inventory.InventoryItem
}

// seedItem stores an active category, product and item with the given counters
func seedItem(t *testing.T, db *gorm.DB, sku string, available, actual int) *seeded {
	t.Helper()
	ctx := context.Background()
	repos := NewRepositories(db)

	category, err := catalog.NewCategory("Category " + sku)
	require.NoError(t, err)
	require.NoError(t, repos.CategoryRepo().Save(ctx, category))

	product, err := catalog.NewProduct(sku+"-P", "Product "+sku, category.ID)
	require.NoError(t, err)
	require.NoError(t, repos.ProductRepo().Save(ctx, product))

	item, err := inventory.NewInventoryItem(sku, product.ID, decimal.NewFromInt(25), available, actual)
	require.NoError(t, err)
	require.NoError(t, repos.InventoryRepo().Save(ctx, item))

	return &seeded{category: category, product: product, item: item}
}

func seedAddress(t *testing.T, db *gorm.DB, userID uuid.UUID) *trade.Address {
	t.Helper()
	address, err := trade.NewAddress(userID, "Ada", "555-0100", "1 Main St", "10001")
	require.NoError(t, err)
	require.NoError(t, NewRepositories(db).AddressRepo().Save(context.Background(), address))
	return address
}

func loadItem(t *testing.T, db *gorm.DB, sku string) *inventory.InventoryItem {
	t.Helper()
	item, err := NewRepositories(db).InventoryRepo().FindBySKU(context.Background(), sku)
	require.NoError(t, err)
	return item
}

// services wires the application services over db the way the server does
type services struct {
	db       *gorm.DB
	repos    *Repositories
	ledger   *appinventory.StockLedger
	carts    *apptrade.CartService
	checkout *apptrade.CheckoutService
	payments *apptrade.PaymentService
	refunds  *apptrade.RefundService
	orders   *apptrade.OrderQueryService
}

func newServices(t *testing.T, db *gorm.DB) *services {
	t.Helper()
	log := zaptest.NewLogger(t)
	repos := NewRepositories(db)
	tradeScope := NewGormTradeTransactionScope(db)
	ledger := appinventory.NewStockLedger(NewGormTransactionScope(db), repos, log)

	return &services{
		db:       db,
		repos:    repos,
		ledger:   ledger,
		carts:    apptrade.NewCartService(tradeScope, repos, ledger, log),
		checkout: apptrade.NewCheckoutService(tradeScope, ledger, log),
		payments: apptrade.NewPaymentService(tradeScope, repos, ledger, log),
		refunds:  apptrade.NewRefundService(tradeScope, ledger, log),
		orders:   apptrade.NewOrderQueryService(repos.OrderRepo(), repos.RefundRepo()),
	}
}

// placeOrder fills a fresh cart for userID with qty units of each sku and checks it out
func (s *services) placeOrder(t *testing.T, userID uuid.UUID, ref string, qty map[string]int) *apptrade.OrderResponse {
	t.Helper()
	ctx := context.Background()
	address := seedAddress(t, s.db, userID)

	cart, err := s.carts.GetOrCreateCartForUser(ctx, userID)
	require.NoError(t, err)
	for sku, q := range qty {
		_, err := s.carts.AddToCart(ctx, cart.ID, sku, q)
		require.NoError(t, err)
	}

	order, err := s.checkout.Checkout(ctx, apptrade.CheckoutRequest{
		CartID:         cart.ID,
		AddressID:      address.ID,
		TransactionRef: ref,
	})
	require.NoError(t, err)
	return order
}
