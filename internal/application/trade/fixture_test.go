package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type tradeFixture struct {
	scope     *mockScope
	publisher *MockEventPublisher
	ledger    *appinventory.StockLedger
	userID    uuid.UUID
}

func newTradeFixture(t *testing.T) *tradeFixture {
	f := &tradeFixture{
		scope:     newMockScope(),
		publisher: &MockEventPublisher{},
		userID:    uuid.New(),
	}
	f.ledger = appinventory.NewStockLedger(f.scope.ledgerScope(), f.scope, zaptest.NewLogger(t))
	f.ledger.SetEventPublisher(f.publisher)
	return f
}

type stockedItem struct {
	item     *inventory.InventoryItem
	product  *catalog.Product
	category *catalog.Category
}

// stock registers an active item, its product and category with the mocks
func (f *tradeFixture) stock(t *testing.T, sku string, price int64, available, actual int) *stockedItem {
	t.Helper()
	category, err := catalog.NewCategory("Shoes")
	require.NoError(t, err)
	product, err := catalog.NewProduct(sku+"-P", "Runner", category.ID)
	require.NoError(t, err)
	item, err := inventory.NewInventoryItem(sku, product.ID, decimal.NewFromInt(price), available, actual)
	require.NoError(t, err)

	f.scope.items.On("FindBySKU", mock.Anything, item.SKU).Return(item, nil).Maybe()
	f.scope.items.On("FindBySKUForUpdate", mock.Anything, item.SKU).Return(item, nil).Maybe()
	f.scope.items.On("SaveWithLock", mock.Anything, item).Return(nil).Maybe()
	f.scope.products.On("FindByID", mock.Anything, product.ID).Return(product, nil).Maybe()
	f.scope.categories.On("FindAncestry", mock.Anything, category.ID).Return(func() catalog.Ancestry {
		return catalog.Ancestry{*category}
	}, nil).Maybe()

	return &stockedItem{item: item, product: product, category: category}
}

// cart builds a cart for the fixture user holding the given lines and
// registers it for locked lookups
func (f *tradeFixture) cart(t *testing.T, lines ...cartLineSpec) *trade.Cart {
	t.Helper()
	cart, err := trade.NewCart(f.userID)
	require.NoError(t, err)
	for _, l := range lines {
		_, err := cart.AddLine(l.item.item.ID, l.item.item.SKU, l.quantity)
		require.NoError(t, err)
	}
	f.scope.carts.On("FindByIDForUpdate", mock.Anything, cart.ID).Return(cart, nil).Maybe()
	f.scope.carts.On("FindByID", mock.Anything, cart.ID).Return(cart, nil).Maybe()
	return cart
}

type cartLineSpec struct {
	item     *stockedItem
	quantity int
}

func line(item *stockedItem, quantity int) cartLineSpec {
	return cartLineSpec{item: item, quantity: quantity}
}

func (f *tradeFixture) address(t *testing.T) *trade.Address {
	t.Helper()
	addr, err := trade.NewAddress(f.userID, "Ada", "555-0100", "1 Main St", "12345")
	require.NoError(t, err)
	f.scope.addresses.On("FindByID", mock.Anything, addr.ID).Return(addr, nil).Maybe()
	return addr
}

// waitingOrder builds a placed order for the given lines and registers it for
// lookups by transaction ref, id and line id
func (f *tradeFixture) waitingOrder(t *testing.T, ref string, lines ...cartLineSpec) *trade.Order {
	t.Helper()
	order, err := trade.NewOrder(f.userID, ref, uuid.New(), "")
	require.NoError(t, err)
	for _, l := range lines {
		price := l.item.item.Price
		_, err := order.AddLine(l.item.item.ID, l.item.item.SKU, l.quantity, price, price, nil)
		require.NoError(t, err)
	}
	require.NoError(t, order.Place())
	order.PullDomainEvents()

	f.scope.orders.On("FindByTransactionRefForUpdate", mock.Anything, ref).Return(order, nil).Maybe()
	f.scope.orders.On("FindByTransactionRef", mock.Anything, ref).Return(order, nil).Maybe()
	f.scope.orders.On("FindByIDForUpdate", mock.Anything, order.ID).Return(order, nil).Maybe()
	f.scope.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil).Maybe()
	for _, ol := range order.Lines {
		f.scope.orders.On("FindByLineID", mock.Anything, ol.ID).Return(order, nil).Maybe()
	}
	f.scope.orders.On("SaveWithLock", mock.Anything, order).Return(nil).Maybe()
	return order
}

// paidOrder builds an order that already went through payment; stock
// counters are left to the caller
func (f *tradeFixture) paidOrder(t *testing.T, ref string, lines ...cartLineSpec) *trade.Order {
	t.Helper()
	order := f.waitingOrder(t, ref, lines...)
	require.NoError(t, order.MarkPaid())
	order.PullDomainEvents()
	return order
}
