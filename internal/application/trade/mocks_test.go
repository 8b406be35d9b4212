package trade

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// memoryIdempotencyStore keeps processed keys in a map
type memoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{keys: make(map[string]bool)}
}

func (s *memoryIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memoryIdempotencyStore) Close() error { return nil }

type MockInventoryItemRepository struct {
	mock.Mock
}

func (m *MockInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) FindBySKU(ctx context.Context, sku string) (*inventory.InventoryItem, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) FindBySKUForUpdate(ctx context.Context, sku string) (*inventory.InventoryItem, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) ([]*inventory.InventoryItem, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockInventoryItemRepository) SaveWithLock(ctx context.Context, item *inventory.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKUForUpdate(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAncestry(ctx context.Context, id uuid.UUID) (catalog.Ancestry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// lazy results see changes made to the categories after registration
	if fn, ok := args.Get(0).(func() catalog.Ancestry); ok {
		return fn(), args.Error(1)
	}
	return args.Get(0).(catalog.Ancestry), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return m.Called(ctx, category).Error(0)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Cart), args.Error(1)
}

func (m *MockCartRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Cart), args.Error(1)
}

func (m *MockCartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*trade.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, cart *trade.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByTransactionRef(ctx context.Context, ref string) (*trade.Order, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByTransactionRefForUpdate(ctx context.Context, ref string) (*trade.Order, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByLineID(ctx context.Context, lineID uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) ExistsByTransactionRef(ctx context.Context, ref string) (bool, error) {
	args := m.Called(ctx, ref)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]trade.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, userID uuid.UUID) (map[trade.OrderStatus]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[trade.OrderStatus]int64), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	return m.Called(ctx, order).Error(0)
}

// memoryRefundRepository stores refunds in memory; the unique line
// constraint of the database is mirrored by Create.
type memoryRefundRepository struct {
	mu      sync.Mutex
	refunds []trade.Refund
	failOn  error
}

func (r *memoryRefundRepository) Create(_ context.Context, refund *trade.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != nil {
		return r.failOn
	}
	for _, existing := range r.refunds {
		if existing.OrderLineID == refund.OrderLineID {
			return shared.ErrAlreadyRefunded
		}
	}
	r.refunds = append(r.refunds, *refund)
	return nil
}

func (r *memoryRefundRepository) ExistsForLine(_ context.Context, lineID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.refunds {
		if existing.OrderLineID == lineID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRefundRepository) FindByOrder(_ context.Context, orderID uuid.UUID) ([]trade.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]trade.Refund, 0)
	for _, existing := range r.refunds {
		if existing.OrderID == orderID {
			result = append(result, existing)
		}
	}
	return result, nil
}

type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Address), args.Error(1)
}

func (m *MockAddressRepository) Save(ctx context.Context, address *trade.Address) error {
	return m.Called(ctx, address).Error(0)
}

type MockVoucherRepository struct {
	mock.Mock
}

func (m *MockVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Voucher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) Save(ctx context.Context, voucher *trade.Voucher) error {
	return m.Called(ctx, voucher).Error(0)
}

// mockScope hands the same mock repositories to every transaction
type mockScope struct {
	items      *MockInventoryItemRepository
	products   *MockProductRepository
	categories *MockCategoryRepository
	carts      *MockCartRepository
	orders     *MockOrderRepository
	refunds    *memoryRefundRepository
	addresses  *MockAddressRepository
	vouchers   *MockVoucherRepository
}

func newMockScope() *mockScope {
	return &mockScope{
		items:      new(MockInventoryItemRepository),
		products:   new(MockProductRepository),
		categories: new(MockCategoryRepository),
		carts:      new(MockCartRepository),
		orders:     new(MockOrderRepository),
		refunds:    &memoryRefundRepository{},
		addresses:  new(MockAddressRepository),
		vouchers:   new(MockVoucherRepository),
	}
}

func (s *mockScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *mockScope) ledgerScope() appinventory.TransactionScope {
	return appinventory.NewNoOpTransactionScope(s.items, s.products, s.categories)
}

func (s *mockScope) InventoryRepo() inventory.InventoryItemRepository { return s.items }
func (s *mockScope) ProductRepo() catalog.ProductRepository           { return s.products }
func (s *mockScope) CategoryRepo() catalog.CategoryRepository         { return s.categories }
func (s *mockScope) CartRepo() trade.CartRepository                   { return s.carts }
func (s *mockScope) OrderRepo() trade.OrderRepository                 { return s.orders }
func (s *mockScope) RefundRepo() trade.RefundRepository               { return s.refunds }
func (s *mockScope) AddressRepo() trade.AddressRepository             { return s.addresses }
func (s *mockScope) VoucherRepo() trade.VoucherRepository             { return s.vouchers }

var _ TransactionScope = (*mockScope)(nil)
var _ TransactionalRepositories = (*mockScope)(nil)
